package api

import (
	stderrors "errors"
	"math"
	"net/http"
	"strconv"

	"finch/internal/storage"
)

// ParsePage reads the page and size query parameters. Missing, malformed or non-positive
// values fall back to page 1 and defaultSize; size is capped at maxSize. A page number too
// large for an int is clamped to math.MaxInt, which the store answers with an empty page.
func ParsePage(r *http.Request, defaultSize, maxSize int) storage.Page {
	if defaultSize <= 0 {
		defaultSize = storage.DefaultPageSize
	}

	page := storage.Page{
		Number: pageNumber(r),
		Size:   QueryParamInt(r, "size", defaultSize),
	}

	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size < 1 {
		page.Size = defaultSize
	}
	if maxSize > 0 && page.Size > maxSize {
		page.Size = maxSize
	}

	return page
}

func pageNumber(r *http.Request) int {
	val := r.URL.Query().Get("page")
	if val == "" {
		return 1
	}
	n, err := strconv.Atoi(val)
	switch {
	case err == nil:
		return n
	case stderrors.Is(err, strconv.ErrRange) && n > 0:
		return math.MaxInt
	default:
		return 1
	}
}

// QueryParamInt extracts an integer query parameter with a default value
func QueryParamInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
