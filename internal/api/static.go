package api

import (
	stderrors "errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"finch/internal/errors"
)

// staticHandler serves files from the static directory. Failures answer in plain text rather
// than through writeError: a missing file or a directory is the mux's usual 404, any other I/O
// failure is a 500 "Static service error".
func (s *Server) staticHandler() http.Handler {
	root := os.DirFS(s.config.StaticDir)
	files := http.FileServerFS(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			name = "."
		}

		info, err := fs.Stat(root, name)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				http.NotFound(w, r)
				return
			}

			s.logger.Error("Static service error",
				"kind", errors.StaticIO.String(),
				"path", r.URL.Path,
				"error", err.Error(),
				"requestID", GetRequestID(r.Context()),
			)
			s.stats.RecordError(errors.StaticIO)
			http.Error(w, errors.StaticIO.Prefix()+": "+err.Error(), http.StatusInternalServerError)
			return
		}

		// Directories are never listed.
		if info.IsDir() {
			http.NotFound(w, r)
			return
		}

		files.ServeHTTP(w, r)
	})
}
