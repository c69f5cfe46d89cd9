package api

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"finch/internal/errors"
)

// errorPage is compiled at init and does not depend on the templates directory.
var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Error {{.Code}}</title>
<link href="//fonts.googleapis.com/css?family=Raleway:400,300,600" rel="stylesheet" type="text/css">
<link rel="stylesheet" href="/static/css/normalize.css">
<link rel="stylesheet" href="/static/css/skeleton.css">
<link rel="stylesheet" href="/static/css/style.css">
</head>
<body>
<div class="container">
Uh oh! An error occurred. Please report this to the system administrator.
<pre>{{.Code}}</pre>
<pre>{{.Message}}</pre>
</div>
</body>
</html>
`))

type errorPageData struct {
	Code    string
	Message string
}

// RenderErrorPage renders the inline error page for a status code and message
func RenderErrorPage(status int, message string) (string, error) {
	var buf bytes.Buffer
	err := errorPage.Execute(&buf, errorPageData{
		Code:    strconv.Itoa(status),
		Message: message,
	})
	return buf.String(), err
}

// writeError is the single exit for handler failures. It normalizes err, logs it, and writes
// the styled error page.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.From(err)
	status := appErr.Status()
	message := appErr.UserMessage()

	s.logger.Error("Request failed",
		"kind", appErr.Kind.String(),
		"status", status,
		"error", appErr.Error(),
		"path", r.URL.Path,
		"requestID", GetRequestID(r.Context()),
	)
	s.stats.RecordError(appErr.Kind)

	body, renderErr := RenderErrorPage(status, message)
	if renderErr != nil {
		http.Error(w, message, status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
