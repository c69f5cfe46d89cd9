// Package render compiles a directory of HTML templates and renders them by name.
//
// Templates are addressed by their slash-separated path relative to the root, so
// "<root>/api/list_teams.html" is rendered as "api/list_teams.html". All files share one
// template set and can include each other with {{template "partials/head.html" .}}.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"finch/internal/errors"
)

// Context is the per-request data handed to a template
type Context map[string]any

// Options configures an Engine
type Options struct {
	// Extensions limits which files are compiled. Empty means every regular file.
	Extensions []string
	// Funcs are made available to every template
	Funcs template.FuncMap
	Logger *slog.Logger
}

// Engine holds a compiled template set. Render is safe for concurrent use; Reload excludes
// renders for its whole duration.
type Engine struct {
	root   string
	opts   Options
	logger *slog.Logger

	mu    sync.RWMutex
	set   *template.Template
	names []string
}

// New compiles every template under root
func New(root string, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Engine{
		root:   root,
		opts:   opts,
		logger: logger,
	}

	set, names, err := e.compile()
	if err != nil {
		return nil, err
	}
	e.set = set
	e.names = names

	logger.Debug("Compiled templates", "root", root, "count", len(names))
	return e, nil
}

// Render executes the named template with ctx and returns the output
func (e *Engine) Render(name string, ctx Context) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t := e.set.Lookup(name)
	if t == nil {
		return "", errors.New(errors.TemplateRender,
			fmt.Sprintf("Template '%s' not found", name), nil)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", errors.Template(errors.TemplateRender, err)
	}
	return buf.String(), nil
}

// Reload recompiles the whole template set from disk. If compilation fails the previous set
// stays in place and the error is returned.
func (e *Engine) Reload() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	set, names, err := e.compile()
	if err != nil {
		return err
	}
	e.set = set
	e.names = names

	e.logger.Debug("Reloaded templates", "root", e.root, "count", len(names))
	return nil
}

// Names returns the names of all compiled templates, sorted
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

func (e *Engine) compile() (*template.Template, []string, error) {
	info, err := os.Stat(e.root)
	if err != nil {
		return nil, nil, errors.Template(errors.TemplateCompile, err)
	}
	if !info.IsDir() {
		return nil, nil, errors.New(errors.TemplateCompile,
			fmt.Sprintf("template root %s is not a directory", e.root), nil)
	}

	set := template.New("").Funcs(e.opts.Funcs)
	var names []string

	err = filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !e.wants(path) {
			return nil
		}

		rel, err := filepath.Rel(e.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := set.New(name).Parse(string(src)); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, nil, errors.Template(errors.TemplateCompile, err)
	}

	sort.Strings(names)
	return set, names, nil
}

func (e *Engine) wants(path string) bool {
	if len(e.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range e.opts.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}
