package api

import (
	"context"
	"net/http"

	"finch/internal/render"
)

const (
	indexTemplate     = "index.html"
	listTeamsTemplate = "api/list_teams.html"
)

// handleRoot renders the landing page with an empty context
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if s.reloadEnabled() {
		if err := s.deps.Templates.Reload(); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.stats.RecordReload()
	}

	body, err := s.deps.Templates.Render(indexTemplate, render.Context{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeHTML(w, body)
}

// handleListTeams renders one page of teams ordered by team number
func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	page := ParsePage(r, s.config.DefaultPageSize, s.config.MaxPageSize)

	ctx := r.Context()
	if s.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.QueryTimeout)
		defer cancel()
	}

	teams, err := s.deps.Teams.ListPage(ctx, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := s.deps.Templates.Render(listTeamsTemplate, render.Context{"teams": teams})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeHTML(w, body)
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) reloadEnabled() bool {
	return reloadAllowed && s.config.ReloadTemplates
}
