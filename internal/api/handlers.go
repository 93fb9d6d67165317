package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"stackreel/internal/history"
	"stackreel/internal/project"
	"stackreel/internal/services"
)

// maxBodyBytes caps project request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Queued: len(s.jobs), Busy: s.busy.Load()})
}

func (s *Server) readProject(w http.ResponseWriter, r *http.Request) (*project.Project, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, http.StatusRequestEntityTooLarge, "request body too large", "BODY_TOO_LARGE")
		return nil, false
	}
	proj, err := project.DecodeJSON(data, s.cfg.Paths.WorkDir)
	if err != nil {
		s.writeServiceError(w, err)
		return nil, false
	}
	return proj, true
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	proj, ok := s.readProject(w, r)
	if !ok {
		return
	}
	plan, err := s.renderer.Plan(r.Context(), proj)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, FromPlan(plan))
}

func (s *Server) handleSubmitRender(w http.ResponseWriter, r *http.Request) {
	proj, ok := s.readProject(w, r)
	if !ok {
		return
	}
	if err := proj.Validate(s.cfg); err != nil {
		s.writeServiceError(w, err)
		return
	}
	sessionID, err := s.Submit(proj)
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, err.Error(), "QUEUE_FULL")
		return
	}
	location := "/api/renders/" + sessionID
	w.Header().Set("Location", location)
	WriteJSON(w, http.StatusAccepted, RenderAccepted{SessionID: sessionID, Status: "queued", Location: location})
}

func (s *Server) handleListRenders(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		WriteJSON(w, http.StatusOK, RenderList{Renders: []Render{}, Stats: map[string]int{}})
		return
	}
	opts := history.ListOptions{}
	for _, value := range r.URL.Query()["status"] {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			status, ok := history.ParseStatus(part)
			if !ok {
				WriteError(w, http.StatusBadRequest, "unknown status "+strconv.Quote(part), "BAD_REQUEST")
				return
			}
			opts.Statuses = append(opts.Statuses, status)
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer", "BAD_REQUEST")
			return
		}
		opts.Limit = limit
	}

	rows, err := s.store.List(r.Context(), opts)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return
	}
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return
	}
	out := RenderList{Renders: make([]Render, 0, len(rows)), Stats: make(map[string]int, len(stats))}
	for _, row := range rows {
		out.Renders = append(out.Renders, FromRender(row))
	}
	for status, n := range stats {
		out.Stats[string(status)] = n
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRender(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "id")
	if s.store == nil {
		WriteError(w, http.StatusNotFound, "render history is disabled", "NOT_FOUND")
		return
	}
	var (
		row *history.Render
		err error
	)
	if id, convErr := strconv.ParseInt(key, 10, 64); convErr == nil {
		row, err = s.store.Get(r.Context(), id)
	} else {
		row, err = s.store.GetBySession(r.Context(), key)
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return
	}
	if row == nil {
		if _, queued := s.pending.Load(key); queued && !isInteger(key) {
			WriteJSON(w, http.StatusOK, Render{SessionID: key, Status: "queued"})
			return
		}
		WriteError(w, http.StatusNotFound, "render not found", "NOT_FOUND")
		return
	}
	WriteJSON(w, http.StatusOK, FromRender(row))
}

func isInteger(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, services.ErrConfiguration):
		status, code = http.StatusBadRequest, "INVALID_PROJECT"
	case errors.Is(err, services.ErrInsufficientSource):
		status, code = http.StatusUnprocessableEntity, "INSUFFICIENT_SOURCE"
	case errors.Is(err, services.ErrReconciliation):
		status, code = http.StatusUnprocessableEntity, "RECONCILIATION_FAILED"
	case errors.Is(err, services.ErrResource):
		status, code = http.StatusUnprocessableEntity, "RESOURCE_UNAVAILABLE"
	case errors.Is(err, services.ErrExternalTool):
		status, code = http.StatusBadGateway, "EXTERNAL_TOOL_FAILED"
	}
	WriteJSON(w, status, ErrorResponse{Error: err.Error(), Code: code, Stage: services.StageOf(err)})
}
