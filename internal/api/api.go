// Package api exposes the desk, workspace and report views as JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kidandcat/badiri/internal/auth"
	"github.com/kidandcat/badiri/internal/blob"
	"github.com/kidandcat/badiri/internal/config"
	"github.com/kidandcat/badiri/internal/session"
	"github.com/kidandcat/badiri/internal/tracker"
)

type API struct {
	svc      *tracker.Service
	sessions session.Store
	admin    config.AdminConfig
	log      *zap.SugaredLogger
}

func New(svc *tracker.Service, sessions session.Store, admin config.AdminConfig, log *zap.SugaredLogger) *API {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &API{svc: svc, sessions: sessions, admin: admin, log: log}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	a.registerAuthRoutes(mux)

	mux.Handle("GET /api/inbox", a.requireSession(a.handleInbox))
	mux.Handle("GET /api/desk", a.requireSession(a.handleDesk))
	mux.Handle("POST /api/items/{kind}/{index}/accept", a.requireSession(a.handleAccept))
	mux.Handle("POST /api/items/{kind}/{index}/revert", a.requireSession(a.handleRevert))
	mux.Handle("POST /api/items/{kind}/{index}/progress", a.requireSession(a.handleProgress))

	mux.Handle("GET /api/projects", a.requireSession(requireEditor(a.handleProjects)))
	mux.Handle("GET /api/projects/{project}/tasks", a.requireSession(requireEditor(a.handleProjectTasks)))
	mux.Handle("GET /api/reports", a.requireSession(a.handleReport))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrValidation), errors.Is(err, blob.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) fail(w http.ResponseWriter, what string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		a.log.Errorw(what, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func (a *API) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := auth.CurrentSession(r, a.sessions)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		next(w, r.WithContext(auth.WithSession(r.Context(), s)))
	})
}

// requireEditor keeps Viewer Only sessions out of the workspace views.
func requireEditor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !identity(r).CanEdit() {
			writeError(w, http.StatusForbidden, "not permitted")
			return
		}
		next(w, r)
	}
}

func identity(r *http.Request) tracker.Identity {
	return auth.FromContext(r.Context()).Identity()
}

type item struct {
	Kind        tracker.Kind `json:"kind"`
	Index       int          `json:"index"`
	Project     string       `json:"project"`
	Parent      string       `json:"parent_task,omitempty"`
	Name        string       `json:"name"`
	Assignee    string       `json:"assignee"`
	Status      string       `json:"status"`
	DateAdded   string       `json:"date_added"`
	DueDate     string       `json:"due_date"`
	Comments    string       `json:"comments"`
	Attachments []string     `json:"attachments,omitempty"`
}

func toItem(it tracker.Item) item {
	return item{
		Kind:        it.Kind,
		Index:       it.Index,
		Project:     it.Project,
		Parent:      it.Parent,
		Name:        it.Name,
		Assignee:    it.Assignee,
		Status:      it.Status,
		DateAdded:   it.DateAdded,
		DueDate:     it.DueDate,
		Comments:    it.Comments,
		Attachments: it.Attachments,
	}
}

func toItems(its []tracker.Item) []item {
	out := make([]item, 0, len(its))
	for _, it := range its {
		out = append(out, toItem(it))
	}
	return out
}

// Desk

func (a *API) handleInbox(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.ListInbox(r.Context(), identity(r).Name)
	if err != nil {
		a.fail(w, "error listing inbox", err)
		return
	}
	writeJSON(w, http.StatusOK, toItems(items))
}

func (a *API) handleDesk(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.Desk(r.Context(), identity(r).Name)
	if err != nil {
		a.fail(w, "error listing desk", err)
		return
	}
	writeJSON(w, http.StatusOK, toItems(items))
}

type actionRequest struct {
	Name     string `json:"name"`
	Note     string `json:"note"`
	Assignee string `json:"assignee"`
	Status   string `json:"status"`
}

func decodeAction(w http.ResponseWriter, r *http.Request) (tracker.Ref, actionRequest, bool) {
	kind := tracker.Kind(r.PathValue("kind"))
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || !kind.Valid() {
		writeError(w, http.StatusBadRequest, "invalid item")
		return tracker.Ref{}, actionRequest{}, false
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return tracker.Ref{}, actionRequest{}, false
	}
	return tracker.Ref{Kind: kind, Index: index, Name: req.Name}, req, true
}

func (a *API) handleAccept(w http.ResponseWriter, r *http.Request) {
	ref, req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	it, err := a.svc.Accept(r.Context(), ref, identity(r).Name, req.Note)
	if err != nil {
		a.fail(w, "error accepting item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItem(it))
}

func (a *API) handleRevert(w http.ResponseWriter, r *http.Request) {
	ref, req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	if req.Assignee == "" {
		writeError(w, http.StatusBadRequest, "assignee required")
		return
	}
	it, err := a.svc.Revert(r.Context(), ref, req.Assignee, identity(r).Name, req.Note)
	if err != nil {
		a.fail(w, "error reverting item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItem(it))
}

func (a *API) handleProgress(w http.ResponseWriter, r *http.Request) {
	ref, req, ok := decodeAction(w, r)
	if !ok {
		return
	}
	it, err := a.svc.UpdateProgress(r.Context(), ref, req.Status, identity(r).Name, req.Note)
	if err != nil {
		a.fail(w, "error updating progress", err)
		return
	}
	writeJSON(w, http.StatusOK, toItem(it))
}

// Workspace

func (a *API) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.svc.Projects(r.Context())
	if err != nil {
		a.fail(w, "error getting projects", err)
		return
	}
	if projects == nil {
		projects = []string{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (a *API) handleProjectTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.svc.ProjectTasks(r.Context(), r.PathValue("project"))
	if err != nil {
		a.fail(w, "error getting tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, toItems(tasks))
}

func (a *API) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := a.svc.Report(r.Context())
	if err != nil {
		a.fail(w, "error building report", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
