package api

import (
	"encoding/json"
	"net/http"

	"github.com/kidandcat/badiri/internal/auth"
	"github.com/kidandcat/badiri/internal/session"
)

func (a *API) registerAuthRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", a.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", a.handleLogout)
	mux.Handle("GET /api/auth/me", a.requireSession(a.handleMe))
}

type meResponse struct {
	User    string `json:"user"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	id, ok, err := auth.Login(r.Context(), a.svc, a.admin, req.Email, req.Password)
	if err != nil {
		a.fail(w, "error checking login", err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials or suspended account")
		return
	}

	s, err := session.New(id)
	if err != nil {
		a.fail(w, "error creating session", err)
		return
	}
	if err := a.sessions.Save(r.Context(), s); err != nil {
		a.fail(w, "error saving session", err)
		return
	}
	auth.SetSessionCookie(w, s.Token)
	writeJSON(w, http.StatusOK, meResponse{User: id.Name, Role: id.Role, IsAdmin: id.IsAdmin})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := auth.Logout(w, r, a.sessions); err != nil {
		a.log.Warnw("error deleting session", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	s := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, meResponse{User: s.User, Role: s.Role, IsAdmin: s.IsAdmin})
}
