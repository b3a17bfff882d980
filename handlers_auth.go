package main

import (
	"net/http"

	"github.com/kidandcat/badiri/internal/auth"
	"github.com/kidandcat/badiri/internal/session"
)

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, "login.html", nil)
		return
	}
	email := formValue(r, "email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		renderTemplate(w, "login.html", map[string]any{"Error": "Email and password are required", "Email": email})
		return
	}

	id, ok, err := auth.Login(r.Context(), s.svc, s.cfg.Admin, email, password)
	if err != nil {
		s.log.Errorw("login lookup failed", "error", err)
		http.Error(w, "Something went wrong, please retry.", http.StatusInternalServerError)
		return
	}
	s.metrics.ObserveLogin(ok)
	if !ok {
		s.log.Infow("login rejected", "email", email)
		renderTemplate(w, "login.html", map[string]any{"Error": "Invalid credentials or account suspended", "Email": email})
		return
	}

	sess, err := session.New(id)
	if err != nil {
		http.Error(w, "Something went wrong, please retry.", http.StatusInternalServerError)
		return
	}
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.log.Errorw("session save failed", "user", id.Name, "error", err)
		http.Error(w, "Something went wrong, please retry.", http.StatusInternalServerError)
		return
	}
	auth.SetSessionCookie(w, sess.Token)
	s.log.Infow("login", "user", id.Name, "role", id.Role)
	http.Redirect(w, r, "/desk", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := auth.Logout(w, r, s.sessions); err != nil {
		s.log.Warnw("session delete failed", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
