package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kidandcat/badiri/internal/auth"
	"github.com/kidandcat/badiri/internal/session"
)

func currentSession(r *http.Request) *session.Session {
	return auth.FromContext(r.Context())
}

// authMiddleware loads the session named by the cookie, runs next and then
// persists the session if next changed it (flash, suggestion buffers).
func (s *server) authMiddleware(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := auth.CurrentSession(r, s.sessions)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				s.log.Errorw("session lookup failed", "error", err)
			}
			auth.ClearSessionCookie(w)
			if isHTMX(r) {
				w.Header().Set("HX-Redirect", "/login")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		if !sess.Dirty() {
			return
		}
		if err := s.sessions.Save(r.Context(), sess); err != nil {
			s.log.Errorw("session save failed", "user", sess.User, "error", err)
		}
	})
}

func requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(r)
		if sess == nil || !sess.IsAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// requireEditor rejects read-only viewers.
func requireEditor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(r)
		if sess == nil || !sess.Identity().CanEdit() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// requestLogger tags each request with an ID and records method, route,
// status and latency in the log and in metrics.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		latency := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(r.Method, route, rec.status, latency.Seconds())
		s.log.Infow("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"latency", latency,
		)
	})
}
