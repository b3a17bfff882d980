// Package auth resolves logins and binds sessions to requests.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kidandcat/badiri/internal/config"
	"github.com/kidandcat/badiri/internal/session"
	"github.com/kidandcat/badiri/internal/tracker"
)

const sessionCookie = "badiri_session"

// UserFinder looks up a regular account by credentials.
type UserFinder interface {
	FindLogin(ctx context.Context, email, password string) (tracker.User, bool, error)
}

// Login checks the configured super admin first, then the users table.
// ok is false for unknown or inactive accounts.
func Login(ctx context.Context, users UserFinder, admin config.AdminConfig, email, password string) (tracker.Identity, bool, error) {
	if strings.EqualFold(strings.TrimSpace(email), admin.Email) && password == admin.Password {
		return tracker.Identity{Name: admin.Name, Role: tracker.RoleAdmin, IsAdmin: true}, true, nil
	}
	u, ok, err := users.FindLogin(ctx, email, password)
	if err != nil || !ok {
		return tracker.Identity{}, false, err
	}
	return tracker.Identity{Name: u.FullName, Role: u.Role, IsAdmin: u.Role == tracker.RoleAdmin}, true, nil
}

type ctxKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session set by WithSession, or nil.
func FromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(ctxKey{}).(*session.Session)
	return s
}

// CurrentSession loads the session named by the request cookie.
func CurrentSession(r *http.Request, store session.Store) (*session.Session, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, session.ErrNotFound
	}
	return store.Get(r.Context(), cookie.Value)
}

func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// Logout deletes the stored session and expires the cookie.
func Logout(w http.ResponseWriter, r *http.Request, store session.Store) error {
	ClearSessionCookie(w)
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	if err := store.Delete(r.Context(), cookie.Value); err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}
	return nil
}
