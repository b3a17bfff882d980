package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kidandcat/badiri/internal/config"
	"github.com/kidandcat/badiri/internal/session"
	"github.com/kidandcat/badiri/internal/tracker"
)

type fakeUsers struct {
	user tracker.User
	err  error
}

func (f fakeUsers) FindLogin(_ context.Context, email, password string) (tracker.User, bool, error) {
	if f.err != nil {
		return tracker.User{}, false, f.err
	}
	if email == f.user.Email && password == f.user.Password {
		return f.user, true, nil
	}
	return tracker.User{}, false, nil
}

var admin = config.AdminConfig{Email: "admin", Password: "Admin123", Name: "Master Admin"}

func TestLoginSuperAdmin(t *testing.T) {
	id, ok, err := Login(context.Background(), fakeUsers{}, admin, "  ADMIN ", "Admin123")
	if err != nil || !ok {
		t.Fatalf("login: ok=%v err=%v", ok, err)
	}
	if id.Name != "Master Admin" || id.Role != tracker.RoleAdmin || !id.IsAdmin {
		t.Fatalf("unexpected identity %+v", id)
	}

	for _, pw := range []string{"Admin123 ", " Admin123", "admin123"} {
		if _, ok, _ := Login(context.Background(), fakeUsers{}, admin, "admin", pw); ok {
			t.Fatalf("super admin password %q accepted", pw)
		}
	}
}

func TestLoginUser(t *testing.T) {
	users := fakeUsers{user: tracker.User{FullName: "Viv", Email: "viv@example.com", Password: "pw", Role: tracker.RoleViewer}}
	id, ok, err := Login(context.Background(), users, admin, "viv@example.com", "pw")
	if err != nil || !ok {
		t.Fatalf("login: ok=%v err=%v", ok, err)
	}
	if id.Name != "Viv" || id.IsAdmin || id.CanEdit() {
		t.Fatalf("unexpected identity %+v", id)
	}

	if _, ok, _ := Login(context.Background(), users, admin, "viv@example.com", "wrong"); ok {
		t.Fatal("wrong password accepted")
	}
	boom := errors.New("boom")
	if _, _, err := Login(context.Background(), fakeUsers{err: boom}, admin, "x", "y"); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestSessionCookieRoundTrip(t *testing.T) {
	store := session.NewMemory()
	s, err := session.New(tracker.Identity{Name: "Amy", Role: tracker.RoleStandard})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(context.Background(), s); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	SetSessionCookie(rec, s.Token)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly || cookies[0].SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/desk", nil)
	req.AddCookie(cookies[0])
	got, err := CurrentSession(req, store)
	if err != nil || got.User != "Amy" {
		t.Fatalf("current session: %+v %v", got, err)
	}

	if err := Logout(httptest.NewRecorder(), req, store); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := CurrentSession(req, store); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("session survived logout: %v", err)
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatal("expected nil session")
	}
	s := &session.Session{User: "Amy"}
	if got := FromContext(WithSession(context.Background(), s)); got != s {
		t.Fatal("session not carried by context")
	}
}
