package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kidandcat/badiri/internal/config"
	"github.com/kidandcat/badiri/internal/db"
	"github.com/kidandcat/badiri/internal/session"
	"github.com/kidandcat/badiri/internal/tracker"
)

var admin = config.AdminConfig{Email: "admin", Password: "Admin123", Name: "Master Admin"}

type testEnv struct {
	svc *tracker.Service
	mux *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	svc := tracker.NewService(db.NewStore(db.NewMemory()), tracker.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	if _, err := svc.RegisterUser(ctx, tracker.User{FullName: "Amy", Email: "amy@example.com", Password: "pw", Role: tracker.RoleStandard}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.CreateTask(ctx, tracker.NewTask{Project: "Apollo", Name: "Launch", Assignee: "Amy", DueDate: "2025-03-20"}, "Master Admin"); err != nil {
		t.Fatalf("create task: %v", err)
	}
	mux := http.NewServeMux()
	New(svc, session.NewMemory(), admin, nil).RegisterRoutes(mux)
	return &testEnv{svc: svc, mux: mux}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	rec := e.do(t, http.MethodPost, "/api/auth/login", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rec.Code, rec.Body.String())
	}
	return rec.Result().Cookies()[0]
}

func TestRequiresSession(t *testing.T) {
	e := newTestEnv(t)
	if rec := e.do(t, http.MethodGet, "/api/inbox", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/api/auth/login", `{"email":"amy@example.com","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestInboxAcceptFlow(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t, "amy@example.com", "pw")

	rec := e.do(t, http.MethodGet, "/api/inbox", "", cookie)
	var inbox []item
	if err := json.NewDecoder(rec.Body).Decode(&inbox); err != nil {
		t.Fatalf("decode inbox: %v", err)
	}
	if len(inbox) != 1 || inbox[0].Name != "Launch" {
		t.Fatalf("unexpected inbox %+v", inbox)
	}

	rec = e.do(t, http.MethodPost, "/api/items/task/0/accept", `{"name":"Launch","note":"on it"}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept status %d: %s", rec.Code, rec.Body.String())
	}
	var got item
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Status != tracker.StatusInProgress || !strings.Contains(got.Comments, "Amy ACCEPTED: on it") {
		t.Fatalf("unexpected item %+v", got)
	}

	// The row left the inbox, so a replayed accept is stale.
	rec = e.do(t, http.MethodPost, "/api/items/task/0/accept", `{"name":"Launch"}`, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("replayed accept status = %d", rec.Code)
	}
}

func TestProgressValidation(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t, "amy@example.com", "pw")
	rec := e.do(t, http.MethodPost, "/api/items/task/0/progress", `{"name":"Launch","status":"Blocked"}`, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = e.do(t, http.MethodPost, "/api/items/bogus/0/progress", `{}`, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad kind status = %d", rec.Code)
	}
}

func TestReportAndProjects(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t, "ADMIN", "Admin123")

	rec := e.do(t, http.MethodGet, "/api/projects", "", cookie)
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"Apollo"`)) {
		t.Fatalf("projects = %s", rec.Body.String())
	}
	rec = e.do(t, http.MethodGet, "/api/reports", "", cookie)
	var rep tracker.Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Totals.Tasks != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}

	rec = e.do(t, http.MethodGet, "/api/auth/me", "", cookie)
	if !strings.Contains(rec.Body.String(), `"is_admin":true`) {
		t.Fatalf("me = %s", rec.Body.String())
	}
}

func TestViewerCannotReadWorkspace(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.svc.RegisterUser(context.Background(), tracker.User{FullName: "Vic", Email: "vic@example.com", Password: "pw", Role: tracker.RoleViewer}); err != nil {
		t.Fatalf("register: %v", err)
	}
	cookie := e.login(t, "vic@example.com", "pw")
	for _, path := range []string{"/api/projects", "/api/projects/Apollo/tasks"} {
		if rec := e.do(t, http.MethodGet, path, "", cookie); rec.Code != http.StatusForbidden {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
	}
	if rec := e.do(t, http.MethodGet, "/api/reports", "", cookie); rec.Code != http.StatusOK {
		t.Fatalf("reports: status = %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t, "amy@example.com", "pw")
	e.do(t, http.MethodPost, "/api/auth/logout", "", cookie)
	if rec := e.do(t, http.MethodGet, "/api/desk", "", cookie); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status after logout = %d", rec.Code)
	}
}
