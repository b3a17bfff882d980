package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/kidandcat/badiri/internal/tracker"
)

// fakeCalendar stores events keyed by their badiri_task property.
type fakeCalendar struct {
	mu      sync.Mutex
	events  map[string]*gcal.Event
	inserts int
	patches int
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/events"):
		prop := r.URL.Query().Get("privateExtendedProperty")
		key := strings.TrimPrefix(prop, TaskProperty+"=")
		list := &gcal.Events{}
		if ev, ok := f.events[key]; ok {
			list.Items = []*gcal.Event{ev}
		}
		json.NewEncoder(w).Encode(list)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/events"):
		var ev gcal.Event
		json.NewDecoder(r.Body).Decode(&ev)
		key := ev.ExtendedProperties.Private[TaskProperty]
		ev.Id = "ev-" + key
		f.events[key] = &ev
		f.inserts++
		json.NewEncoder(w).Encode(ev)
	case r.Method == http.MethodPatch:
		var ev gcal.Event
		json.NewDecoder(r.Body).Decode(&ev)
		f.patches++
		json.NewEncoder(w).Encode(ev)
	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newTestSyncer(t *testing.T) (*Syncer, *fakeCalendar) {
	t.Helper()
	fake := &fakeCalendar{events: make(map[string]*gcal.Event)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	api, err := gcal.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("calendar service: %v", err)
	}
	s := NewWithService(api, "team", nil)
	s.loc = time.UTC
	return s, fake
}

func TestSyncInsertsThenPatches(t *testing.T) {
	s, fake := newTestSyncer(t)
	tasks := []tracker.Item{
		{Project: "Apollo", Name: "Launch", Assignee: "Amy", Status: tracker.StatusPending, DueDate: "2025-03-12"},
		{Project: "Apollo", Name: "Done", Status: tracker.StatusCompleted, DueDate: "2025-03-01"},
		{Project: "Apollo", Name: "Someday", Status: tracker.StatusPending, DueDate: "later"},
	}

	res, err := s.Sync(context.Background(), tasks)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res != (Result{Inserted: 1, Skipped: 2}) {
		t.Fatalf("first sync = %+v", res)
	}
	ev := fake.events["Apollo/Launch"]
	if ev == nil || ev.Start.Date != "2025-03-12" || ev.End.Date != "2025-03-13" {
		t.Fatalf("unexpected event %+v", ev)
	}

	res, err = s.Sync(context.Background(), tasks[:1])
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if res.Patched != 1 || fake.inserts != 1 || fake.patches != 1 {
		t.Fatalf("second sync = %+v inserts=%d patches=%d", res, fake.inserts, fake.patches)
	}
}

func TestSyncReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()
	api, err := gcal.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("calendar service: %v", err)
	}
	s := NewWithService(api, "team", nil)
	res, err := s.Sync(context.Background(), []tracker.Item{
		{Project: "P", Name: "A", Status: tracker.StatusPending, DueDate: "2025-03-12"},
	})
	if err == nil || !strings.Contains(err.Error(), "P/A") {
		t.Fatalf("expected error naming the task, got %v", err)
	}
	if res.Inserted != 0 || res.Patched != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}
