package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSave(t *testing.T) {
	m := New()
	m.ObserveSave("tasks", nil)
	m.ObserveSave("tasks", nil)
	m.ObserveSave("tasks", errors.New("disk full"))
	if got := testutil.ToFloat64(m.TableSaves.WithLabelValues("tasks", "ok")); got != 2 {
		t.Fatalf("ok saves = %v", got)
	}
	if got := testutil.ToFloat64(m.TableSaves.WithLabelValues("tasks", "error")); got != 1 {
		t.Fatalf("failed saves = %v", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/desk", 200, 0.01)
	m.ObserveExtraction("image", nil)
	m.ObserveLogin(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`badiri_http_requests_total{code="200",method="GET",route="/desk"} 1`,
		`badiri_ai_extractions_total{result="ok",source="image"} 1`,
		`badiri_logins_total{result="rejected"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}
