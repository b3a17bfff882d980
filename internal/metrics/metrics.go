// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors on their own registry.
type Metrics struct {
	Registry    *prometheus.Registry
	Requests    *prometheus.CounterVec
	Latency     *prometheus.HistogramVec
	TableSaves  *prometheus.CounterVec
	Extractions *prometheus.CounterVec
	Logins      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badiri_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "badiri_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		TableSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badiri_table_saves_total",
			Help: "Full-table saves by table and result.",
		}, []string{"table", "result"}),
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badiri_ai_extractions_total",
			Help: "AI extraction calls by source and result.",
		}, []string{"source", "result"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "badiri_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
	}
	m.Registry.MustRegister(
		m.Requests, m.Latency, m.TableSaves, m.Extractions, m.Logins,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveSave matches db.SaveObserver.
func (m *Metrics) ObserveSave(table string, err error) {
	m.TableSaves.WithLabelValues(table, result(err)).Inc()
}

func (m *Metrics) ObserveExtraction(source string, err error) {
	m.Extractions.WithLabelValues(source, result(err)).Inc()
}

func (m *Metrics) ObserveLogin(ok bool) {
	if ok {
		m.Logins.WithLabelValues("ok").Inc()
		return
	}
	m.Logins.WithLabelValues("rejected").Inc()
}

func (m *Metrics) ObserveRequest(method, route string, code int, seconds float64) {
	m.Requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.Latency.WithLabelValues(route).Observe(seconds)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
