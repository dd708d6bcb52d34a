// Package metrics owns the Prometheus registry and the counting stages of
// the request pipeline. The registry is constructed explicitly and passed
// to whoever needs it; nothing in this package touches the library's
// default global registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/ticx-go/db"
)

// Metrics bundles every collector the service exposes under /prom.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	responses   *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
	dbDuration  *prometheus.HistogramVec
}

// New builds a registry with the service collectors plus the standard Go
// runtime collector.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "counts number of received requests",
		}, []string{"method"}),
		responses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_response_total",
			Help: "counts number of responses sent",
		}, []string{"status_code"}),
		reqDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "measurement of how long it took to process request",
		}, []string{"handler"}),
		dbDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "db_query_duration_seconds",
			Help: "measurement of how long it takes to process DB query",
		}, []string{"table", "query"}),
	}
	registry.MustRegister(collectors.NewGoCollector())
	return m
}

// Handler serves the registry in the Prometheus text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CountRequests is the outermost pipeline stage: it counts every inbound
// request by method before any other stage runs.
func (m *Metrics) CountRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requests.WithLabelValues(r.Method).Inc()
		next.ServeHTTP(w, r)
	})
}

// CountResponses records the final response status and the handling
// duration. The response writer is wrapped so the status is observed even
// when an inner stage short-circuits before the handler.
func (m *Metrics) CountResponses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.responses.WithLabelValues(strconv.Itoa(status)).Inc()

		handler := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			handler = rctx.RoutePattern()
		}
		m.reqDuration.WithLabelValues(handler).Observe(time.Since(start).Seconds())
	})
}

// ObserveQuery records the duration of one database statement. Wired into
// the store's OnQuery hook at startup.
func (m *Metrics) ObserveQuery(table, operation string, elapsed time.Duration) {
	m.dbDuration.WithLabelValues(table, operation).Observe(elapsed.Seconds())
}

// RegisterPoolStats exposes pool accounting as live gauges and counters
// reading from the pool's own snapshot.
func (m *Metrics) RegisterPoolStats(stats func() db.Stats) {
	m.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "db_pool_acquire_total",
		Help: "counts successful connection leases",
	}, func() float64 { return float64(stats().Acquires) }))
	m.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "db_pool_timeout_total",
		Help: "counts lease attempts that timed out",
	}, func() float64 { return float64(stats().Timeouts) }))
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "db_pool_in_use",
		Help: "number of currently leased connections",
	}, func() float64 { return float64(stats().InUse) }))
}
