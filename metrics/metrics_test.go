package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ticx-go/db"
)

func serve(handler http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

// histogramLabels collects the label sets of every series a histogram
// currently exports.
func histogramLabels(t *testing.T, m *Metrics, name string) []map[string]string {
	t.Helper()
	families, err := m.registry.Gather()
	require.NoError(t, err)
	var out []map[string]string
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			out = append(out, labels)
		}
	}
	return out
}

func TestCountRequestsByMethod(t *testing.T) {
	m := New()
	handler := m.CountRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	serve(handler, http.MethodGet, "/")
	serve(handler, http.MethodGet, "/")
	serve(handler, http.MethodPost, "/")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost)))
}

func TestCountResponsesRecordsStatus(t *testing.T) {
	m := New()
	handler := m.CountResponses(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	serve(handler, http.MethodGet, "/missing")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.responses.WithLabelValues("404")))
}

func TestCountResponsesDefaultsToOK(t *testing.T) {
	m := New()
	handler := m.CountResponses(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No explicit WriteHeader: net/http sends 200.
	}))

	serve(handler, http.MethodGet, "/")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.responses.WithLabelValues("200")))
}

func TestCountResponsesSeesShortCircuits(t *testing.T) {
	m := New()
	// An inner stage rejects the request before the handler would run, the
	// way the auth middleware does.
	rejecting := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no", http.StatusUnauthorized)
		})
	}
	handler := m.CountResponses(rejecting(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})))

	serve(handler, http.MethodGet, "/api/ticket/1")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.responses.WithLabelValues("401")))
}

func TestRequestDurationUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.CountResponses)
	r.Get("/api/ticket/{id}", func(w http.ResponseWriter, r *http.Request) {})

	serve(r, http.MethodGet, "/api/ticket/17")
	serve(r, http.MethodGet, "/api/ticket/99")

	labelSets := histogramLabels(t, m, "http_request_duration_seconds")
	require.Len(t, labelSets, 1, "ids must collapse into one series per route")
	assert.Equal(t, "/api/ticket/{id}", labelSets[0]["handler"])
}

func TestObserveQuery(t *testing.T) {
	m := New()

	m.ObserveQuery(db.TableUsers, "check_credentials", 3*time.Millisecond)
	m.ObserveQuery(db.TableTickets, "insert", time.Millisecond)

	labelSets := histogramLabels(t, m, "db_query_duration_seconds")
	require.Len(t, labelSets, 2)
	assert.Contains(t, labelSets, map[string]string{"table": "users", "query": "check_credentials"})
	assert.Contains(t, labelSets, map[string]string{"table": "tickets", "query": "insert"})
}

func TestRegisterPoolStats(t *testing.T) {
	m := New()
	snapshot := db.Stats{Acquires: 12, Timeouts: 3, InUse: 2, Capacity: 10}
	m.RegisterPoolStats(func() db.Stats { return snapshot })

	rec := serve(m.Handler(), http.MethodGet, "/prom")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "db_pool_acquire_total 12")
	assert.Contains(t, body, "db_pool_timeout_total 3")
	assert.Contains(t, body, "db_pool_in_use 2")
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	serve(m.CountRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})),
		http.MethodGet, "/")

	rec := serve(m.Handler(), http.MethodGet, "/prom")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_request_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines", "runtime collector must be registered")
}
