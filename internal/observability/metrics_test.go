package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	AuthFailuresTotal.WithLabelValues("jwt", "expired").Inc()
	RateLimitRejectedTotal.WithLabelValues("GET /protected").Inc()
	RequestsTotal.WithLabelValues("GET", "GET /health", "200").Inc()
	RequestDuration.WithLabelValues("GET", "GET /health").Observe(0.01)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	for _, name := range []string{
		"auth_requests_total",
		"auth_request_duration_seconds",
		"auth_failures_total",
		"auth_ratelimit_rejected_total",
	} {
		assert.True(t, found[name], name)
	}
}

func TestMetricsMiddleware_RecordsRouteAndStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /teapot/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := MetricsMiddleware(mux)

	counter := RequestsTotal.WithLabelValues("GET", "GET /teapot/{id}", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot/1", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMetricsMiddleware_Unmatched(t *testing.T) {
	handler := MetricsMiddleware(http.NewServeMux())
	counter := RequestsTotal.WithLabelValues("GET", "unmatched", "404")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestStatusWriter_DefaultsTo200(t *testing.T) {
	sw := NewStatusWriter(httptest.NewRecorder())
	_, _ = sw.Write([]byte("ok"))
	sw.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusOK, sw.Status())
}
