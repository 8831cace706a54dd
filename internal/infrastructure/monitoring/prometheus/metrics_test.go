package prometheus_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
)

func TestNew_IndependentRegistries(t *testing.T) {
	t.Parallel()
	// Two instances must not collide; each owns its registry.
	a := prometheus.New()
	b := prometheus.New()
	a.BriefCacheHits.Inc()
	b.BriefCacheMisses.Inc()
}

func TestHandler_ServesMetrics(t *testing.T) {
	t.Parallel()
	m := prometheus.New()
	m.ObserveRefresh("ok", 2*time.Second, 15, 47, 3)
	m.ObserveHTTP("GET", "/api/dashboard/summary", "200", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sentinel_refresh_cycles_total")
	assert.Contains(t, body, "sentinel_global_threat_index 47")
	assert.Contains(t, body, "sentinel_snapshot_countries 15")
	assert.Contains(t, body, "sentinel_http_requests_total")
}
