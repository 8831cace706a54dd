package headlines_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/sentinel-risk/internal/config"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/sentinel-risk/internal/intelligence/headlines"
	"github.com/turtacn/sentinel-risk/pkg/errors"
)

func newsConfig(baseURL string) config.NewsConfig {
	return config.NewsConfig{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		MaxHeadlines: 3,
		Timeout:      2 * time.Second,
	}
}

func TestFetch_NotConfigured(t *testing.T) {
	t.Parallel()
	f := headlines.NewFetcher(config.NewsConfig{MaxHeadlines: 5, Timeout: time.Second}, prometheus.New(), logging.NewNopLogger())

	_, err := f.Fetch(context.Background(), "Sudan")
	require.Error(t, err)
	assert.True(t, errors.IsCollaboratorUnavailable(err))
}

func TestFetch_ReturnsTitlesUpToLimit(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Sudan", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Write([]byte(`{"articles":[
			{"title":"Fighting intensifies near the capital"},
			{"title":""},
			{"title":"Aid corridors close"},
			{"title":"Talks stall"},
			{"title":"Fourth headline beyond limit"}
		]}`))
	}))
	defer srv.Close()

	metrics := prometheus.New()
	f := headlines.NewFetcher(newsConfig(srv.URL), metrics, logging.NewNopLogger())
	titles, err := f.Fetch(context.Background(), "Sudan")
	require.NoError(t, err)
	// Empty titles are dropped; the limit caps the rest.
	assert.Equal(t, []string{
		"Fighting intensifies near the capital",
		"Aid corridors close",
		"Talks stall",
	}, titles)
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.HeadlineFetches.WithLabelValues("success")))
}

func TestFetch_Non200IsUpstreamIO(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	metrics := prometheus.New()
	f := headlines.NewFetcher(newsConfig(srv.URL), metrics, logging.NewNopLogger())
	_, err := f.Fetch(context.Background(), "Iran")
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamIO(err))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.HeadlineFetches.WithLabelValues("error")))
}

func TestFetch_MalformedBodyIsUpstreamIO(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"articles": "not-a-list"}`))
	}))
	defer srv.Close()

	f := headlines.NewFetcher(newsConfig(srv.URL), prometheus.New(), logging.NewNopLogger())
	_, err := f.Fetch(context.Background(), "Iran")
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamIO(err))
}

func TestFetch_ContextCancellation(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	f := headlines.NewFetcher(newsConfig(srv.URL), prometheus.New(), logging.NewNopLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, "Taiwan")
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamIO(err))
}
