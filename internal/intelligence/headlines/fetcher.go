// Package headlines implements the best-effort NewsAPI headline fetcher used
// to ground narrative briefs in today's reporting.  Every failure mode is
// classified but collapses to an empty slice at the call site: a missing
// brief context is always preferable to a failed enrichment request.
package headlines

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/turtacn/sentinel-risk/internal/config"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/sentinel-risk/pkg/errors"
)

// Fetcher retrieves recent headlines for a country from NewsAPI.
type Fetcher struct {
	cfg     config.NewsConfig
	client  *http.Client
	metrics *prometheus.Metrics
	logger  logging.Logger
}

// NewFetcher constructs a Fetcher.  The HTTP client timeout doubles as the
// upper bound on how long an enrichment request can stall on headline I/O.
func NewFetcher(cfg config.NewsConfig, metrics *prometheus.Metrics, logger logging.Logger) *Fetcher {
	return &Fetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		metrics: metrics,
		logger:  logger.Named("headlines"),
	}
}

// newsAPIResponse is the subset of the NewsAPI payload we read.
type newsAPIResponse struct {
	Articles []struct {
		Title string `json:"title"`
	} `json:"articles"`
}

// Fetch returns up to MaxHeadlines recent titles mentioning countryName.
// Error classification follows the platform taxonomy:
//
//   - not configured (no API key)    → ErrCodeCollaboratorUnavailable
//   - network failure or timeout     → ErrCodeUpstreamIO
//   - malformed response body        → ErrCodeUpstreamIO
//
// Callers treat any error as "no headlines available" and continue.
func (f *Fetcher) Fetch(ctx context.Context, countryName string) ([]string, error) {
	if f.cfg.APIKey == "" {
		f.metrics.HeadlineFetches.WithLabelValues("not_configured").Inc()
		return nil, errors.CollaboratorUnavailable("headline fetcher not configured")
	}

	q := url.Values{}
	q.Set("q", countryName)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(f.cfg.MaxHeadlines))
	q.Set("apiKey", f.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUpstreamIO, "failed to build headline request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.metrics.HeadlineFetches.WithLabelValues("error").Inc()
		f.logger.Warn("headline fetch failed",
			logging.String("country", countryName), logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeUpstreamIO, "headline fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.metrics.HeadlineFetches.WithLabelValues("error").Inc()
		f.logger.Warn("headline fetch returned non-200",
			logging.String("country", countryName), logging.Int("status", resp.StatusCode))
		return nil, errors.UpstreamIO("headline fetch returned status " + strconv.Itoa(resp.StatusCode))
	}

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		f.metrics.HeadlineFetches.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, errors.ErrCodeUpstreamIO, "malformed headline response")
	}

	titles := make([]string, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if a.Title != "" {
			titles = append(titles, a.Title)
		}
		if len(titles) == f.cfg.MaxHeadlines {
			break
		}
	}
	f.metrics.HeadlineFetches.WithLabelValues("success").Inc()
	return titles, nil
}
