// Package serving is the HTTP client for the model-serving sidecar hosting
// the trained artifacts: the feature pipeline, the risk classifier, the
// anomaly model, the sequence forecaster, and the sentiment analyzer.  One
// Client satisfies all five collaborator contracts.
//
// The score-to-tier boundary table is mirrored here from the classifier's
// training configuration; the core consumes it only through LevelFromScore.
package serving

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/turtacn/sentinel-risk/internal/config"
	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
	"github.com/turtacn/sentinel-risk/pkg/errors"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// Client talks to the model server.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  logging.Logger
}

var (
	_ intelligence.FeaturePipeline   = (*Client)(nil)
	_ intelligence.RiskClassifier    = (*Client)(nil)
	_ intelligence.AnomalyDetector   = (*Client)(nil)
	_ intelligence.Forecaster        = (*Client)(nil)
	_ intelligence.SentimentAnalyzer = (*Client)(nil)
)

// NewClient builds the serving client from configuration.
func NewClient(cfg config.MLConfig, logger logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: cfg.Timeout},
		logger:  logger.Named("serving"),
	}
}

// ComputeFeatures builds the feature vector for one country.
func (c *Client) ComputeFeatures(ctx context.Context, code string) (country.Features, error) {
	var out country.Features
	if err := c.get(ctx, "/features/"+code, &out); err != nil {
		return country.Features{}, err
	}
	return out, nil
}

// ComputeAllFeatures builds vectors for the first limit roster entries.
func (c *Client) ComputeAllFeatures(ctx context.Context, limit int) (map[string]country.Features, error) {
	var out map[string]country.Features
	if err := c.get(ctx, fmt.Sprintf("/features?limit=%d", limit), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]country.Features{}
	}
	return out, nil
}

// Predict scores one feature vector through the classifier artifact.
func (c *Client) Predict(ctx context.Context, features country.Features) (country.RiskPrediction, error) {
	var out country.RiskPrediction
	if err := c.post(ctx, "/predict", features, &out); err != nil {
		return country.RiskPrediction{}, err
	}
	return out, nil
}

// Tier boundaries mirrored from the classifier's training configuration.
const (
	criticalFloor = 85
	highFloor     = 65
	elevatedFloor = 45
	moderateFloor = 25
)

// LevelFromScore maps a 0..100 score onto the risk tier.
func (c *Client) LevelFromScore(score int) risk.RiskLevel {
	switch {
	case score >= criticalFloor:
		return risk.LevelCritical
	case score >= highFloor:
		return risk.LevelHigh
	case score >= elevatedFloor:
		return risk.LevelElevated
	case score >= moderateFloor:
		return risk.LevelModerate
	default:
		return risk.LevelLow
	}
}

// Ready reports whether the model artifacts are loaded.
func (c *Client) Ready(ctx context.Context) bool {
	var out struct {
		Ready bool `json:"ready"`
	}
	if err := c.get(ctx, "/ready", &out); err != nil {
		return false
	}
	return out.Ready
}

// Detect evaluates the anomaly inputs for one country.
func (c *Client) Detect(ctx context.Context, code string, input country.AnomalyInput) (country.AnomalyVerdict, error) {
	var out country.AnomalyVerdict
	if err := c.post(ctx, "/anomaly/"+code, input, &out); err != nil {
		return country.AnomalyVerdict{}, err
	}
	return out, nil
}

// Forecast projects risk 30/60/90 days out.  The shape is validated before
// the wire call so a malformed sequence fails fast as a client error.
func (c *Client) Forecast(ctx context.Context, sequence [][country.SequenceWidth]float64) (intelligence.ForecastResult, error) {
	if len(sequence) != country.SequenceLength {
		return intelligence.ForecastResult{}, errors.New(errors.ErrCodeMalformedSequence,
			fmt.Sprintf("forecast sequence must have %d rows, got %d", country.SequenceLength, len(sequence)))
	}
	body := struct {
		Sequence [][country.SequenceWidth]float64 `json:"sequence"`
	}{Sequence: sequence}

	var out intelligence.ForecastResult
	if err := c.post(ctx, "/forecast", body, &out); err != nil {
		return intelligence.ForecastResult{}, err
	}
	return out, nil
}

// Analyze scores a batch of headlines.  An empty batch yields a neutral
// result without a wire call.
func (c *Client) Analyze(ctx context.Context, headlines []string) (intelligence.SentimentResult, error) {
	if len(headlines) == 0 {
		return intelligence.SentimentResult{DominantSentiment: "neutral"}, nil
	}
	body := struct {
		Headlines []string `json:"headlines"`
	}{Headlines: headlines}

	var out intelligence.SentimentResult
	if err := c.post(ctx, "/sentiment", body, &out); err != nil {
		return intelligence.SentimentResult{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build model server request")
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode model server request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build model server request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCollaboratorUnavailable, "model server unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.CollaboratorUnavailable(
			fmt.Sprintf("model server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, errors.ErrCodeCollaboratorUnavailable, "model server response malformed")
	}
	return nil
}
