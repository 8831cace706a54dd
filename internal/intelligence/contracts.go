// Package intelligence defines the contracts of the ML collaborators the risk
// core consumes: the feature pipeline, the risk classifier, the anomaly
// model, the sequence forecaster, the sentiment analyzer, the narrative brief
// generator, and the prediction tracker.  The core owns aggregation and
// caching; everything behind these interfaces is external and replaceable.
//
// Failure contract: implementations return an *errors.AppError with
// ErrCodeCollaboratorUnavailable when their model artifact or upstream
// service is missing, and ErrCodeUpstreamIO for best-effort network fetches.
// Callers degrade to defaults or empty results; they never fail a refresh
// cycle or an enrichment request on these codes alone.
package intelligence

import (
	"context"
	"time"

	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// FeaturePipeline computes the per-country feature vectors from the cached
// data drops (GDELT, ACLED, UCDP, World Bank) and live headline sentiment.
type FeaturePipeline interface {
	// ComputeFeatures builds the feature vector for one country.
	ComputeFeatures(ctx context.Context, code string) (country.Features, error)

	// ComputeAllFeatures builds vectors for the first limit roster entries;
	// limit <= 0 means the whole roster.  Countries whose data is missing
	// map to a zero vector rather than an error.
	ComputeAllFeatures(ctx context.Context, limit int) (map[string]country.Features, error)
}

// RiskClassifier is the trained risk-classification model.
type RiskClassifier interface {
	// Predict scores one feature vector.  Returns
	// ErrCodeCollaboratorUnavailable when the model artifact is missing.
	Predict(ctx context.Context, features country.Features) (country.RiskPrediction, error)

	// LevelFromScore is the classifier-owned score→tier boundary function.
	// Fusion re-derives the tier through this after adjusting a score; the
	// core never redefines the boundaries.
	LevelFromScore(score int) risk.RiskLevel

	// Ready reports whether the model artifacts are present, for the health
	// endpoint.
	Ready(ctx context.Context) bool
}

// AnomalyDetector is the statistical anomaly model (scaler + threshold).
type AnomalyDetector interface {
	// Detect evaluates the anomaly input subset for one country.  The
	// verdict's TopDeviantFeature names the input with the largest z-score
	// magnitude for alert narration.
	Detect(ctx context.Context, code string, input country.AnomalyInput) (country.AnomalyVerdict, error)
}

// Trend labels the forecaster's direction call.
type Trend string

const (
	TrendEscalating   Trend = "ESCALATING"
	TrendStable       Trend = "STABLE"
	TrendDeescalating Trend = "DE-ESCALATING"
)

// ForecastResult is the sequence forecaster's output.
type ForecastResult struct {
	Forecast30d float64 `json:"forecast_30d"`
	Forecast60d float64 `json:"forecast_60d"`
	Forecast90d float64 `json:"forecast_90d"`
	Trend       Trend   `json:"trend"`
}

// Forecaster is the sequence model projecting risk 30/60/90 days out.
type Forecaster interface {
	// Forecast consumes a fixed-shape sequence (SequenceLength rows of
	// SequenceWidth features) and fails with ErrCodeMalformedSequence on any
	// other shape.
	Forecast(ctx context.Context, sequence [][country.SequenceWidth]float64) (ForecastResult, error)
}

// SentimentResult summarises headline sentiment for one country.
type SentimentResult struct {
	DominantSentiment string  `json:"dominant_sentiment"`
	EscalatoryPct     float64 `json:"headline_escalatory_pct"`
	NegativeScore     float64 `json:"negative_score"`
}

// SentimentAnalyzer scores a batch of headlines.  An empty batch yields a
// neutral result, not an error.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, headlines []string) (SentimentResult, error)
}

// HeadlineFetcher retrieves recent headlines for a country, best effort:
// failures and missing configuration collapse to an empty slice at the call
// site.
type HeadlineFetcher interface {
	Fetch(ctx context.Context, countryName string) ([]string, error)
}

// Brief is the structured narrative produced by the generation collaborator.
type Brief struct {
	RiskScore   int            `json:"riskScore"`
	RiskLevel   risk.RiskLevel `json:"riskLevel"`
	Summary     string         `json:"summary"`
	KeyFactors  []string       `json:"keyFactors"`
	Industries  []string       `json:"industries"`
	WatchList   []string       `json:"watchList"`
	CausalChain []string       `json:"causalChain"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// BriefGenerator is the third-party large-language-model collaborator that
// turns an ML context summary into an analyst-grade brief.
type BriefGenerator interface {
	// Generate returns ErrCodeCollaboratorUnavailable when the generator is
	// not configured or the upstream call fails; the enrichment service
	// substitutes a fallback brief.
	Generate(ctx context.Context, mlContext string) (*Brief, error)
}

// TrackedPrediction is one logged prediction in the tracker's record.
type TrackedPrediction struct {
	Code         string         `json:"countryCode"`
	RiskScore    int            `json:"riskScore"`
	RiskLevel    risk.RiskLevel `json:"riskLevel"`
	Confidence   float64        `json:"confidence"`
	ModelVersion string         `json:"modelVersion"`
	PredictedAt  time.Time      `json:"predictedAt"`
}

// AccuracyResult is the tracker's trailing-window accuracy report.
type AccuracyResult struct {
	AccuracyPct float64 `json:"accuracy_pct"`
	SampleSize  int     `json:"sample_size"`
}

// PredictionTracker records predictions and reports trailing accuracy, which
// the aggregator surfaces as the model-health KPI.
type PredictionTracker interface {
	LogPrediction(ctx context.Context, code string, pred country.RiskPrediction, modelVersion string) error
	ComputeAccuracy(ctx context.Context, daysBack int) (AccuracyResult, error)
	TrackRecord(ctx context.Context, limit int) ([]TrackedPrediction, error)
}
