package testutil

import (
	"context"
	"sync"

	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// DefaultLevelFromScore is the score-to-tier boundary function the mock
// classifier uses unless a test overrides it.
func DefaultLevelFromScore(score int) risk.RiskLevel {
	switch {
	case score >= 85:
		return risk.LevelCritical
	case score >= 65:
		return risk.LevelHigh
	case score >= 45:
		return risk.LevelElevated
	case score >= 25:
		return risk.LevelModerate
	default:
		return risk.LevelLow
	}
}

// MockPipeline implements intelligence.FeaturePipeline via function fields.
type MockPipeline struct {
	ComputeFn    func(ctx context.Context, code string) (country.Features, error)
	ComputeAllFn func(ctx context.Context, limit int) (map[string]country.Features, error)
}

func (m *MockPipeline) ComputeFeatures(ctx context.Context, code string) (country.Features, error) {
	if m.ComputeFn == nil {
		return country.Features{}, nil
	}
	return m.ComputeFn(ctx, code)
}

func (m *MockPipeline) ComputeAllFeatures(ctx context.Context, limit int) (map[string]country.Features, error) {
	if m.ComputeAllFn == nil {
		return map[string]country.Features{}, nil
	}
	return m.ComputeAllFn(ctx, limit)
}

// MockClassifier implements intelligence.RiskClassifier via function fields.
type MockClassifier struct {
	PredictFn func(ctx context.Context, features country.Features) (country.RiskPrediction, error)
	LevelFn   func(score int) risk.RiskLevel
	ReadyVal  bool
}

func (m *MockClassifier) Predict(ctx context.Context, features country.Features) (country.RiskPrediction, error) {
	if m.PredictFn == nil {
		return country.NeutralPrediction(), nil
	}
	return m.PredictFn(ctx, features)
}

func (m *MockClassifier) LevelFromScore(score int) risk.RiskLevel {
	if m.LevelFn == nil {
		return DefaultLevelFromScore(score)
	}
	return m.LevelFn(score)
}

func (m *MockClassifier) Ready(context.Context) bool { return m.ReadyVal }

// MockDetector implements intelligence.AnomalyDetector via a function field.
type MockDetector struct {
	DetectFn func(ctx context.Context, code string, input country.AnomalyInput) (country.AnomalyVerdict, error)
}

func (m *MockDetector) Detect(ctx context.Context, code string, input country.AnomalyInput) (country.AnomalyVerdict, error) {
	if m.DetectFn == nil {
		return country.AnomalyVerdict{}, nil
	}
	return m.DetectFn(ctx, code, input)
}

// MockForecaster implements intelligence.Forecaster via a function field.
type MockForecaster struct {
	ForecastFn func(ctx context.Context, sequence [][country.SequenceWidth]float64) (intelligence.ForecastResult, error)
}

func (m *MockForecaster) Forecast(ctx context.Context, sequence [][country.SequenceWidth]float64) (intelligence.ForecastResult, error) {
	if m.ForecastFn == nil {
		return intelligence.ForecastResult{Trend: intelligence.TrendStable}, nil
	}
	return m.ForecastFn(ctx, sequence)
}

// MockSentiment implements intelligence.SentimentAnalyzer via a function
// field.
type MockSentiment struct {
	AnalyzeFn func(ctx context.Context, headlines []string) (intelligence.SentimentResult, error)
}

func (m *MockSentiment) Analyze(ctx context.Context, headlines []string) (intelligence.SentimentResult, error) {
	if m.AnalyzeFn == nil {
		return intelligence.SentimentResult{DominantSentiment: "neutral"}, nil
	}
	return m.AnalyzeFn(ctx, headlines)
}

// MockBriefGenerator implements intelligence.BriefGenerator via a function
// field.
type MockBriefGenerator struct {
	GenerateFn func(ctx context.Context, mlContext string) (*intelligence.Brief, error)

	mu       sync.Mutex
	Contexts []string
}

func (m *MockBriefGenerator) Generate(ctx context.Context, mlContext string) (*intelligence.Brief, error) {
	m.mu.Lock()
	m.Contexts = append(m.Contexts, mlContext)
	m.mu.Unlock()
	if m.GenerateFn == nil {
		return &intelligence.Brief{Summary: "mock brief"}, nil
	}
	return m.GenerateFn(ctx, mlContext)
}

// MockFetcher implements intelligence.HeadlineFetcher via a function field.
type MockFetcher struct {
	FetchFn func(ctx context.Context, countryName string) ([]string, error)
}

func (m *MockFetcher) Fetch(ctx context.Context, countryName string) ([]string, error) {
	if m.FetchFn == nil {
		return nil, nil
	}
	return m.FetchFn(ctx, countryName)
}

// MockTracker implements intelligence.PredictionTracker, recording logged
// predictions in memory and returning canned accuracy.
type MockTracker struct {
	Accuracy intelligence.AccuracyResult
	Err      error

	mu     sync.Mutex
	Logged []intelligence.TrackedPrediction
}

func (m *MockTracker) LogPrediction(_ context.Context, code string, pred country.RiskPrediction, modelVersion string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logged = append(m.Logged, intelligence.TrackedPrediction{
		Code:         code,
		RiskScore:    pred.Score,
		RiskLevel:    pred.Level,
		Confidence:   pred.Confidence,
		ModelVersion: modelVersion,
	})
	return nil
}

func (m *MockTracker) ComputeAccuracy(context.Context, int) (intelligence.AccuracyResult, error) {
	if m.Err != nil {
		return intelligence.AccuracyResult{}, m.Err
	}
	return m.Accuracy, nil
}

func (m *MockTracker) TrackRecord(context.Context, int) ([]intelligence.TrackedPrediction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]intelligence.TrackedPrediction, len(m.Logged))
	copy(out, m.Logged)
	return out, nil
}
