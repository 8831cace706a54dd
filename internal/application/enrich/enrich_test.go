package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
	"github.com/turtacn/sentinel-risk/internal/testutil"
	"github.com/turtacn/sentinel-risk/pkg/errors"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

func testRoster() *country.Roster {
	return country.NewRoster(
		[]string{"UA", "IQ"},
		map[string]country.Info{
			"UA": {Name: "Ukraine", Region: "Europe"},
			"IQ": {Name: "Iraq", Region: "Middle East"},
		},
	)
}

func testHolder(scores map[string]*country.Score, order []string) *snapshot.Holder {
	h := snapshot.NewHolder()
	h.Publish(&snapshot.Snapshot{Scores: scores, Order: order, ComputedAt: time.Now()})
	return h
}

func uaScore() *country.Score {
	return &country.Score{
		Code:         "UA",
		Name:         "Ukraine",
		RiskScore:    82,
		RiskLevel:    risk.LevelHigh,
		IsAnomaly:    true,
		AnomalyScore: 0.7,
		Features: country.Features{
			ConflictComposite: 80,
			ProtestCount:      25,
			EconComposite:     30,
			HumanitarianScore: 60,
		},
		Prediction: country.RiskPrediction{
			Score:      70,
			Level:      risk.LevelHigh,
			Confidence: 0.91,
			TopDrivers: []string{"conflict_composite", "event_count"},
		},
		ComputedAt: time.Now(),
	}
}

type fixture struct {
	svc       *Service
	cache     *MemoryCache
	generator *testutil.MockBriefGenerator
	tracker   *testutil.MockTracker
	fetcher   *testutil.MockFetcher
}

func newFixture(holder *snapshot.Holder) *fixture {
	f := &fixture{
		cache:     NewMemoryCache(15 * time.Minute),
		generator: &testutil.MockBriefGenerator{},
		tracker:   &testutil.MockTracker{},
		fetcher:   &testutil.MockFetcher{},
	}
	f.svc = NewService(
		holder, testRoster(), f.cache,
		f.fetcher, &testutil.MockSentiment{}, f.generator, f.tracker,
		prometheus.New(), logging.NewNopLogger(),
	)
	return f
}

func TestAnalyze_UnknownCodeIsValidationError(t *testing.T) {
	t.Parallel()

	f := newFixture(testHolder(map[string]*country.Score{"UA": uaScore()}, []string{"UA"}))
	_, err := f.svc.Analyze(context.Background(), "XX")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestAnalyze_NotReadyBeforeFirstSnapshot(t *testing.T) {
	t.Parallel()

	f := newFixture(snapshot.NewHolder())
	_, err := f.svc.Analyze(context.Background(), "UA")
	require.Error(t, err)
	assert.True(t, errors.IsNotReady(err))
}

func TestAnalyze_KnownButUnscoredIsNotReady(t *testing.T) {
	t.Parallel()

	// A country trimmed out of the cycle by CountryLimit is a warming
	// condition, not a missing resource.
	f := newFixture(testHolder(map[string]*country.Score{"UA": uaScore()}, []string{"UA"}))
	_, err := f.svc.Analyze(context.Background(), "IQ")
	require.Error(t, err)
	assert.True(t, errors.IsNotReady(err))
}

func TestAnalyze_MissGeneratesAndCaches(t *testing.T) {
	t.Parallel()

	f := newFixture(testHolder(map[string]*country.Score{"UA": uaScore()}, []string{"UA"}))
	f.fetcher.FetchFn = func(context.Context, string) ([]string, error) {
		return []string{"Shelling intensifies", "Talks stall"}, nil
	}
	f.generator.GenerateFn = func(_ context.Context, mlContext string) (*intelligence.Brief, error) {
		return &intelligence.Brief{RiskScore: 82, RiskLevel: risk.LevelHigh, Summary: "generated"}, nil
	}

	got, err := f.svc.Analyze(context.Background(), "UA")
	require.NoError(t, err)

	assert.False(t, got.Cached)
	assert.Equal(t, "generated", got.Brief.Summary)
	assert.Equal(t, 82, got.MLMetadata.RiskScore)
	assert.Equal(t, risk.LevelHigh, got.MLMetadata.RiskLevel)
	assert.Equal(t, 0.91, got.MLMetadata.Confidence)
	assert.Equal(t, []string{"conflict_composite", "event_count"}, got.MLMetadata.TopDrivers)

	// Per-country sub-scores came from the features.
	assert.Equal(t, 80, got.SubScores.ConflictIntensity)
	assert.Equal(t, 50, got.SubScores.SocialUnrest) // 100*25/50

	// The prediction was logged and the generator saw the headlines.
	require.Len(t, f.tracker.Logged, 1)
	assert.Equal(t, "UA", f.tracker.Logged[0].Code)
	require.Len(t, f.generator.Contexts, 1)
	assert.Contains(t, f.generator.Contexts[0], "Shelling intensifies")

	// The narrative is now cached.
	cached, ok := f.cache.Get(context.Background(), "UA")
	require.True(t, ok)
	assert.Equal(t, "generated", cached.Summary)
}

func TestAnalyze_HitSkipsGenerationButRecomputesSubScores(t *testing.T) {
	t.Parallel()

	scores := map[string]*country.Score{"UA": uaScore()}
	holder := testHolder(scores, []string{"UA"})
	f := newFixture(holder)

	first, err := f.svc.Analyze(context.Background(), "UA")
	require.NoError(t, err)
	require.Len(t, f.generator.Contexts, 1)

	// A new cycle changes the features underneath the cached narrative.
	fresh := uaScore()
	fresh.Features.ProtestCount = 50
	holder.Publish(&snapshot.Snapshot{
		Scores: map[string]*country.Score{"UA": fresh},
		Order:  []string{"UA"},
	})

	second, err := f.svc.Analyze(context.Background(), "UA")
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.Brief.Summary, second.Brief.Summary)
	assert.Len(t, f.generator.Contexts, 1, "generator must not run on a hit")
	assert.Len(t, f.tracker.Logged, 1, "tracker only logs on a miss")

	// Sub-scores track the fresh features: 100*50/50 = 100.
	assert.Equal(t, 100, second.SubScores.SocialUnrest)
}

func TestAnalyze_ExpiredEntryRegenerates(t *testing.T) {
	t.Parallel()

	f := newFixture(testHolder(map[string]*country.Score{"UA": uaScore()}, []string{"UA"}))

	clock := time.Now()
	f.cache.now = func() time.Time { return clock }

	_, err := f.svc.Analyze(context.Background(), "UA")
	require.NoError(t, err)

	clock = clock.Add(16 * time.Minute)
	_, err = f.svc.Analyze(context.Background(), "UA")
	require.NoError(t, err)
	assert.Len(t, f.generator.Contexts, 2)
}

func TestAnalyze_FallbackBriefOnGeneratorFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(testHolder(map[string]*country.Score{"UA": uaScore()}, []string{"UA"}))
	f.generator.GenerateFn = func(context.Context, string) (*intelligence.Brief, error) {
		return nil, errors.CollaboratorUnavailable("llm not configured")
	}

	got, err := f.svc.Analyze(context.Background(), "UA")
	require.NoError(t, err)

	assert.Equal(t, 82, got.Brief.RiskScore)
	assert.Equal(t, risk.LevelHigh, got.Brief.RiskLevel)
	assert.Equal(t, []string{"conflict_composite", "event_count"}, got.Brief.KeyFactors)
	assert.Empty(t, got.Brief.Summary)
	assert.Empty(t, got.Brief.Industries)

	// Even the fallback is cached so the dead generator is not hammered.
	cached, ok := f.cache.Get(context.Background(), "UA")
	require.True(t, ok)
	assert.Equal(t, 82, cached.RiskScore)
}

func TestAnalyze_HeadlineFailureDegradesToEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(testHolder(map[string]*country.Score{"UA": uaScore()}, []string{"UA"}))
	f.fetcher.FetchFn = func(context.Context, string) ([]string, error) {
		return nil, errors.UpstreamIO("newsapi timeout")
	}

	got, err := f.svc.Analyze(context.Background(), "UA")
	require.NoError(t, err)
	assert.NotNil(t, got)
	require.Len(t, f.generator.Contexts, 1)
}

func TestMemoryCache_LastWriteWins(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache(time.Minute)
	ctx := context.Background()
	c.Set(ctx, "UA", &intelligence.Brief{Summary: "first"})
	c.Set(ctx, "UA", &intelligence.Brief{Summary: "second"})

	got, ok := c.Get(ctx, "UA")
	require.True(t, ok)
	assert.Equal(t, "second", got.Summary)
}
