// Package enrich serves the on-demand country analysis: a narrative brief
// gated by a per-country TTL cache, merged with freshly recomputed sub-scores
// and ML metadata on every call.
package enrich

import (
	"context"
	"time"

	"github.com/turtacn/sentinel-risk/internal/application/aggregate"
	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
	"github.com/turtacn/sentinel-risk/internal/intelligence/briefgen"
	"github.com/turtacn/sentinel-risk/pkg/errors"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// modelVersion tags tracker entries written by the enrichment path.
const modelVersion = "fusion-v1"

// MLMetadata is the machine-readable companion of the narrative brief,
// rebuilt from the current snapshot on every call.
type MLMetadata struct {
	RiskScore    int            `json:"riskScore"`
	RiskLevel    risk.RiskLevel `json:"riskLevel"`
	Confidence   float64        `json:"confidence"`
	IsAnomaly    bool           `json:"isAnomaly"`
	AnomalyScore float64        `json:"anomalyScore"`
	TopDrivers   []string       `json:"topDrivers"`
	ModelVersion string         `json:"modelVersion"`
	ComputedAt   time.Time      `json:"computedAt"`
}

// Analysis is the enrichment response: cached-or-fresh narrative plus always
// fresh sub-scores and metadata.
type Analysis struct {
	Country    string             `json:"country"`
	Code       string             `json:"countryCode"`
	Brief      intelligence.Brief `json:"brief"`
	SubScores  snapshot.SubScores `json:"subScores"`
	MLMetadata MLMetadata         `json:"mlMetadata"`
	Cached     bool               `json:"cached"`
}

// Service runs the enrichment protocol.  It is the only writer of the brief
// cache.
type Service struct {
	holder    *snapshot.Holder
	roster    *country.Roster
	cache     Cache
	fetcher   intelligence.HeadlineFetcher
	sentiment intelligence.SentimentAnalyzer
	generator intelligence.BriefGenerator
	tracker   intelligence.PredictionTracker
	metrics   *prometheus.Metrics
	logger    logging.Logger
	now       func() time.Time
}

// NewService wires the enrichment path.
func NewService(
	holder *snapshot.Holder,
	roster *country.Roster,
	cache Cache,
	fetcher intelligence.HeadlineFetcher,
	sentiment intelligence.SentimentAnalyzer,
	generator intelligence.BriefGenerator,
	tracker intelligence.PredictionTracker,
	metrics *prometheus.Metrics,
	logger logging.Logger,
) *Service {
	return &Service{
		holder:    holder,
		roster:    roster,
		cache:     cache,
		fetcher:   fetcher,
		sentiment: sentiment,
		generator: generator,
		tracker:   tracker,
		metrics:   metrics,
		logger:    logger.Named("enrich"),
		now:       time.Now,
	}
}

// Analyze returns the enriched analysis for one country.
//
// Cache protocol: a valid cache entry short-circuits brief generation, but
// sub-scores and ML metadata are recomputed from the current snapshot on
// every call, so two calls inside one TTL window return identical narrative
// text over possibly different numbers.
func (s *Service) Analyze(ctx context.Context, code string) (*Analysis, error) {
	if err := s.roster.Validate(code); err != nil {
		return nil, err
	}

	snap := s.holder.Current()
	if snap == nil {
		return nil, errors.NotReady("no snapshot published yet")
	}
	// A roster-valid country can be absent when CountryLimit trims the
	// cycle; that is a warming condition, not a missing resource.
	sc := snap.Lookup(code)
	if sc == nil {
		return nil, errors.NotReady("country " + code + " not scored in current snapshot")
	}

	if brief, ok := s.cache.Get(ctx, code); ok {
		s.metrics.BriefCacheHits.Inc()
		return s.respond(sc, brief, true), nil
	}
	s.metrics.BriefCacheMisses.Inc()

	headlines, err := s.fetcher.Fetch(ctx, sc.Name)
	if err != nil {
		s.logger.Warn("headline fetch failed, continuing without headlines",
			logging.String("country", code), logging.Err(err))
		headlines = nil
	}

	sentiment, err := s.sentiment.Analyze(ctx, headlines)
	if err != nil {
		s.logger.Warn("sentiment analysis failed, using neutral result",
			logging.String("country", code), logging.Err(err))
		sentiment = intelligence.SentimentResult{DominantSentiment: "neutral"}
	}

	if err := s.tracker.LogPrediction(ctx, code, sc.Prediction, modelVersion); err != nil {
		s.logger.Warn("failed to log prediction", logging.String("country", code), logging.Err(err))
	}

	brief, err := s.generator.Generate(ctx, briefgen.BuildContext(sc, sentiment, headlines))
	if err != nil {
		s.logger.Warn("brief generation failed, serving fallback",
			logging.String("country", code), logging.Err(err))
		brief = fallbackBrief(sc, s.now())
	}

	s.cache.Set(ctx, code, brief)
	return s.respond(sc, brief, false), nil
}

func (s *Service) respond(sc *country.Score, brief *intelligence.Brief, cached bool) *Analysis {
	return &Analysis{
		Country:   sc.Name,
		Code:      sc.Code,
		Brief:     *brief,
		SubScores: aggregate.CountrySubScores(sc.Features),
		MLMetadata: MLMetadata{
			RiskScore:    sc.RiskScore,
			RiskLevel:    sc.RiskLevel,
			Confidence:   sc.Prediction.Confidence,
			IsAnomaly:    sc.IsAnomaly,
			AnomalyScore: sc.AnomalyScore,
			TopDrivers:   sc.Prediction.TopDrivers,
			ModelVersion: modelVersion,
			ComputedAt:   sc.ComputedAt,
		},
		Cached: cached,
	}
}

// fallbackBrief carries the fused score, tier, and top drivers verbatim with
// empty narrative fields, so a dead generator degrades the response instead
// of failing it.
func fallbackBrief(sc *country.Score, now time.Time) *intelligence.Brief {
	drivers := sc.Prediction.TopDrivers
	if drivers == nil {
		drivers = []string{}
	}
	return &intelligence.Brief{
		RiskScore:   sc.RiskScore,
		RiskLevel:   sc.RiskLevel,
		Summary:     "",
		KeyFactors:  drivers,
		Industries:  []string{},
		WatchList:   []string{},
		CausalChain: []string{},
		LastUpdated: now,
	}
}
