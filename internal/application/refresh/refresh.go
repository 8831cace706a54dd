// Package refresh owns the recurring scoring cycle: recompute every
// country's fusion, rebuild the snapshot into fresh structures, publish it
// with one atomic swap, advance the cycle-prior store, append KPI history,
// and fan newly fired alerts out to the alert topic.
//
// The scheduler is single-flow: one goroutine runs cycles back to back off a
// ticker, so a new cycle can never start before the previous publish
// completes.  Only this package writes scores, the snapshot, the cycle prior,
// and the history.
package refresh

import (
	"context"
	"time"

	"github.com/turtacn/sentinel-risk/internal/application/aggregate"
	"github.com/turtacn/sentinel-risk/internal/application/delta"
	"github.com/turtacn/sentinel-risk/internal/application/fusion"
	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
	"github.com/turtacn/sentinel-risk/pkg/errors"
)

// accuracyWindowDays is the trailing window the model-health KPI reports
// over.
const accuracyWindowDays = 90

// SourceScanner is the slice of the freshness scanner the cycle drives.
type SourceScanner interface {
	Rescan()
	ActiveCount() int
}

// AlertSink receives the alerts a cycle fires.  Publishing is best effort.
type AlertSink interface {
	Publish(ctx context.Context, alerts []snapshot.EscalationAlert)
}

// Scheduler drives the refresh state machine.
type Scheduler struct {
	pipeline   intelligence.FeaturePipeline
	fusion     *fusion.Service
	tracker    intelligence.PredictionTracker
	scanner    SourceScanner
	alerts     AlertSink
	holder     *snapshot.Holder
	cyclePrior *delta.CyclePrior
	history    *snapshot.History
	roster     *country.Roster

	limit    int
	interval time.Duration
	metrics  *prometheus.Metrics
	logger   logging.Logger
	now      func() time.Time
}

// NewScheduler wires a scheduler.  limit bounds how many roster countries a
// cycle scores; interval is the cycle cadence.
func NewScheduler(
	pipeline intelligence.FeaturePipeline,
	fusionSvc *fusion.Service,
	tracker intelligence.PredictionTracker,
	scanner SourceScanner,
	alerts AlertSink,
	holder *snapshot.Holder,
	cyclePrior *delta.CyclePrior,
	history *snapshot.History,
	roster *country.Roster,
	limit int,
	interval time.Duration,
	metrics *prometheus.Metrics,
	logger logging.Logger,
) *Scheduler {
	return &Scheduler{
		pipeline:   pipeline,
		fusion:     fusionSvc,
		tracker:    tracker,
		scanner:    scanner,
		alerts:     alerts,
		holder:     holder,
		cyclePrior: cyclePrior,
		history:    history,
		roster:     roster,
		limit:      limit,
		interval:   interval,
		metrics:    metrics,
		logger:     logger.Named("refresh"),
		now:        time.Now,
	}
}

// Run executes one cycle immediately, then one per interval until ctx is
// cancelled.  Startup callers typically run the first cycle synchronously via
// RunCycle before serving traffic and then start Run in a goroutine; Run
// tolerates that by simply producing a fresh snapshot again.
func (s *Scheduler) Run(ctx context.Context) {
	if err := s.RunCycle(ctx); err != nil {
		s.logger.Error("refresh cycle failed", logging.Err(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresh scheduler stopped")
			return
		case <-ticker.C:
			if err := s.RunCycle(ctx); err != nil {
				s.logger.Error("refresh cycle failed", logging.Err(err))
			}
		}
	}
}

// RunCycle executes one full scoring cycle.  A failed cycle leaves the
// previous snapshot live; a single country's failure never aborts the cycle.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	start := s.now()

	codes := s.roster.Limit(s.limit)
	feats, err := s.pipeline.ComputeAllFeatures(ctx, s.limit)
	if err != nil {
		s.metrics.ObserveRefresh("error", s.now().Sub(start), 0, 0, 0)
		return errors.Wrap(err, errors.ErrCodeUpstreamIO, "feature computation failed")
	}

	scores := make(map[string]*country.Score, len(codes))
	order := make([]string, 0, len(codes))
	for _, code := range codes {
		info, _ := s.roster.Lookup(code)
		sc, err := s.fusion.ScoreCountry(ctx, code, info, feats[code], start)
		if err != nil {
			s.logger.Warn("country scoring failed, excluded from this cycle",
				logging.String("country", code), logging.Err(err))
			continue
		}
		scores[code] = sc
		order = append(order, code)
	}

	ordered := make([]*country.Score, 0, len(order))
	for _, code := range order {
		ordered = append(ordered, scores[code])
	}

	gti := aggregate.GlobalThreatIndex(ordered)
	highPlus := aggregate.HighPlusCount(ordered)
	gtiDelta, highPlusDelta := s.cyclePrior.Observe(gti, highPlus)

	snap := aggregate.BuildSnapshot(scores, order, gtiDelta, highPlusDelta, s.modelHealth(ctx), start)

	// Alerts fired by this cycle are diffed against the outgoing snapshot,
	// not against the request-prior store, which belongs to the rich-KPI
	// accessor alone.
	s.alerts.Publish(ctx, aggregate.DeriveAlerts(ordered, s.cycleObservation(), start))

	s.holder.Publish(snap)

	s.scanner.Rescan()
	s.history.Append(snapshot.HistoryEntry{
		ComputedAt:          start,
		GlobalThreatIndex:   gti,
		ActiveAnomalies:     snap.Summary.ActiveAnomalies,
		HighPlusCountries:   highPlus,
		EscalationAlerts24h: snap.Summary.EscalationAlerts24h,
		ModelHealth:         snap.Summary.ModelHealth,
		ActiveSources:       s.scanner.ActiveCount(),
	})

	elapsed := s.now().Sub(start)
	s.metrics.ObserveRefresh("success", elapsed, len(ordered), gti, snap.Summary.ActiveAnomalies)
	s.logger.Info("refresh cycle complete",
		logging.Int("countries", len(ordered)),
		logging.Int("gti", gti),
		logging.Int("anomalies", snap.Summary.ActiveAnomalies),
		logging.Duration("elapsed", elapsed))
	return nil
}

// cycleObservation reconstructs a prior view from the still-live outgoing
// snapshot so tier and spike alerts compare cycle over cycle.
func (s *Scheduler) cycleObservation() delta.RequestObservation {
	prev := s.holder.Current()
	if prev == nil {
		return delta.RequestObservation{First: true}
	}
	prior := make(map[string]delta.CountryState, len(prev.Order))
	for code, sc := range prev.Scores {
		prior[code] = delta.CountryState{Score: sc.RiskScore, Level: sc.RiskLevel}
	}
	return delta.RequestObservation{Countries: prior}
}

// modelHealth reads the tracker's trailing accuracy, falling back to the
// previous snapshot's value when the tracker is unreachable.
func (s *Scheduler) modelHealth(ctx context.Context) float64 {
	acc, err := s.tracker.ComputeAccuracy(ctx, accuracyWindowDays)
	if err != nil {
		s.logger.Warn("accuracy computation failed, carrying previous model health", logging.Err(err))
		if prev := s.holder.Current(); prev != nil {
			return prev.Summary.ModelHealth
		}
		return 0
	}
	return acc.AccuracyPct
}
