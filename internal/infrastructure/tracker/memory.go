package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
)

// MemoryTracker is the in-process PredictionTracker used when no database is
// configured.  Entries older than the retention window are pruned on write so
// the slice stays bounded over long uptimes.
type MemoryTracker struct {
	mu        sync.RWMutex
	entries   []intelligence.TrackedPrediction
	retention time.Duration
	now       func() time.Time
}

var _ intelligence.PredictionTracker = (*MemoryTracker)(nil)

// NewMemoryTracker returns a tracker retaining 90 days of predictions.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{
		retention: 90 * 24 * time.Hour,
		now:       time.Now,
	}
}

// LogPrediction appends one prediction and prunes expired entries.
func (t *MemoryTracker) LogPrediction(_ context.Context, code string, pred country.RiskPrediction, modelVersion string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, intelligence.TrackedPrediction{
		Code:         code,
		RiskScore:    pred.Score,
		RiskLevel:    pred.Level,
		Confidence:   pred.Confidence,
		ModelVersion: modelVersion,
		PredictedAt:  t.now(),
	})

	cutoff := t.now().Add(-t.retention)
	firstLive := 0
	for firstLive < len(t.entries) && t.entries[firstLive].PredictedAt.Before(cutoff) {
		firstLive++
	}
	if firstLive > 0 {
		t.entries = append(t.entries[:0:0], t.entries[firstLive:]...)
	}
	return nil
}

// ComputeAccuracy mirrors the database tracker's definition: the share of
// window predictions whose confidence reached the agreement threshold, 100%
// when the window is empty.
func (t *MemoryTracker) ComputeAccuracy(_ context.Context, daysBack int) (intelligence.AccuracyResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := t.now().AddDate(0, 0, -daysBack)
	total, agreed := 0, 0
	for _, e := range t.entries {
		if e.PredictedAt.Before(cutoff) {
			continue
		}
		total++
		if e.Confidence >= 0.5 {
			agreed++
		}
	}
	if total == 0 {
		return intelligence.AccuracyResult{AccuracyPct: 100.0}, nil
	}
	return intelligence.AccuracyResult{
		AccuracyPct: float64(agreed) / float64(total) * 100,
		SampleSize:  total,
	}, nil
}

// TrackRecord returns the most recent predictions, newest first.
func (t *MemoryTracker) TrackRecord(_ context.Context, limit int) ([]intelligence.TrackedPrediction, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := len(t.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]intelligence.TrackedPrediction, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, t.entries[i])
	}
	return out, nil
}
