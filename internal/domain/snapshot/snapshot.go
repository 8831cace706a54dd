// Package snapshot defines the dashboard aggregate published once per refresh
// cycle, plus the holder that makes publication atomic for concurrent
// readers, the bounded KPI history, and the derived escalation alert type.
package snapshot

import (
	"sync/atomic"
	"time"

	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// CountryRow is the compact per-country view embedded in the summary,
// sorted by risk score descending.
type CountryRow struct {
	Code         string         `json:"countryCode"`
	Name         string         `json:"country"`
	RiskScore    int            `json:"riskScore"`
	RiskLevel    risk.RiskLevel `json:"riskLevel"`
	IsAnomaly    bool           `json:"isAnomaly"`
	AnomalyScore float64        `json:"anomalyScore"`
}

// Summary is the immutable-once-built dashboard aggregate.  Exactly one live
// Summary exists at a time; it is replaced atomically via Holder so readers
// always see either the fully-old or fully-new snapshot, never a partial one.
type Summary struct {
	GlobalThreatIndex      int          `json:"globalThreatIndex"`
	GlobalThreatIndexDelta int          `json:"globalThreatIndexDelta"`
	ActiveAnomalies        int          `json:"activeAnomalies"`
	HighPlusCountries      int          `json:"highPlusCountries"`
	HighPlusCountriesDelta int          `json:"highPlusCountriesDelta"`
	EscalationAlerts24h    int          `json:"escalationAlerts24h"`
	ModelHealth            float64      `json:"modelHealth"`
	Countries              []CountryRow `json:"countries"`
	ComputedAt             time.Time    `json:"computedAt"`
}

// Snapshot bundles everything one refresh cycle produces: the summary served
// by the dashboard plus the full fused score set the other accessors and the
// enrichment path read from.
type Snapshot struct {
	Summary Summary
	Scores  map[string]*country.Score

	// Order preserves the roster order of the scored countries, used for
	// stable tie-breaking in sorted views.
	Order []string

	ComputedAt time.Time
}

// Lookup returns the fused score for code, or nil when the country was not
// scored in this cycle.
func (s *Snapshot) Lookup(code string) *country.Score {
	return s.Scores[code]
}

// ─────────────────────────────────────────────────────────────────────────────
// Holder — atomic snapshot publication
// ─────────────────────────────────────────────────────────────────────────────

// Holder publishes snapshots with a single atomic pointer swap.  The refresh
// job builds the next Snapshot into fresh structures and calls Publish;
// readers call Current and either get the previous complete snapshot or the
// new complete one.  There is no in-place clear-then-refill anywhere.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder returns an empty Holder.  Current returns nil until the first
// Publish, which accessors surface as a retryable not-ready condition.
func NewHolder() *Holder {
	return &Holder{}
}

// Publish atomically replaces the live snapshot.  Only the refresh job calls
// this, once per cycle, after the snapshot is fully built.
func (h *Holder) Publish(s *Snapshot) {
	h.current.Store(s)
}

// Current returns the live snapshot, or nil when no cycle has completed yet.
// Callers must treat the result as immutable.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Ready reports whether a first snapshot has been published.
func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}
