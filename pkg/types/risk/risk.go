// Package risk defines the shared enumerations of the Sentinel risk platform:
// the ordered risk tier, the anomaly severity grade, and the escalation alert
// taxonomy.  These types cross every layer boundary, so they live in pkg/
// rather than internal/.
package risk

// ─────────────────────────────────────────────────────────────────────────────
// RiskLevel — ordered risk tier
// ─────────────────────────────────────────────────────────────────────────────

// RiskLevel is the ordered risk category assigned to a country.
// LOW < MODERATE < ELEVATED < HIGH < CRITICAL.
type RiskLevel string

const (
	LevelLow      RiskLevel = "LOW"
	LevelModerate RiskLevel = "MODERATE"
	LevelElevated RiskLevel = "ELEVATED"
	LevelHigh     RiskLevel = "HIGH"
	LevelCritical RiskLevel = "CRITICAL"
)

// levelRank maps each tier to its ordinal position.  Unknown values rank
// below LOW so malformed input never inflates a tier comparison.
var levelRank = map[RiskLevel]int{
	LevelLow:      1,
	LevelModerate: 2,
	LevelElevated: 3,
	LevelHigh:     4,
	LevelCritical: 5,
}

// Rank returns the ordinal position of the tier (LOW=1 … CRITICAL=5), or 0
// for an unknown value.
func (l RiskLevel) Rank() int {
	return levelRank[l]
}

// Valid reports whether l is one of the five defined tiers.
func (l RiskLevel) Valid() bool {
	return levelRank[l] != 0
}

// Above reports whether l is a strictly higher tier than other.
func (l RiskLevel) Above(other RiskLevel) bool {
	return l.Rank() > other.Rank()
}

// AtLeast reports whether l is at or above the given tier.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return l.Rank() >= other.Rank()
}

// IsHighPlus reports whether l is HIGH or CRITICAL, the threshold used by the
// dashboard's high-plus KPI.
func (l RiskLevel) IsHighPlus() bool {
	return l.AtLeast(LevelHigh)
}

// Levels returns all tiers in ascending order.  The slice is freshly
// allocated on every call so callers may reorder it.
func Levels() []RiskLevel {
	return []RiskLevel{LevelLow, LevelModerate, LevelElevated, LevelHigh, LevelCritical}
}

// ─────────────────────────────────────────────────────────────────────────────
// Severity — anomaly model output grade
// ─────────────────────────────────────────────────────────────────────────────

// Severity is the coarse grade reported by the anomaly model.
type Severity string

const (
	SeverityLow  Severity = "LOW"
	SeverityMed  Severity = "MED"
	SeverityHigh Severity = "HIGH"
)

// ─────────────────────────────────────────────────────────────────────────────
// AlertType — escalation alert taxonomy
// ─────────────────────────────────────────────────────────────────────────────

// AlertType classifies an escalation alert derived from comparing the current
// snapshot to the request-prior state.
type AlertType string

const (
	// AlertTierChange fires when a country's risk tier rose since the prior
	// observation.
	AlertTierChange AlertType = "TIER_CHANGE"

	// AlertScoreSpike fires when a country's risk score rose by more than
	// ten points since the prior observation.
	AlertScoreSpike AlertType = "SCORE_SPIKE"

	// AlertAnomalyDetected fires when the anomaly model flags a country.
	AlertAnomalyDetected AlertType = "ANOMALY_DETECTED"
)
