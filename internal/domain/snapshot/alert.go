package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// EscalationAlert is derived state: recomputed on every request from current
// scores versus request-prior state, and never persisted.
type EscalationAlert struct {
	ID       string         `json:"id"`
	Type     risk.AlertType `json:"type"`
	Country  string         `json:"country"`
	Code     string         `json:"countryCode"`
	Detail   string         `json:"detail"`
	Time     time.Time      `json:"time"`
	Severity risk.Severity  `json:"severity"`
}

// NewEscalationAlert stamps a fresh alert with a unique ID and the current
// time.
func NewEscalationAlert(t risk.AlertType, name, code, detail string, severity risk.Severity, now time.Time) EscalationAlert {
	return EscalationAlert{
		ID:       uuid.NewString(),
		Type:     t,
		Country:  name,
		Code:     code,
		Detail:   detail,
		Time:     now,
		Severity: severity,
	}
}

// RegionStat is one row of the regional rollup, keyed by the roster's region
// label.
type RegionStat struct {
	Region      string `json:"region"`
	AvgRisk     int    `json:"avgRisk"`
	Anomalies   int    `json:"anomalies"`
	Escalations int    `json:"escalations"`
	Countries   int    `json:"countries"`
}

// SubScores carries the five thematic composite indicators.  The fleet
// aggregate and the per-country variant share this shape but are computed
// with intentionally different formulas.
type SubScores struct {
	ConflictIntensity int `json:"conflictIntensity"`
	SocialUnrest      int `json:"socialUnrest"`
	EconomicStress    int `json:"economicStress"`
	Humanitarian      int `json:"humanitarian"`
	MediaSentiment    int `json:"mediaSentiment"`
}
