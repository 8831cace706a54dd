// Package country holds the per-country domain model: the monitored roster,
// the typed feature vector, and the fused score entity rebuilt wholesale on
// every refresh cycle.
package country

import (
	"time"

	"github.com/turtacn/sentinel-risk/pkg/errors"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// Info describes one monitored country in the static roster.
type Info struct {
	Name   string `json:"name"`
	ISO3   string `json:"iso3"`
	Region string `json:"region"`
}

// Score is the fused per-country result, one per monitored country, replaced
// wholesale each refresh cycle.
//
// RiskScore is always the post-fusion value: the anomaly adjustment is applied
// before the entity is stored, so no consumer ever sees the pre-fusion score.
type Score struct {
	Code         string         `json:"countryCode"`
	Name         string         `json:"country"`
	RiskScore    int            `json:"riskScore"`
	RiskLevel    risk.RiskLevel `json:"riskLevel"`
	IsAnomaly    bool           `json:"isAnomaly"`
	AnomalyScore float64        `json:"anomalyScore"`
	Severity     risk.Severity  `json:"severity"`
	Features     Features       `json:"features"`
	ComputedAt   time.Time      `json:"computedAt"`
	Prediction   RiskPrediction `json:"riskPrediction"`
	Anomaly      AnomalyVerdict `json:"anomalyDetail"`
}

// RiskPrediction is the classifier collaborator's output for one country.
type RiskPrediction struct {
	Score         int                        `json:"risk_score"`
	Level         risk.RiskLevel             `json:"risk_level"`
	Confidence    float64                    `json:"confidence"`
	Probabilities map[risk.RiskLevel]float64 `json:"probabilities"`
	TopDrivers    []string                   `json:"top_drivers"`
}

// NeutralPrediction is the substitute used when the classifier reports its
// model artifact missing, so the aggregator never aborts a cycle because one
// country cannot be scored.
func NeutralPrediction() RiskPrediction {
	return RiskPrediction{
		Score:         0,
		Level:         risk.LevelLow,
		Confidence:    0.5,
		Probabilities: map[risk.RiskLevel]float64{},
		TopDrivers:    []string{},
	}
}

// AnomalyVerdict is the anomaly collaborator's output for one country.
type AnomalyVerdict struct {
	IsAnomaly    bool          `json:"is_anomaly"`
	AnomalyScore float64       `json:"anomaly_score"`
	Severity     risk.Severity `json:"severity"`

	// TopDeviantFeature names the input with the largest z-score magnitude,
	// used for alert narration.
	TopDeviantFeature string `json:"top_deviant_feature,omitempty"`
}

// Roster is the static registry of monitored countries.  The iteration order
// of Codes is the roster order, which also breaks ties in score-sorted views.
type Roster struct {
	codes []string
	info  map[string]Info
}

// NewRoster builds a roster from ordered code/info pairs.
func NewRoster(codes []string, info map[string]Info) *Roster {
	return &Roster{codes: codes, info: info}
}

// DefaultRoster returns the production watchlist.
func DefaultRoster() *Roster {
	return NewRoster(monitoredOrder, monitoredCountries)
}

// Codes returns the roster order.  Callers must not mutate the result.
func (r *Roster) Codes() []string {
	return r.codes
}

// Limit returns the first n roster codes, or all of them when n <= 0 or
// exceeds the roster size.
func (r *Roster) Limit(n int) []string {
	if n <= 0 || n >= len(r.codes) {
		return r.codes
	}
	return r.codes[:n]
}

// Lookup returns the roster entry for code.
func (r *Roster) Lookup(code string) (Info, bool) {
	info, ok := r.info[code]
	return info, ok
}

// Validate returns a validation error when code is not monitored.  This is
// the single hard client-error path in the platform.
func (r *Roster) Validate(code string) error {
	if _, ok := r.info[code]; !ok {
		return errors.Validation("country code " + code + " not in monitored roster")
	}
	return nil
}

// Size returns the number of monitored countries.
func (r *Roster) Size() int {
	return len(r.codes)
}
