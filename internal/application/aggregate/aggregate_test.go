package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/sentinel-risk/internal/application/delta"
	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

func score(code, name string, riskScore int, level risk.RiskLevel) *country.Score {
	return &country.Score{Code: code, Name: name, RiskScore: riskScore, RiskLevel: level}
}

func TestGlobalThreatIndex(t *testing.T) {
	t.Parallel()

	scores := []*country.Score{
		score("A", "A", 10, risk.LevelLow),
		score("B", "B", 20, risk.LevelLow),
		score("C", "C", 30, risk.LevelModerate),
	}
	assert.Equal(t, 20, GlobalThreatIndex(scores))
	assert.Equal(t, 0, GlobalThreatIndex(nil))

	// round, not truncate: mean 21.5 rounds to 22.
	scores = append(scores, score("D", "D", 26, risk.LevelModerate))
	assert.Equal(t, 22, GlobalThreatIndex(scores))
}

func TestSortByScore_StableOnTies(t *testing.T) {
	t.Parallel()

	in := []*country.Score{
		score("A", "A", 50, risk.LevelElevated),
		score("B", "B", 70, risk.LevelHigh),
		score("C", "C", 50, risk.LevelElevated),
	}
	out := SortByScore(in)
	require.Len(t, out, 3)
	assert.Equal(t, "B", out[0].Code)
	// A and C tie at 50 and keep roster order.
	assert.Equal(t, "A", out[1].Code)
	assert.Equal(t, "C", out[2].Code)
	// Input untouched.
	assert.Equal(t, "A", in[0].Code)
}

func TestEscalationCount_StrictThreshold(t *testing.T) {
	t.Parallel()

	scores := []*country.Score{
		{Code: "A", AnomalyScore: 0.5},
		{Code: "B", AnomalyScore: 0.51},
		{Code: "C", AnomalyScore: 0.9},
	}
	assert.Equal(t, 2, EscalationCount(scores))
}

func TestDistribution_IncludesEmptyTiers(t *testing.T) {
	t.Parallel()

	dist := Distribution([]*country.Score{
		score("A", "A", 90, risk.LevelCritical),
		score("B", "B", 88, risk.LevelCritical),
	})
	assert.Equal(t, 2, dist[risk.LevelCritical])
	assert.Equal(t, 0, dist[risk.LevelLow])
	assert.Len(t, dist, 5)
}

func TestRoundHealth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 87.3, RoundHealth(87.333))
	assert.Equal(t, 100.0, RoundHealth(100))
}

func TestBuildSnapshot(t *testing.T) {
	t.Parallel()

	now := time.Now()
	scores := map[string]*country.Score{
		"UA": score("UA", "Ukraine", 80, risk.LevelHigh),
		"IQ": score("IQ", "Iraq", 40, risk.LevelModerate),
	}
	scores["UA"].IsAnomaly = true
	scores["UA"].AnomalyScore = 0.7

	snap := BuildSnapshot(scores, []string{"UA", "IQ"}, 5, 1, 87.345, now)

	assert.Equal(t, 60, snap.Summary.GlobalThreatIndex)
	assert.Equal(t, 5, snap.Summary.GlobalThreatIndexDelta)
	assert.Equal(t, 1, snap.Summary.ActiveAnomalies)
	assert.Equal(t, 1, snap.Summary.HighPlusCountries)
	assert.Equal(t, 1, snap.Summary.HighPlusCountriesDelta)
	assert.Equal(t, 1, snap.Summary.EscalationAlerts24h)
	assert.Equal(t, 87.3, snap.Summary.ModelHealth)
	require.Len(t, snap.Summary.Countries, 2)
	assert.Equal(t, "UA", snap.Summary.Countries[0].Code)
	assert.Equal(t, now, snap.ComputedAt)
}

func TestBuildSnapshotIdempotentOnUnchangedScores(t *testing.T) {
	t.Parallel()

	scores := map[string]*country.Score{
		"UA": score("UA", "Ukraine", 80, risk.LevelHigh),
		"IQ": score("IQ", "Iraq", 40, risk.LevelModerate),
	}
	scores["UA"].IsAnomaly = true
	scores["UA"].AnomalyScore = 0.7
	order := []string{"UA", "IQ"}

	first := BuildSnapshot(scores, order, 5, 1, 87.345, time.Now())
	second := BuildSnapshot(scores, order, 5, 1, 87.345, time.Now().Add(time.Minute))

	// Everything except the timestamps must match.
	second.ComputedAt = first.ComputedAt
	second.Summary.ComputedAt = first.Summary.ComputedAt
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Order, second.Order)
	assert.Equal(t, first.Scores, second.Scores)
}

func TestFleetSubScores(t *testing.T) {
	t.Parallel()

	scores := []*country.Score{
		{Code: "A", Features: country.Features{
			ConflictComposite:     60,
			ProtestCount:          30,
			CivilianViolenceCount: 10,
			Volatility:            -1,
			EconComposite:         50,
			HumanitarianScore:     40,
			NegativeScore:         0.6,
			EscalatoryPct:         0.3,
			NegativityIdx:         0.3,
		}},
		{Code: "B", Features: country.Features{
			ConflictComposite: 20,
			EconComposite:     150,
			HumanitarianScore: 20,
		}},
	}

	got := FleetSubScores(scores)

	// conflict: mean(60, 20) = 40
	assert.Equal(t, 40, got.ConflictIntensity)
	// unrest: A = min(100, 36+20+15) = 71, B = 0, mean = 35.5 → 36
	assert.Equal(t, 36, got.SocialUnrest)
	// econ: mean composite 100; 50 - 0.4*100 = 10
	assert.Equal(t, 10, got.EconomicStress)
	// humanitarian: mean(40, 20) = 30
	assert.Equal(t, 30, got.Humanitarian)
	// media: A = min(100, (60+30+30)/3) = 40, B = 0, mean = 20
	assert.Equal(t, 20, got.MediaSentiment)

	assert.Equal(t, snapshot.SubScores{}, FleetSubScores(nil))
}

func TestCountrySubScores_DifferentFormulasFromFleet(t *testing.T) {
	t.Parallel()

	f := country.Features{
		ConflictComposite: 60,
		ProtestCount:      30,
		EconComposite:     70,
		HumanitarianScore: 45,
		NegativityIdx:     0.4,
		EscalatoryPct:     0.3,
	}
	got := CountrySubScores(f)

	assert.Equal(t, 60, got.ConflictIntensity)
	// 100 * 30 / 50 = 60
	assert.Equal(t, 60, got.SocialUnrest)
	// per-country econ is the composite directly, not the inverted fleet scale
	assert.Equal(t, 70, got.EconomicStress)
	assert.Equal(t, 45, got.Humanitarian)
	// 40 + 30 = 70
	assert.Equal(t, 70, got.MediaSentiment)
}

func TestDeriveAlerts_SpikeBoundary(t *testing.T) {
	t.Parallel()

	now := time.Now()
	obs := delta.RequestObservation{
		Countries: map[string]delta.CountryState{
			"A": {Score: 50, Level: risk.LevelElevated},
			"B": {Score: 50, Level: risk.LevelElevated},
		},
	}
	scores := []*country.Score{
		score("A", "A", 60, risk.LevelElevated), // +10 exactly: no spike
		score("B", "B", 61, risk.LevelElevated), // +11: spike
	}

	alerts := DeriveAlerts(scores, obs, now)
	require.Len(t, alerts, 1)
	assert.Equal(t, risk.AlertScoreSpike, alerts[0].Type)
	assert.Equal(t, "B", alerts[0].Code)
}

func TestDeriveAlerts_TierChangeAndAnomaly(t *testing.T) {
	t.Parallel()

	now := time.Now()
	obs := delta.RequestObservation{
		Countries: map[string]delta.CountryState{
			"UA": {Score: 60, Level: risk.LevelElevated},
		},
	}
	ua := score("UA", "Ukraine", 68, risk.LevelHigh)
	ua.IsAnomaly = true
	ua.AnomalyScore = 0.72
	ua.Severity = risk.SeverityHigh
	ua.Anomaly = country.AnomalyVerdict{IsAnomaly: true, AnomalyScore: 0.72, TopDeviantFeature: "event_count"}

	alerts := DeriveAlerts([]*country.Score{ua}, obs, now)
	require.Len(t, alerts, 2)
	assert.Equal(t, risk.AlertTierChange, alerts[0].Type)
	assert.Contains(t, alerts[0].Detail, "ELEVATED")
	assert.Contains(t, alerts[0].Detail, "HIGH")
	assert.Equal(t, risk.AlertAnomalyDetected, alerts[1].Type)
	assert.Contains(t, alerts[1].Detail, "event_count")

	// Every alert gets a unique ID.
	assert.NotEqual(t, alerts[0].ID, alerts[1].ID)
}

func TestDeriveAlerts_FirstObservationOnlyAnomalies(t *testing.T) {
	t.Parallel()

	ua := score("UA", "Ukraine", 95, risk.LevelCritical)
	ua.IsAnomaly = true
	alerts := DeriveAlerts([]*country.Score{ua}, delta.RequestObservation{First: true}, time.Now())
	require.Len(t, alerts, 1)
	assert.Equal(t, risk.AlertAnomalyDetected, alerts[0].Type)
}

func TestRegionalBreakdown(t *testing.T) {
	t.Parallel()

	roster := country.NewRoster(
		[]string{"UA", "RS", "IQ", "TW"},
		map[string]country.Info{
			"UA": {Name: "Ukraine", Region: "Europe"},
			"RS": {Name: "Serbia", Region: "Europe"},
			"IQ": {Name: "Iraq", Region: "Middle East"},
			"TW": {Name: "Taiwan", Region: "Asia"},
		},
	)
	ua := score("UA", "Ukraine", 90, risk.LevelCritical)
	ua.IsAnomaly = true
	scores := []*country.Score{
		ua,
		score("RS", "Serbia", 30, risk.LevelModerate),
		score("IQ", "Iraq", 70, risk.LevelHigh),
		score("TW", "Taiwan", 55, risk.LevelElevated),
	}
	obs := delta.RequestObservation{
		Countries: map[string]delta.CountryState{
			"UA": {Score: 80, Level: risk.LevelHigh}, // tier rose
			"RS": {Score: 30, Level: risk.LevelModerate},
			"IQ": {Score: 70, Level: risk.LevelHigh},
			"TW": {Score: 55, Level: risk.LevelElevated},
		},
	}

	regions := RegionalBreakdown(scores, roster, obs)
	require.Len(t, regions, 3)

	// Sorted by average risk descending: Middle East 70, Europe 60, Asia 55.
	assert.Equal(t, "Middle East", regions[0].Region)
	assert.Equal(t, 70, regions[0].AvgRisk)
	assert.Equal(t, 1, regions[0].Countries)

	assert.Equal(t, "Europe", regions[1].Region)
	assert.Equal(t, 60, regions[1].AvgRisk)
	assert.Equal(t, 2, regions[1].Countries)
	assert.Equal(t, 1, regions[1].Anomalies)
	assert.Equal(t, 1, regions[1].Escalations)

	assert.Equal(t, "Asia", regions[2].Region)
}
