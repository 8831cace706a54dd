// Package aggregate turns the fused per-country score set into everything the
// dashboard reads: the published snapshot summary, the risk-tier
// distribution, regional rollups, escalation alerts, the two composite
// sub-score variants, and the rich-KPI report.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/turtacn/sentinel-risk/internal/application/delta"
	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// escalationThreshold is the fixed anomaly score above which a country counts
// as an escalation.
const escalationThreshold = 0.5

func clamp100(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

// GlobalThreatIndex is the rounded mean risk score, 0 for an empty set.
func GlobalThreatIndex(scores []*country.Score) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s.RiskScore
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}

// HighPlusCount counts countries at HIGH or CRITICAL.
func HighPlusCount(scores []*country.Score) int {
	n := 0
	for _, s := range scores {
		if s.RiskLevel.IsHighPlus() {
			n++
		}
	}
	return n
}

// EscalationCount counts countries whose anomaly score exceeds the fixed
// threshold.
func EscalationCount(scores []*country.Score) int {
	n := 0
	for _, s := range scores {
		if s.AnomalyScore > escalationThreshold {
			n++
		}
	}
	return n
}

// AnomalyCount counts countries flagged anomalous.
func AnomalyCount(scores []*country.Score) int {
	n := 0
	for _, s := range scores {
		if s.IsAnomaly {
			n++
		}
	}
	return n
}

// SortByScore returns a new slice sorted by risk score descending.  The input
// must be in roster order; the sort is stable so equal scores keep that
// order.
func SortByScore(scores []*country.Score) []*country.Score {
	out := make([]*country.Score, len(scores))
	copy(out, scores)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RiskScore > out[j].RiskScore
	})
	return out
}

// Distribution counts countries per risk tier.  Every tier appears in the
// result, including empty ones.
func Distribution(scores []*country.Score) map[risk.RiskLevel]int {
	dist := make(map[risk.RiskLevel]int, 5)
	for _, l := range risk.Levels() {
		dist[l] = 0
	}
	for _, s := range scores {
		dist[s.RiskLevel]++
	}
	return dist
}

// RoundHealth rounds a model-health percentage to one decimal.
func RoundHealth(pct float64) float64 {
	return math.Round(pct*10) / 10
}

// BuildSnapshot assembles the publishable snapshot from the fused score set.
// order carries the scored codes in roster order; deltas and model health are
// supplied by the caller, which owns the cycle-prior store.
func BuildSnapshot(scores map[string]*country.Score, order []string, gtiDelta, highPlusDelta int, modelHealth float64, now time.Time) *snapshot.Snapshot {
	ordered := make([]*country.Score, 0, len(order))
	for _, code := range order {
		if s := scores[code]; s != nil {
			ordered = append(ordered, s)
		}
	}
	sorted := SortByScore(ordered)

	rows := make([]snapshot.CountryRow, len(sorted))
	for i, s := range sorted {
		rows[i] = snapshot.CountryRow{
			Code:         s.Code,
			Name:         s.Name,
			RiskScore:    s.RiskScore,
			RiskLevel:    s.RiskLevel,
			IsAnomaly:    s.IsAnomaly,
			AnomalyScore: s.AnomalyScore,
		}
	}

	return &snapshot.Snapshot{
		Summary: snapshot.Summary{
			GlobalThreatIndex:      GlobalThreatIndex(ordered),
			GlobalThreatIndexDelta: gtiDelta,
			ActiveAnomalies:        AnomalyCount(ordered),
			HighPlusCountries:      HighPlusCount(ordered),
			HighPlusCountriesDelta: highPlusDelta,
			EscalationAlerts24h:    EscalationCount(ordered),
			ModelHealth:            RoundHealth(modelHealth),
			Countries:              rows,
			ComputedAt:             now,
		},
		Scores:     scores,
		Order:      order,
		ComputedAt: now,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Composite sub-scores
// ─────────────────────────────────────────────────────────────────────────────

// FleetSubScores computes the five fleet-aggregate composite indicators.
// Each category has its own formula; the per-country variant below uses
// different ones on purpose, and the two must not be unified.
func FleetSubScores(scores []*country.Score) snapshot.SubScores {
	if len(scores) == 0 {
		return snapshot.SubScores{}
	}
	n := float64(len(scores))

	var conflict, unrest, econ, humanitarian, media float64
	for _, s := range scores {
		f := s.Features
		conflict += f.ConflictComposite
		unrest += math.Min(100, 1.2*f.ProtestCount+2.0*f.CivilianViolenceCount+15.0*math.Abs(f.Volatility))
		econ += f.EconComposite
		humanitarian += f.HumanitarianScore
		media += math.Min(100, (100*f.NegativeScore+100*f.EscalatoryPct+100*f.NegativityIdx)/3)
	}

	return snapshot.SubScores{
		ConflictIntensity: clamp100(conflict / n),
		SocialUnrest:      clamp100(unrest / n),
		EconomicStress:    clamp100(math.Min(100, math.Max(0, 50-0.4*(econ/n)))),
		Humanitarian:      clamp100(humanitarian / n),
		MediaSentiment:    clamp100(media / n),
	}
}

// CountrySubScores computes the per-country composite indicators consumed by
// the enrichment path.  Never cached: recomputed on every call from the
// current snapshot's features.
func CountrySubScores(f country.Features) snapshot.SubScores {
	return snapshot.SubScores{
		ConflictIntensity: clamp100(f.ConflictComposite),
		SocialUnrest:      clamp100(100 * f.ProtestCount / 50),
		EconomicStress:    clamp100(f.EconComposite),
		Humanitarian:      clamp100(f.HumanitarianScore),
		MediaSentiment:    clamp100(100*f.NegativityIdx + 100*f.EscalatoryPct),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Escalation alerts and regional rollup
// ─────────────────────────────────────────────────────────────────────────────

// scoreSpikeThreshold: a spike fires only when the score rose by strictly
// more than this many points since the request-prior observation.
const scoreSpikeThreshold = 10

// DeriveAlerts recomputes escalation alerts from the current scores versus
// the request-prior observation.  Tier and spike alerts need a prior;
// anomaly alerts come from current state alone.  Alerts are derived state and
// are never persisted.
func DeriveAlerts(scores []*country.Score, obs delta.RequestObservation, now time.Time) []snapshot.EscalationAlert {
	var alerts []snapshot.EscalationAlert
	for _, s := range scores {
		if prior, ok := obs.Countries[s.Code]; ok && !obs.First {
			if s.RiskLevel.Above(prior.Level) {
				alerts = append(alerts, snapshot.NewEscalationAlert(
					risk.AlertTierChange, s.Name, s.Code,
					fmt.Sprintf("risk tier rose from %s to %s", prior.Level, s.RiskLevel),
					risk.SeverityHigh, now))
			}
			if rise := s.RiskScore - prior.Score; rise > scoreSpikeThreshold {
				alerts = append(alerts, snapshot.NewEscalationAlert(
					risk.AlertScoreSpike, s.Name, s.Code,
					fmt.Sprintf("risk score rose %d points (%d to %d)", rise, prior.Score, s.RiskScore),
					risk.SeverityMed, now))
			}
		}
		if s.IsAnomaly {
			severity := s.Severity
			if severity == "" {
				severity = risk.SeverityLow
			}
			detail := fmt.Sprintf("anomaly score %.2f", s.AnomalyScore)
			if s.Anomaly.TopDeviantFeature != "" {
				detail = fmt.Sprintf("anomaly score %.2f, most deviant input: %s", s.AnomalyScore, s.Anomaly.TopDeviantFeature)
			}
			alerts = append(alerts, snapshot.NewEscalationAlert(
				risk.AlertAnomalyDetected, s.Name, s.Code, detail, severity, now))
		}
	}
	return alerts
}

// regionOf resolves the region label for a score via the roster, defaulting
// to "Other" for codes the roster no longer carries.
func regionOf(roster *country.Roster, code string) string {
	if info, ok := roster.Lookup(code); ok && info.Region != "" {
		return info.Region
	}
	return "Other"
}

// RegionalBreakdown groups the score set by roster region.  Escalations count
// the region's countries whose tier rose versus the request-prior state.
// Regions sort by average risk descending.
func RegionalBreakdown(scores []*country.Score, roster *country.Roster, obs delta.RequestObservation) []snapshot.RegionStat {
	type acc struct {
		sum         int
		anomalies   int
		escalations int
		members     int
	}
	byRegion := make(map[string]*acc)
	var order []string

	for _, s := range scores {
		region := regionOf(roster, s.Code)
		a, ok := byRegion[region]
		if !ok {
			a = &acc{}
			byRegion[region] = a
			order = append(order, region)
		}
		a.sum += s.RiskScore
		a.members++
		if s.IsAnomaly {
			a.anomalies++
		}
		if prior, ok := obs.Countries[s.Code]; ok && !obs.First && s.RiskLevel.Above(prior.Level) {
			a.escalations++
		}
	}

	out := make([]snapshot.RegionStat, 0, len(order))
	for _, region := range order {
		a := byRegion[region]
		out = append(out, snapshot.RegionStat{
			Region:      region,
			AvgRisk:     int(math.Round(float64(a.sum) / float64(a.members))),
			Anomalies:   a.anomalies,
			Escalations: a.escalations,
			Countries:   a.members,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgRisk > out[j].AvgRisk })
	return out
}
