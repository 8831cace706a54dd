package aggregate

import (
	"time"

	"github.com/turtacn/sentinel-risk/internal/application/delta"
	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/sources"
	"github.com/turtacn/sentinel-risk/pkg/errors"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// topContributorCount bounds how many country names the threat-index KPI
// names as drivers.
const topContributorCount = 3

// ThreatIndexKpi is the GTI tile of the rich-KPI report.
type ThreatIndexKpi struct {
	Score           int      `json:"score"`
	Delta24h        int      `json:"delta24h"`
	Trend           string   `json:"trend"`
	TopContributors []string `json:"topContributors"`
}

// AnomaliesKpi is the anomaly tile.
type AnomaliesKpi struct {
	Total      int                   `json:"total"`
	BySeverity map[risk.Severity]int `json:"bySeverity"`
	Countries  []string              `json:"countries"`
}

// DistributionKpi is the tier-distribution tile.  RecentChanges counts
// countries whose tier moved in either direction since the prior request.
type DistributionKpi struct {
	Distribution   map[risk.RiskLevel]int `json:"distribution"`
	TotalCountries int                    `json:"totalCountries"`
	RecentChanges  int                    `json:"recentChanges"`
}

// AlertsKpi is the escalation-alert tile.
type AlertsKpi struct {
	Count  int                        `json:"count"`
	Alerts []snapshot.EscalationAlert `json:"alerts"`
}

// SourcesKpi is the data-source freshness tile.
type SourcesKpi struct {
	Active  int              `json:"active"`
	Total   int              `json:"total"`
	Sources []sources.Status `json:"sources"`
}

// Report is the rich-KPI response.  Its deltas measure change since the
// previous call to the rich-KPI accessor, not since the previous refresh
// cycle; the summary's deltas cover the latter and the two are not
// comparable.
type Report struct {
	GlobalThreatIndex ThreatIndexKpi        `json:"globalThreatIndex"`
	ActiveAnomalies   AnomaliesKpi          `json:"activeAnomalies"`
	RiskDistribution  DistributionKpi       `json:"riskDistribution"`
	RegionalBreakdown []snapshot.RegionStat `json:"regionalBreakdown"`
	EscalationAlerts  AlertsKpi             `json:"escalationAlerts"`
	SourcesActive     SourcesKpi            `json:"sourcesActive"`
	ComputedAt        time.Time             `json:"computedAt"`
}

// SourceStatusProvider is the slice of the freshness scanner the KPI service
// reads.
type SourceStatusProvider interface {
	ActiveCount() int
	Total() int
	Statuses() []sources.Status
}

// KPIService builds the rich-KPI report.  It is the only writer of the
// request-prior store.
type KPIService struct {
	holder  *snapshot.Holder
	prior   *delta.RequestPrior
	roster  *country.Roster
	sources SourceStatusProvider
	logger  logging.Logger
	now     func() time.Time
}

// NewKPIService wires the report builder.
func NewKPIService(holder *snapshot.Holder, prior *delta.RequestPrior, roster *country.Roster, src SourceStatusProvider, logger logging.Logger) *KPIService {
	return &KPIService{
		holder:  holder,
		prior:   prior,
		roster:  roster,
		sources: src,
		logger:  logger.Named("kpis"),
		now:     time.Now,
	}
}

// Report builds the rich-KPI report from the current snapshot and advances
// the request-prior store.
func (s *KPIService) Report() (*Report, error) {
	snap := s.holder.Current()
	if snap == nil {
		return nil, errors.NotReady("no snapshot published yet")
	}

	ordered := make([]*country.Score, 0, len(snap.Order))
	current := make(map[string]delta.CountryState, len(snap.Order))
	for _, code := range snap.Order {
		sc := snap.Scores[code]
		if sc == nil {
			continue
		}
		ordered = append(ordered, sc)
		current[code] = delta.CountryState{Score: sc.RiskScore, Level: sc.RiskLevel}
	}

	gti := snap.Summary.GlobalThreatIndex
	obs := s.prior.Observe(gti, current)
	now := s.now()
	alerts := DeriveAlerts(ordered, obs, now)

	return &Report{
		GlobalThreatIndex: s.threatIndexKpi(ordered, gti, obs),
		ActiveAnomalies:   anomaliesKpi(ordered),
		RiskDistribution:  distributionKpi(ordered, obs),
		RegionalBreakdown: RegionalBreakdown(ordered, s.roster, obs),
		EscalationAlerts:  AlertsKpi{Count: len(alerts), Alerts: alerts},
		SourcesActive: SourcesKpi{
			Active:  s.sources.ActiveCount(),
			Total:   s.sources.Total(),
			Sources: s.sources.Statuses(),
		},
		ComputedAt: now,
	}, nil
}

func (s *KPIService) threatIndexKpi(ordered []*country.Score, gti int, obs delta.RequestObservation) ThreatIndexKpi {
	sorted := SortByScore(ordered)
	contributors := make([]string, 0, topContributorCount)
	for _, sc := range sorted {
		if len(contributors) == topContributorCount {
			break
		}
		contributors = append(contributors, sc.Name)
	}

	trend := "stable"
	switch {
	case obs.GTIDelta > 0:
		trend = "up"
	case obs.GTIDelta < 0:
		trend = "down"
	}

	return ThreatIndexKpi{
		Score:           gti,
		Delta24h:        obs.GTIDelta,
		Trend:           trend,
		TopContributors: contributors,
	}
}

func anomaliesKpi(ordered []*country.Score) AnomaliesKpi {
	kpi := AnomaliesKpi{
		BySeverity: map[risk.Severity]int{
			risk.SeverityHigh: 0,
			risk.SeverityMed:  0,
			risk.SeverityLow:  0,
		},
		Countries: []string{},
	}
	for _, sc := range ordered {
		if !sc.IsAnomaly {
			continue
		}
		kpi.Total++
		kpi.Countries = append(kpi.Countries, sc.Name)
		severity := sc.Severity
		if severity == "" {
			severity = risk.SeverityLow
		}
		kpi.BySeverity[severity]++
	}
	return kpi
}

func distributionKpi(ordered []*country.Score, obs delta.RequestObservation) DistributionKpi {
	changes := 0
	if !obs.First {
		for _, sc := range ordered {
			if prior, ok := obs.Countries[sc.Code]; ok && prior.Level != sc.RiskLevel {
				changes++
			}
		}
	}
	return DistributionKpi{
		Distribution:   Distribution(ordered),
		TotalCountries: len(ordered),
		RecentChanges:  changes,
	}
}
