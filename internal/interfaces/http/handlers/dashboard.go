package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/sentinel-risk/internal/application/aggregate"
	"github.com/turtacn/sentinel-risk/internal/application/delta"
	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/pkg/errors"
)

// DashboardHandler serves the precomputed dashboard views.  Every endpoint
// reads the published snapshot and responds 503 until the first refresh
// cycle completes.
type DashboardHandler struct {
	holder  *snapshot.Holder
	history *snapshot.History
	kpis    *aggregate.KPIService
}

// NewDashboardHandler wires the dashboard endpoints.
func NewDashboardHandler(holder *snapshot.Holder, history *snapshot.History, kpis *aggregate.KPIService) *DashboardHandler {
	return &DashboardHandler{holder: holder, history: history, kpis: kpis}
}

func (h *DashboardHandler) currentOrAbort(c *gin.Context) (*snapshot.Snapshot, bool) {
	snap := h.holder.Current()
	if snap == nil {
		writeAppError(c, errors.NotReady("no snapshot published yet"))
		return nil, false
	}
	return snap, true
}

func orderedScores(snap *snapshot.Snapshot) []*country.Score {
	out := make([]*country.Score, 0, len(snap.Order))
	for _, code := range snap.Order {
		if sc := snap.Scores[code]; sc != nil {
			out = append(out, sc)
		}
	}
	return out
}

// Summary returns the published snapshot summary.
func (h *DashboardHandler) Summary(c *gin.Context) {
	snap, ok := h.currentOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap.Summary)
}

// Kpis returns the rich KPI report and advances the request-prior store.
func (h *DashboardHandler) Kpis(c *gin.Context) {
	rep, err := h.kpis.Report()
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// History returns the KPI history buffer.  The period label is echoed as
// presentational metadata; actual coverage is buffer capacity times refresh
// cadence.
func (h *DashboardHandler) History(c *gin.Context) {
	if _, ok := h.currentOrAbort(c); !ok {
		return
	}
	period := c.DefaultQuery("period", "7D")
	entries := h.history.Entries()
	c.JSON(http.StatusOK, gin.H{
		"period":  period,
		"count":   len(entries),
		"entries": entries,
	})
}

// Distribution returns the risk-tier distribution of the current snapshot,
// plus the alerts derivable without prior state.  Prior-dependent alerts
// (tier changes, score spikes) belong to the KPI endpoint, whose service is
// the sole writer of the request-prior store.
func (h *DashboardHandler) Distribution(c *gin.Context) {
	snap, ok := h.currentOrAbort(c)
	if !ok {
		return
	}
	ordered := orderedScores(snap)
	alerts := aggregate.DeriveAlerts(ordered, delta.RequestObservation{First: true}, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"distribution":   aggregate.Distribution(ordered),
		"totalCountries": len(ordered),
		"alerts":         alerts,
		"computedAt":     snap.ComputedAt,
	})
}

// SubScores returns the fleet-aggregate composite sub-scores.
func (h *DashboardHandler) SubScores(c *gin.Context) {
	snap, ok := h.currentOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subScores":  aggregate.FleetSubScores(orderedScores(snap)),
		"computedAt": snap.ComputedAt,
	})
}

// Countries returns every scored country, sorted by risk descending.
func (h *DashboardHandler) Countries(c *gin.Context) {
	snap, ok := h.currentOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, aggregate.SortByScore(orderedScores(snap)))
}

// Anomalies returns the anomalous subset, sorted by risk score descending.
func (h *DashboardHandler) Anomalies(c *gin.Context) {
	snap, ok := h.currentOrAbort(c)
	if !ok {
		return
	}
	anomalous := make([]*country.Score, 0)
	for _, sc := range aggregate.SortByScore(orderedScores(snap)) {
		if sc.IsAnomaly {
			anomalous = append(anomalous, sc)
		}
	}
	c.JSON(http.StatusOK, anomalous)
}
