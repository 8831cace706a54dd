package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/sentinel-risk/internal/application/enrich"
	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
)

// AnalysisHandler serves the on-demand ML endpoints: narrative briefs, raw
// risk scoring and sequence forecasts.  Unlike the dashboard views these hit
// the collaborators synchronously and can be slow.
type AnalysisHandler struct {
	enricher   *enrich.Service
	pipeline   intelligence.FeaturePipeline
	classifier intelligence.RiskClassifier
	forecaster intelligence.Forecaster
	roster     *country.Roster
	holder     *snapshot.Holder
	logger     logging.Logger
}

func NewAnalysisHandler(
	enricher *enrich.Service,
	pipeline intelligence.FeaturePipeline,
	classifier intelligence.RiskClassifier,
	forecaster intelligence.Forecaster,
	roster *country.Roster,
	holder *snapshot.Holder,
	log logging.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		enricher:   enricher,
		pipeline:   pipeline,
		classifier: classifier,
		forecaster: forecaster,
		roster:     roster,
		holder:     holder,
		logger:     log.Named("analysis"),
	}
}

// Analyze produces (or replays from cache) the narrative brief for one
// country.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	code, ok := bindCountryRequest(c)
	if !ok {
		return
	}
	analysis, err := h.enricher.Analyze(c.Request.Context(), code)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// RiskScore computes a fresh, pre-fusion classifier prediction from live
// features, bypassing the published snapshot.
func (h *AnalysisHandler) RiskScore(c *gin.Context) {
	code, ok := bindCountryRequest(c)
	if !ok {
		return
	}
	if err := h.roster.Validate(code); err != nil {
		writeAppError(c, err)
		return
	}
	ctx := c.Request.Context()
	feats, err := h.pipeline.ComputeFeatures(ctx, code)
	if err != nil {
		writeAppError(c, err)
		return
	}
	pred, err := h.classifier.Predict(ctx, feats)
	if err != nil {
		writeAppError(c, err)
		return
	}
	info, _ := h.roster.Lookup(code)
	c.JSON(http.StatusOK, gin.H{
		"countryCode": code,
		"country":     info.Name,
		"prediction":  pred,
		"computedAt":  time.Now().UTC(),
	})
}

// Forecast projects one country's risk 30/60/90 days out.  The sequence is
// built from the published snapshot's features when available, falling back
// to a live pipeline computation before the first cycle.
func (h *AnalysisHandler) Forecast(c *gin.Context) {
	code, ok := bindCountryRequest(c)
	if !ok {
		return
	}
	if err := h.roster.Validate(code); err != nil {
		writeAppError(c, err)
		return
	}
	ctx := c.Request.Context()
	feats, found := h.snapshotFeatures(code)
	if !found {
		h.logger.Debug("no snapshot features, computing live", logging.String("country", code))
		var err error
		feats, err = h.pipeline.ComputeFeatures(ctx, code)
		if err != nil {
			writeAppError(c, err)
			return
		}
	}
	res, err := h.forecaster.Forecast(ctx, feats.ForecastSequence())
	if err != nil {
		writeAppError(c, err)
		return
	}
	info, _ := h.roster.Lookup(code)
	c.JSON(http.StatusOK, gin.H{
		"countryCode": code,
		"country":     info.Name,
		"forecast":    res,
	})
}

func (h *AnalysisHandler) snapshotFeatures(code string) (country.Features, bool) {
	snap := h.holder.Current()
	if snap == nil {
		return country.Features{}, false
	}
	sc, ok := snap.Scores[code]
	if !ok {
		return country.Features{}, false
	}
	return sc.Features, true
}
