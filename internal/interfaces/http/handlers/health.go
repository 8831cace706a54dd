package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	holder     *snapshot.Holder
	classifier intelligence.RiskClassifier
}

func NewHealthHandler(holder *snapshot.Holder, classifier intelligence.RiskClassifier) *HealthHandler {
	return &HealthHandler{holder: holder, classifier: classifier}
}

// Healthz is the liveness probe.  It always answers 200; model and snapshot
// readiness are reported as fields so probes stay cheap and non-flapping.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"modelReady":    h.classifier.Ready(c.Request.Context()),
		"snapshotReady": h.holder.Ready(),
	})
}

// Readyz is the readiness probe: 200 once the first snapshot is published,
// 503 before that.
func (h *HealthHandler) Readyz(c *gin.Context) {
	if !h.holder.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
