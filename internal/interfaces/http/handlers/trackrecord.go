package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/sentinel-risk/internal/intelligence"
)

const (
	trackRecordLimit   = 20
	accuracyWindowDays = 90
)

// TrackRecordHandler exposes the prediction tracker's recent entries and
// trailing accuracy.
type TrackRecordHandler struct {
	tracker intelligence.PredictionTracker
}

func NewTrackRecordHandler(tracker intelligence.PredictionTracker) *TrackRecordHandler {
	return &TrackRecordHandler{tracker: tracker}
}

// TrackRecord returns the most recent logged predictions plus the 90-day
// accuracy report.
func (h *TrackRecordHandler) TrackRecord(c *gin.Context) {
	ctx := c.Request.Context()
	records, err := h.tracker.TrackRecord(ctx, trackRecordLimit)
	if err != nil {
		writeAppError(c, err)
		return
	}
	acc, err := h.tracker.ComputeAccuracy(ctx, accuracyWindowDays)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accuracy": acc,
		"records":  records,
	})
}
