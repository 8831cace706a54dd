// Package http assembles the REST surface: a gin router over the published
// snapshot, the on-demand ML endpoints and the operational probes.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/sentinel-risk/internal/config"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/sentinel-risk/internal/interfaces/http/handlers"
	"github.com/turtacn/sentinel-risk/internal/interfaces/http/middleware"
)

// Handlers bundles the endpoint groups the router mounts.
type Handlers struct {
	Health      *handlers.HealthHandler
	Dashboard   *handlers.DashboardHandler
	Analysis    *handlers.AnalysisHandler
	TrackRecord *handlers.TrackRecordHandler
}

// NewRouter builds the gin engine with middleware and all routes mounted.
func NewRouter(cfg config.ServerConfig, h Handlers, metrics *prometheus.Metrics, log logging.Logger) *gin.Engine {
	gin.SetMode(ginMode(cfg.Mode))

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogging(log, metrics))
	engine.Use(middleware.CORS(cfg.AllowedOrigins))

	engine.GET("/healthz", h.Health.Healthz)
	engine.GET("/readyz", h.Health.Readyz)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := engine.Group("/api")
	{
		dash := api.Group("/dashboard")
		{
			dash.GET("/summary", h.Dashboard.Summary)
			dash.GET("/kpis", h.Dashboard.Kpis)
			dash.GET("/history", h.Dashboard.History)
			dash.GET("/distribution", h.Dashboard.Distribution)
			dash.GET("/subscores", h.Dashboard.SubScores)
		}

		api.GET("/countries", h.Dashboard.Countries)
		api.GET("/anomalies", h.Dashboard.Anomalies)

		api.POST("/analyze", h.Analysis.Analyze)
		api.POST("/risk-score", h.Analysis.RiskScore)
		api.POST("/forecast", h.Analysis.Forecast)

		api.GET("/track-record", h.TrackRecord.TrackRecord)
	}

	return engine
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}
