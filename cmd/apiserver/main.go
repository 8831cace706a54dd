// Sentinel apiserver: runs the snapshot refresh scheduler and serves the
// dashboard REST surface over the published snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/sentinel-risk/internal/application/aggregate"
	"github.com/turtacn/sentinel-risk/internal/application/delta"
	"github.com/turtacn/sentinel-risk/internal/application/enrich"
	"github.com/turtacn/sentinel-risk/internal/application/fusion"
	"github.com/turtacn/sentinel-risk/internal/application/refresh"
	"github.com/turtacn/sentinel-risk/internal/config"
	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/database/redis"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/sources"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/tracker"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
	"github.com/turtacn/sentinel-risk/internal/intelligence/briefgen"
	"github.com/turtacn/sentinel-risk/internal/intelligence/headlines"
	"github.com/turtacn/sentinel-risk/internal/intelligence/serving"
	httpserver "github.com/turtacn/sentinel-risk/internal/interfaces/http"
	"github.com/turtacn/sentinel-risk/internal/interfaces/http/handlers"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (empty: environment only)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log = log.Named("apiserver")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := prometheus.New()
	roster := country.DefaultRoster()
	holder := snapshot.NewHolder()
	history := snapshot.NewHistory(cfg.Refresh.HistorySize)

	// ML collaborators all sit behind one serving endpoint.
	ml := serving.NewClient(cfg.ML, log)

	trk, err := buildTracker(ctx, cfg, log)
	if err != nil {
		return err
	}

	scanner := sources.NewScanner(cfg.Sources, log)
	if err := scanner.Watch(ctx); err != nil {
		log.Warn("source watcher unavailable, freshness updates on cycle rescan only", logging.Err(err))
	}

	alerts := kafka.NewAlertPublisher(cfg.Kafka, log, metrics)
	defer alerts.Close()

	fusionSvc := fusion.NewService(ml, ml, metrics, log)
	scheduler := refresh.NewScheduler(
		ml, fusionSvc, trk, scanner, alerts,
		holder, delta.NewCyclePrior(), history, roster,
		cfg.Refresh.CountryLimit, cfg.Refresh.Interval, metrics, log,
	)

	cache, err := buildBriefCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	enricher := enrich.NewService(
		holder, roster, cache,
		headlines.NewFetcher(cfg.News, metrics, log),
		ml,
		briefgen.NewGenerator(cfg.OpenAI, log, metrics),
		trk, metrics, log,
	)

	kpis := aggregate.NewKPIService(holder, delta.NewRequestPrior(), roster, scanner, log)

	h := httpserver.Handlers{
		Health:      handlers.NewHealthHandler(holder, ml),
		Dashboard:   handlers.NewDashboardHandler(holder, history, kpis),
		Analysis:    handlers.NewAnalysisHandler(enricher, ml, ml, ml, roster, holder, log),
		TrackRecord: handlers.NewTrackRecordHandler(trk),
	}
	router := httpserver.NewRouter(cfg.Server, h, metrics, log)
	server := httpserver.NewServer(cfg.Server, router, log)

	// Pre-compute the first snapshot before accepting traffic so the
	// read endpoints come up warm; a failed first cycle is not fatal, the
	// surface serves 503s until the next one succeeds.
	if err := scheduler.RunCycle(ctx); err != nil {
		log.Error("initial refresh cycle failed", logging.Err(err))
	}
	go scheduler.Run(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	if err := server.Stop(context.Background()); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func buildTracker(ctx context.Context, cfg *config.Config, log logging.Logger) (intelligence.PredictionTracker, error) {
	if cfg.Database.Host == "" {
		log.Info("no database configured, prediction tracker runs in memory")
		return tracker.NewMemoryTracker(), nil
	}
	return tracker.NewPostgresTracker(ctx, cfg.Database.DSN(), log)
}

func buildBriefCache(ctx context.Context, cfg *config.Config, log logging.Logger) (enrich.Cache, error) {
	if cfg.Redis.Addr == "" {
		log.Info("no redis configured, brief cache runs in memory")
		return enrich.NewMemoryCache(cfg.Cache.TTL), nil
	}
	store, err := redis.NewBriefStore(ctx, cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	return enrich.NewRedisCache(store, cfg.Cache.TTL, log), nil
}
