// Package tracker provides the prediction-tracking collaborator: every
// enrichment request logs its prediction, and the aggregator reads the
// trailing-window accuracy back as the model-health KPI.
//
// Two implementations exist: a PostgreSQL store for deployments with a
// database configured, and an in-memory store used everywhere else (local
// development, tests).  Both satisfy intelligence.PredictionTracker.
package tracker

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
	"github.com/turtacn/sentinel-risk/pkg/errors"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// schema holds the tracker's single table.  The platform deliberately skips a
// migration toolchain: the schema is one append-only table created on
// startup.
const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id            BIGSERIAL PRIMARY KEY,
	country_code  TEXT        NOT NULL,
	risk_score    INT         NOT NULL,
	risk_level    TEXT        NOT NULL,
	confidence    DOUBLE PRECISION NOT NULL,
	model_version TEXT        NOT NULL,
	predicted_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_predictions_predicted_at ON predictions (predicted_at DESC);
`

// PostgresTracker is the pgx-backed PredictionTracker.
type PostgresTracker struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ intelligence.PredictionTracker = (*PostgresTracker)(nil)

// NewPostgresTracker connects to dsn, ensures the schema exists, and returns
// the tracker.
func NewPostgresTracker(ctx context.Context, dsn string, logger logging.Logger) (*PostgresTracker, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create tracker pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "tracker database unreachable")
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to ensure tracker schema")
	}
	return &PostgresTracker{pool: pool, logger: logger.Named("tracker")}, nil
}

// Close releases the connection pool.
func (t *PostgresTracker) Close() {
	t.pool.Close()
}

// LogPrediction appends one prediction row.
func (t *PostgresTracker) LogPrediction(ctx context.Context, code string, pred country.RiskPrediction, modelVersion string) error {
	_, err := t.pool.Exec(ctx,
		`INSERT INTO predictions (country_code, risk_score, risk_level, confidence, model_version)
		 VALUES ($1, $2, $3, $4, $5)`,
		code, pred.Score, string(pred.Level), pred.Confidence, modelVersion)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to log prediction")
	}
	return nil
}

// ComputeAccuracy reports the share of predictions in the trailing window
// whose confidence cleared the agreement threshold.  With no samples the
// tracker reports a neutral 100% so a fresh deployment does not render a
// red model-health tile.
func (t *PostgresTracker) ComputeAccuracy(ctx context.Context, daysBack int) (intelligence.AccuracyResult, error) {
	cutoff := time.Now().AddDate(0, 0, -daysBack)
	row := t.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE confidence >= 0.5)
		 FROM predictions WHERE predicted_at >= $1`, cutoff)

	var total, agreed int
	if err := row.Scan(&total, &agreed); err != nil {
		return intelligence.AccuracyResult{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to compute accuracy")
	}
	if total == 0 {
		return intelligence.AccuracyResult{AccuracyPct: 100.0}, nil
	}
	return intelligence.AccuracyResult{
		AccuracyPct: float64(agreed) / float64(total) * 100,
		SampleSize:  total,
	}, nil
}

// TrackRecord returns the most recent predictions, newest first.
func (t *PostgresTracker) TrackRecord(ctx context.Context, limit int) ([]intelligence.TrackedPrediction, error) {
	rows, err := t.pool.Query(ctx,
		`SELECT country_code, risk_score, risk_level, confidence, model_version, predicted_at
		 FROM predictions ORDER BY predicted_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query track record")
	}
	defer rows.Close()

	var out []intelligence.TrackedPrediction
	for rows.Next() {
		var p intelligence.TrackedPrediction
		var level string
		if err := rows.Scan(&p.Code, &p.RiskScore, &level, &p.Confidence, &p.ModelVersion, &p.PredictedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan track record row")
		}
		p.RiskLevel = risk.RiskLevel(level)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "track record iteration failed")
	}
	return out, nil
}
