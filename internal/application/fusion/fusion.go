// Package fusion combines the risk classifier's prediction with the anomaly
// model's verdict into the single fused score the rest of the platform
// consumes.  Fusion is the only place the two model outputs meet; downstream
// code never sees a pre-fusion score.
package fusion

import (
	"context"
	"time"

	"github.com/turtacn/sentinel-risk/internal/domain/country"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
	"github.com/turtacn/sentinel-risk/pkg/errors"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// anomalyBoostWeight scales the anomaly score (0..1) into score points.  An
// anomaly can lift a country at most 15 points before the 100 cap.
const anomalyBoostWeight = 15

// Service fuses classifier and anomaly outputs into country.Score entities.
type Service struct {
	classifier intelligence.RiskClassifier
	detector   intelligence.AnomalyDetector
	metrics    *prometheus.Metrics
	logger     logging.Logger
}

// NewService wires the two model collaborators.
func NewService(classifier intelligence.RiskClassifier, detector intelligence.AnomalyDetector, metrics *prometheus.Metrics, logger logging.Logger) *Service {
	return &Service{
		classifier: classifier,
		detector:   detector,
		metrics:    metrics,
		logger:     logger.Named("fusion"),
	}
}

// ScoreCountry produces the fused score for one country.
//
// Degradation rules: a missing classifier yields the neutral prediction
// (score 0, LOW, confidence 0.5); a failing anomaly detector yields a clean
// verdict.  Any other classifier error propagates.
func (s *Service) ScoreCountry(ctx context.Context, code string, info country.Info, feats country.Features, now time.Time) (*country.Score, error) {
	pred, err := s.classifier.Predict(ctx, feats)
	if err != nil {
		if !errors.IsCollaboratorUnavailable(err) {
			return nil, err
		}
		s.logger.Warn("classifier unavailable, using neutral prediction",
			logging.String("country", code))
		s.metrics.DegradedCountries.Inc()
		pred = country.NeutralPrediction()
	}

	verdict, err := s.detector.Detect(ctx, code, feats.AnomalyInputs())
	if err != nil {
		s.logger.Warn("anomaly detection failed, treating as clean",
			logging.String("country", code), logging.Err(err))
		verdict = country.AnomalyVerdict{}
	}

	// The anomaly score travels inside the feature vector so the forecast
	// sequence and the sub-score formulas see the same value the verdict
	// reported.
	feats.AnomalyScore = verdict.AnomalyScore

	score, level := Fuse(pred, verdict, s.classifier.LevelFromScore)

	return &country.Score{
		Code:         code,
		Name:         info.Name,
		RiskScore:    score,
		RiskLevel:    level,
		IsAnomaly:    verdict.IsAnomaly,
		AnomalyScore: verdict.AnomalyScore,
		Severity:     verdict.Severity,
		Features:     feats,
		ComputedAt:   now,
		Prediction:   pred,
		Anomaly:      verdict,
	}, nil
}

// Fuse applies the anomaly adjustment to a prediction.  A non-anomalous
// verdict passes the prediction through untouched.  An anomalous one adds
// floor(anomalyScore * 15) points, caps at 100, and re-derives the tier
// through the classifier's own boundary function so fusion never invents
// tier boundaries.
func Fuse(pred country.RiskPrediction, verdict country.AnomalyVerdict, levelFromScore func(int) risk.RiskLevel) (int, risk.RiskLevel) {
	if !verdict.IsAnomaly {
		return pred.Score, pred.Level
	}
	// The anomaly score is unbounded in practice; clamp the boost in float
	// space so an extreme value cannot overflow the int conversion and
	// push the fused score outside [0,100].
	boost := verdict.AnomalyScore * anomalyBoostWeight
	if boost > 100 {
		boost = 100
	}
	if boost < 0 {
		boost = 0
	}
	score := pred.Score + int(boost)
	if score > 100 {
		score = 100
	}
	return score, levelFromScore(score)
}
