// Package kafka publishes escalation alerts to the downstream alerting topic.
// Publishing is best effort: a failed write is counted and logged, never
// propagated, so alert fan-out can never fail a refresh cycle.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/turtacn/sentinel-risk/internal/config"
	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
)

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// AlertPublisher fans escalation alerts out to Kafka.  A nil *AlertPublisher
// is valid and publishes nothing, which is how deployments without brokers
// run.
type AlertPublisher struct {
	writer  writerInterface
	topic   string
	logger  logging.Logger
	metrics *prometheus.Metrics
	closed  atomic.Bool
}

// NewAlertPublisher builds the publisher, or returns nil when no brokers are
// configured.
func NewAlertPublisher(cfg config.KafkaConfig, logger logging.Logger, metrics *prometheus.Metrics) *AlertPublisher {
	if len(cfg.Brokers) == 0 {
		return nil
	}

	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = 100
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		BatchSize:    batchSize,
		BatchTimeout: time.Second,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafkago.RequireOne,
	}

	return &AlertPublisher{
		writer:  writer,
		topic:   cfg.Topic,
		logger:  logger.Named("alert-publisher"),
		metrics: metrics,
	}
}

// Publish writes the cycle's alerts to the topic, keyed by country code so
// one country's alerts land on one partition in order.
func (p *AlertPublisher) Publish(ctx context.Context, alerts []snapshot.EscalationAlert) {
	if p == nil || len(alerts) == 0 || p.closed.Load() {
		return
	}

	msgs := make([]kafkago.Message, 0, len(alerts))
	for _, a := range alerts {
		value, err := json.Marshal(a)
		if err != nil {
			p.logger.Warn("failed to encode alert", logging.String("alert_id", a.ID), logging.Err(err))
			continue
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(a.Code),
			Value: value,
			Time:  a.Time,
		})
	}
	if len(msgs) == 0 {
		return
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Warn("failed to publish alerts",
			logging.Int("count", len(msgs)),
			logging.Err(err))
		return
	}

	for _, a := range alerts {
		p.metrics.AlertsPublished.WithLabelValues(string(a.Type)).Inc()
	}
	p.logger.Debug("alerts published", logging.Int("count", len(msgs)))
}

// Close flushes and closes the underlying writer.
func (p *AlertPublisher) Close() error {
	if p == nil || !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
