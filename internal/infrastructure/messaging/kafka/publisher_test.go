package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/sentinel-risk/internal/config"
	"github.com/turtacn/sentinel-risk/internal/domain/snapshot"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestPublisher(w writerInterface) *AlertPublisher {
	return &AlertPublisher{
		writer:  w,
		topic:   "risk.alerts",
		logger:  logging.NewNopLogger(),
		metrics: prometheus.New(),
	}
}

func someAlerts() []snapshot.EscalationAlert {
	now := time.Now()
	return []snapshot.EscalationAlert{
		snapshot.NewEscalationAlert(risk.AlertScoreSpike, "Ukraine", "UA", "risk score rose 12 points", risk.SeverityHigh, now),
		snapshot.NewEscalationAlert(risk.AlertTierChange, "Sudan", "SD", "tier rose to CRITICAL", risk.SeverityHigh, now),
	}
}

func TestNewAlertPublisher_NilWithoutBrokers(t *testing.T) {
	t.Parallel()

	p := NewAlertPublisher(config.KafkaConfig{}, logging.NewNopLogger(), prometheus.New())
	assert.Nil(t, p)

	// The nil publisher is safe to use.
	p.Publish(context.Background(), someAlerts())
	assert.NoError(t, p.Close())
}

func TestAlertPublisher_KeysMessagesByCountry(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := newTestPublisher(w)
	p.Publish(context.Background(), someAlerts())

	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("UA"), w.msgs[0].Key)
	assert.Equal(t, []byte("SD"), w.msgs[1].Key)
	assert.Contains(t, string(w.msgs[0].Value), "SCORE_SPIKE")
}

func TestAlertPublisher_WriteFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{err: errors.New("broker down")}
	p := newTestPublisher(w)

	// Must not panic or propagate.
	p.Publish(context.Background(), someAlerts())
	assert.Empty(t, w.msgs)
}

func TestAlertPublisher_EmptyBatchIsNoop(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := newTestPublisher(w)
	p.Publish(context.Background(), nil)
	assert.Empty(t, w.msgs)
}

func TestAlertPublisher_CloseStopsPublishing(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := newTestPublisher(w)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	p.Publish(context.Background(), someAlerts())
	assert.Empty(t, w.msgs)

	assert.NoError(t, p.Close())
}

func TestAlertPublisher_MessageTimeMatchesAlert(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := newTestPublisher(w)
	alerts := someAlerts()
	p.Publish(context.Background(), alerts)

	require.Len(t, w.msgs, 2)
	assert.WithinDuration(t, alerts[0].Time, w.msgs[0].Time, time.Second)
}
