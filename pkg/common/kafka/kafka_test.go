package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/healthlab/pkg/common/logger"
	"github.com/synaptica-ai/healthlab/pkg/common/models"
)

func init() {
	logger.Silence()
}

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestPublishEvent(t *testing.T) {
	w := &fakeWriter{}
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	p := &Producer{topic: "assessment-events", writer: w, now: func() time.Time { return now }}

	err := p.PublishEvent(context.Background(), models.EventRiskScored, "assessment-service", map[string]interface{}{"band": "low"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	var event models.Event
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, string(msg.Key), event.ID)
	assert.Equal(t, models.EventRiskScored, event.Type)
	assert.Equal(t, "assessment-service", event.Source)
	assert.Equal(t, "low", event.Data["band"])
	assert.True(t, now.Equal(event.Timestamp))
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, models.EventRiskScored, string(msg.Headers[0].Value))
}

func TestPublishEventError(t *testing.T) {
	p := &Producer{topic: "t", writer: &fakeWriter{err: errors.New("broker down")}, now: time.Now}
	assert.EqualError(t, p.PublishEvent(context.Background(), "x", "y", nil), "broker down")
}

type fakeReader struct {
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.queue[0]
	r.queue = r.queue[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func encoded(t *testing.T, event models.Event) []byte {
	t.Helper()
	b, err := json.Marshal(event)
	require.NoError(t, err)
	return b
}

func TestConsume(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: encoded(t, models.Event{ID: "a", Type: models.EventRiskScored})},
		{Offset: 2, Value: []byte("not json")},
		{Offset: 3, Value: encoded(t, models.Event{ID: "flaky", Type: models.EventTextClassified})},
		{Offset: 4, Value: encoded(t, models.Event{ID: "b", Type: models.EventDatasetAnalyzed})},
	}}
	c := &Consumer{reader: r, backoff: time.Millisecond}

	var seen []string
	failures := 2
	err := c.Consume(context.Background(), func(_ context.Context, event models.Event) error {
		seen = append(seen, event.ID)
		if event.ID == "flaky" && failures > 0 {
			failures--
			return errors.New("store unavailable")
		}
		return nil
	})

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"a", "flaky", "flaky", "flaky", "b"}, seen)
	assert.Equal(t, []int64{1, 2, 3, 4}, r.committed)
}

func TestConsumeDoesNotSkipPastFailedMessage(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		{Offset: 7, Value: encoded(t, models.Event{ID: "down", Type: models.EventRiskScored})},
		{Offset: 8, Value: encoded(t, models.Event{ID: "next", Type: models.EventRiskScored})},
	}}
	c := &Consumer{reader: r, backoff: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := 0
	err := c.Consume(ctx, func(_ context.Context, event models.Event) error {
		require.Equal(t, "down", event.ID)
		attempts++
		if attempts == 3 {
			cancel()
		}
		return errors.New("store unavailable")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, attempts)
	assert.Empty(t, r.committed)
	require.Len(t, r.queue, 1)
	assert.EqualValues(t, 8, r.queue[0].Offset)
}

func TestConsumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Consumer{reader: cancelledReader{}}
	assert.ErrorIs(t, c.Consume(ctx, func(context.Context, models.Event) error { return nil }), context.Canceled)
}

type cancelledReader struct{}

func (cancelledReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	return kafka.Message{}, ctx.Err()
}
func (cancelledReader) CommitMessages(context.Context, ...kafka.Message) error { return nil }
func (cancelledReader) Close() error                                         { return nil }
