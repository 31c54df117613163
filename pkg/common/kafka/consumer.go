package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/synaptica-ai/healthlab/pkg/common/logger"
	"github.com/synaptica-ai/healthlab/pkg/common/models"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const fetchBackoff = time.Second

type Consumer struct {
	reader  messageReader
	backoff time.Duration
}

type EventHandler func(ctx context.Context, event models.Event) error

func NewConsumer(brokers []string, topic string, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{reader: reader, backoff: fetchBackoff}
}

// Consume hands every event to handler until ctx is done. Messages that do not decode are
// committed and skipped. A handler error retries the same message after a backoff; commits are
// cumulative per partition, so nothing past a failed message is fetched until it succeeds.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return err
			}
			logger.Log.WithError(err).Error("Failed to fetch message")
			if err := c.wait(ctx); err != nil {
				return err
			}
			continue
		}

		var event models.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			logger.Log.WithError(err).WithField("offset", message.Offset).Warn("Skipping undecodable event")
			c.commit(ctx, message)
			continue
		}

		if err := c.handle(ctx, handler, message, event); err != nil {
			return err
		}
		c.commit(ctx, message)
	}
}

// handle retries handler until it succeeds or ctx is done.
func (c *Consumer) handle(ctx context.Context, handler EventHandler, message kafka.Message, event models.Event) error {
	for attempt := 1; ; attempt++ {
		err := handler(ctx, event)
		if err == nil {
			return nil
		}
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
			"offset":     message.Offset,
			"attempt":    attempt,
		}).Error("Failed to process event, retrying")
		if err := c.wait(ctx); err != nil {
			return err
		}
	}
}

func (c *Consumer) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	backoff := c.backoff
	if backoff <= 0 {
		backoff = fetchBackoff
	}
	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Consumer) commit(ctx context.Context, message kafka.Message) {
	if err := c.reader.CommitMessages(ctx, message); err != nil {
		logger.Log.WithError(err).Error("Failed to commit message")
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
