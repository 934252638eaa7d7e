package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/bswc/forecast-scoring-service/internal/config"
)

// Handler processes one raw inbound request payload. It must not return an
// error for bad payloads, only for failures worth logging at the loop level.
type Handler interface {
	HandleRaw(ctx context.Context, data []byte) error
}

// Consumer reads tagged request messages from the map-surface request topic
// and dispatches them to a Handler.
type Consumer struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewConsumer creates a Kafka consumer for the configured request topic.
func NewConsumer(cfg *config.Config, logger *slog.Logger) *Consumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaRequestTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		CommitInterval: 0, // explicit commits after handling
		MaxWait:        500 * time.Millisecond,
	})
	return &Consumer{reader: r, logger: logger}
}

// Run consumes requests until the context is cancelled. A handler failure is
// logged and the offset committed anyway: one broken request must not wedge
// the session loop.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	c.logger.Info("request consumer started", "topic", c.reader.Config().Topic)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.logger.Info("request consumer stopping", "reason", err)
				return nil
			}
			return err
		}

		if err := handler.HandleRaw(ctx, msg.Value); err != nil {
			c.logger.Error("request handling failed",
				"error", err,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("commit failed", "error", err, "offset", msg.Offset)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
