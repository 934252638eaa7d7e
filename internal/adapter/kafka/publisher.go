package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/bswc/forecast-scoring-service/internal/config"
	"github.com/bswc/forecast-scoring-service/internal/session"
)

// Publisher produces session events to the scoreboard event topic. It
// implements session.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
	clock  func() time.Time
}

// NewPublisher creates a Kafka producer for the configured event topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaEventTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger, clock: time.Now}
}

// Publish serializes and writes one event. Keyed by participant so a map
// surface consuming a partition sees its own events in order.
func (p *Publisher) Publish(ctx context.Context, event session.Event) error {
	msg, err := serializeEvent(event, p.clock())
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeEvent marshals a session event into a Kafka message.
func serializeEvent(event session.Event, at time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ParticipantID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "published_at", Value: []byte(at.Format(time.RFC3339))},
		},
	}, nil
}
