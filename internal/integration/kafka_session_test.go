//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/bswc/forecast-scoring-service/internal/adapter/kafka"
	"github.com/bswc/forecast-scoring-service/internal/config"
	"github.com/bswc/forecast-scoring-service/internal/domain"
	"github.com/bswc/forecast-scoring-service/internal/observability"
	"github.com/bswc/forecast-scoring-service/internal/session"
)

const (
	testRequestTopic = "test-map-requests"
	testEventTopic   = "test-scoreboard-events"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// --- in-memory stores ---

type memReportStore struct {
	reports []domain.Report
}

func (m *memReportStore) ReportsInWindow(_ context.Context, start, end time.Time) ([]domain.Report, error) {
	var out []domain.Report
	for _, r := range m.reports {
		if !r.ReportedAt.Before(start) && r.ReportedAt.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

type memForecastStore struct {
	forecast domain.Forecast
}

func (m *memForecastStore) LatestForecast(_ context.Context, _, _ string) (domain.Forecast, error) {
	return m.forecast, nil
}

func (m *memForecastStore) SaveForecast(_ context.Context, forecast domain.Forecast) error {
	m.forecast = forecast
	return nil
}

type memIdentity struct{}

func (memIdentity) DisplayName(_ context.Context, _ string) (string, error) {
	return "stormchaser", nil
}

type memLayerStore struct{}

func (memLayerStore) LatestLayer(_ context.Context, key string) (json.RawMessage, error) {
	return nil, fmt.Errorf("layer %q: %w", key, session.ErrNotFound)
}

func squareForecast(day string) domain.Forecast {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Polygon{{
		{-55, -30}, {-50, -30}, {-50, -25}, {-55, -25}, {-55, -30},
	}}))
	return domain.Forecast{ParticipantID: "p1", Day: day, Features: fc}
}

// TestScoreRequestRoundTrip drives a score request through real Kafka: a
// tagged message on the request topic is consumed, the day is scored against
// in-memory stores, and the scoreboard arrives on the event topic.
func TestScoreRequestRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testRequestTopic)
	createTopic(t, broker, testEventTopic)

	cfg := &config.Config{
		KafkaBrokers:      []string{broker},
		KafkaRequestTopic: testRequestTopic,
		KafkaEventTopic:   testEventTopic,
		KafkaGroupID:      fmt.Sprintf("test-session-%d", time.Now().UnixNano()),
	}

	const day = "2025-06-10"
	window := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

	reports := &memReportStore{reports: []domain.Report{
		{Hazard: "tornado", Severity: "SS", Lat: -28, Lon: -52, ReportedAt: window.Add(4 * time.Hour)},
		{Hazard: "hail", Severity: "NOR", Lat: -28.5, Lon: -52.5, ReportedAt: window.Add(5 * time.Hour)},
		{Hazard: "wind", Severity: "NOR", Lat: 10, Lon: 10, ReportedAt: window.Add(6 * time.Hour)},
	}}
	forecasts := &memForecastStore{forecast: squareForecast(day)}

	publisher := kafkaadapter.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	controller := session.NewController(session.Deps{
		Resolver:  domain.NewWindowResolver(11, -3),
		Rules:     domain.DefaultRules(),
		Reports:   reports,
		Forecasts: forecasts,
		Identity:  memIdentity{},
		Layers:    memLayerStore{},
		Publisher: publisher,
		Logger:    discardLogger(),
		Metrics:   observability.NewMetricsForTesting(),
	})

	consumer := kafkaadapter.NewConsumer(cfg, discardLogger())
	t.Cleanup(func() { _ = consumer.Close() })

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- consumer.Run(consumerCtx, controller) }()

	// Publish a score request to the request topic.
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testRequestTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	request, err := json.Marshal(map[string]string{
		"type":          "requestScore",
		"participantId": "p1",
		"day":           day,
	})
	require.NoError(t, err)
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("p1"),
		Value: request,
	}))

	// Read the scoreboard from the event topic.
	eventReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testEventTopic,
		GroupID:     fmt.Sprintf("test-events-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = eventReader.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 60*time.Second)
	defer readCancel()
	msg, err := eventReader.ReadMessage(readCtx)
	require.NoError(t, err, "read from event topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "scoreUpdate", headers["event_type"])
	_, err = time.Parse(time.RFC3339, headers["published_at"])
	assert.NoError(t, err, "published_at should be valid RFC3339")
	assert.Equal(t, "p1", string(msg.Key))

	var event session.Event
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "p1", event.ParticipantID)
	assert.Equal(t, day, event.Day)

	// Tornado SS inside: 10 + 4. Hail inside: 5. Wind outside: -3.
	require.NotNil(t, event.Scoreboard)
	assert.Equal(t, 14, event.Scoreboard[domain.HazardTornado].Points)
	assert.Equal(t, 1, event.Scoreboard[domain.HazardTornado].Hit)
	assert.Equal(t, 5, event.Scoreboard[domain.HazardHail].Points)
	assert.Equal(t, -3, event.Scoreboard[domain.HazardWind].Points)
	assert.Equal(t, 1, event.Scoreboard[domain.HazardWind].Miss)

	consumerCancel()
	require.NoError(t, <-errCh)
}
