package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatabaseURL string

	KafkaBrokers      []string
	KafkaRequestTopic string
	KafkaEventTopic   string
	KafkaGroupID      string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Contest rules.
	DeadlineHour     int
	ContestUTCOffset int
	RefreshInterval  time.Duration
	ReportQueryLimit int
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := envDuration("REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	deadlineHour, err := envInt("DEADLINE_HOUR", 11)
	if err != nil {
		return nil, err
	}
	utcOffset, err := envInt("CONTEST_UTC_OFFSET", -3)
	if err != nil {
		return nil, err
	}
	queryLimit, err := envInt("REPORT_QUERY_LIMIT", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		KafkaBrokers:      splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRequestTopic: envOrDefault("KAFKA_REQUEST_TOPIC", "map-requests"),
		KafkaEventTopic:   envOrDefault("KAFKA_EVENT_TOPIC", "scoreboard-events"),
		KafkaGroupID:      envOrDefault("KAFKA_GROUP_ID", "forecast-scoring"),
		HTTPAddr:          envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		DeadlineHour:      deadlineHour,
		ContestUTCOffset:  utcOffset,
		RefreshInterval:   refreshInterval,
		ReportQueryLimit:  queryLimit,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is required")
	}
	if cfg.KafkaRequestTopic == "" {
		return nil, fmt.Errorf("KAFKA_REQUEST_TOPIC is required")
	}
	if cfg.KafkaEventTopic == "" {
		return nil, fmt.Errorf("KAFKA_EVENT_TOPIC is required")
	}
	if cfg.DeadlineHour < 0 || cfg.DeadlineHour > 23 {
		return nil, fmt.Errorf("DEADLINE_HOUR must be between 0 and 23")
	}
	if cfg.ContestUTCOffset < -12 || cfg.ContestUTCOffset > 14 {
		return nil, fmt.Errorf("CONTEST_UTC_OFFSET must be a valid UTC offset in hours")
	}
	if cfg.RefreshInterval < time.Second {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be at least 1s")
	}
	if cfg.ReportQueryLimit < 1 || cfg.ReportQueryLimit > 10000 {
		return nil, fmt.Errorf("REPORT_QUERY_LIMIT must be between 1 and 10000")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func splitBrokers(value string) []string {
	var brokers []string
	for _, b := range strings.Split(value, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
