package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/bswc/forecast-scoring-service/internal/adapter/httpapi"
	kafkaadapter "github.com/bswc/forecast-scoring-service/internal/adapter/kafka"
	"github.com/bswc/forecast-scoring-service/internal/adapter/postgres"
	"github.com/bswc/forecast-scoring-service/internal/config"
	"github.com/bswc/forecast-scoring-service/internal/domain"
	"github.com/bswc/forecast-scoring-service/internal/observability"
	"github.com/bswc/forecast-scoring-service/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.ReportQueryLimit)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	consumer := kafkaadapter.NewConsumer(cfg, logger)
	publisher := kafkaadapter.NewPublisher(cfg, logger)

	resolver := domain.NewWindowResolver(cfg.DeadlineHour, cfg.ContestUTCOffset)

	controller := session.NewController(session.Deps{
		Resolver:  resolver,
		Rules:     domain.DefaultRules(),
		Reports:   db,
		Forecasts: db,
		Identity:  db,
		Layers:    db,
		Publisher: publisher,
		Logger:    logger,
		Metrics:   metrics,
		Interval:  cfg.RefreshInterval,
	})

	srv := httpapi.NewServer(cfg.HTTPAddr, db, db, db, resolver, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return consumer.Run(gctx, controller)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		controller.Stop()
		if err := consumer.Close(); err != nil {
			logger.Error("kafka consumer close error", "error", err)
		}
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
