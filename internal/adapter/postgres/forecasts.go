package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb/geojson"

	"github.com/bswc/forecast-scoring-service/internal/domain"
	"github.com/bswc/forecast-scoring-service/internal/session"
)

// LatestForecast returns the participant's most recent forecast for a day.
// Returns session.ErrNotFound when none exists. Implements
// session.ForecastStore.
func (db *DB) LatestForecast(ctx context.Context, participantID, day string) (domain.Forecast, error) {
	var (
		f        domain.Forecast
		features []byte
	)
	err := db.pool.QueryRow(ctx, `
		SELECT id, participant_id, day::text, day_type, nick, features, submitted_at
		FROM forecasts
		WHERE participant_id = $1 AND day = $2
		ORDER BY submitted_at DESC
		LIMIT 1
	`, participantID, day).Scan(&f.ID, &f.ParticipantID, &f.Day, &f.DayType, &f.Nick, &features, &f.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Forecast{}, fmt.Errorf("forecast %s/%s: %w", participantID, day, session.ErrNotFound)
	}
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("query forecast: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(features)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("decode forecast features: %w", err)
	}
	f.Features = fc
	return f, nil
}

// SaveForecast stores a new forecast submission. Each save is a fresh row;
// LatestForecast picks the newest, so older submissions stay as history.
func (db *DB) SaveForecast(ctx context.Context, forecast domain.Forecast) error {
	features := forecast.Features
	if features == nil {
		features = geojson.NewFeatureCollection()
	}
	data, err := features.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode forecast features: %w", err)
	}

	_, err = db.pool.Exec(ctx, `
		INSERT INTO forecasts (id, participant_id, day, day_type, nick, features, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.NewString(), forecast.ParticipantID, forecast.Day, forecast.DayType, forecast.Nick, data, forecast.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}
	return nil
}
