package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bswc/forecast-scoring-service/internal/session"
)

// LatestLayer returns the most recently stored overlay layer for a key.
// Returns session.ErrNotFound when the key has no layers. Implements
// session.LayerStore.
func (db *DB) LatestLayer(ctx context.Context, key string) (json.RawMessage, error) {
	var geojsonData []byte
	err := db.pool.QueryRow(ctx, `
		SELECT geojson
		FROM layers
		WHERE key = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, key).Scan(&geojsonData)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("layer %q: %w", key, session.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query layer: %w", err)
	}
	return geojsonData, nil
}

// DisplayName resolves a participant's nick. Returns session.ErrNotFound for
// unknown participants. Implements session.Identity.
func (db *DB) DisplayName(ctx context.Context, participantID string) (string, error) {
	var nick string
	err := db.pool.QueryRow(ctx, `SELECT nick FROM participants WHERE id = $1`, participantID).Scan(&nick)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("participant %q: %w", participantID, session.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query participant: %w", err)
	}
	return nick, nil
}
