package postgres

import (
	"context"
	"fmt"

	"github.com/bswc/forecast-scoring-service/internal/domain"
)

// RankingBetween aggregates stored daily scores per participant over the
// inclusive day range [from, to], highest total first. The daily_scores
// table is maintained by the contest admins; this is a read-only listing.
func (db *DB) RankingBetween(ctx context.Context, from, to string) ([]domain.RankingEntry, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT s.participant_id, COALESCE(p.nick, ''), SUM(s.points)::int, COUNT(*)::int
		FROM daily_scores s
		LEFT JOIN participants p ON p.id = s.participant_id
		WHERE s.day >= $1 AND s.day <= $2
		GROUP BY s.participant_id, p.nick
		ORDER BY SUM(s.points) DESC, s.participant_id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query ranking: %w", err)
	}
	defer rows.Close()

	var entries []domain.RankingEntry
	for rows.Next() {
		var e domain.RankingEntry
		if err := rows.Scan(&e.ParticipantID, &e.Nick, &e.Points, &e.Days); err != nil {
			return nil, fmt.Errorf("scan ranking row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranking: %w", err)
	}
	return entries, nil
}
