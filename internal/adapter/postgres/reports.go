package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bswc/forecast-scoring-service/internal/domain"
)

// ReportsInWindow returns reports with reported_at in [start, end), oldest
// first, capped at the configured query limit. Implements session.ReportStore.
func (db *DB) ReportsInWindow(ctx context.Context, start, end time.Time) ([]domain.Report, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, hazard, sev, lat, lon, author, reported_at
		FROM reports
		WHERE reported_at >= $1 AND reported_at < $2
		ORDER BY reported_at
		LIMIT $3
	`, start, end, db.queryLimit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var r domain.Report
		if err := rows.Scan(&r.ID, &r.Hazard, &r.Severity, &r.Lat, &r.Lon, &r.Author, &r.ReportedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

// CreateReport inserts a new hazard report and returns its id. Used by the
// ingestion API, not by scoring.
func (db *DB) CreateReport(ctx context.Context, report domain.Report) (string, error) {
	id := uuid.NewString()
	_, err := db.pool.Exec(ctx, `
		INSERT INTO reports (id, hazard, sev, lat, lon, author, reported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, report.Hazard, string(domain.ParseSeverity(report.Severity)), report.Lat, report.Lon, report.Author, report.ReportedAt)
	if err != nil {
		return "", fmt.Errorf("insert report: %w", err)
	}
	return id, nil
}
