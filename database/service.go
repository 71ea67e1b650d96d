// Package database is the optional analysis-history store: an append-only
// audit trail of analysis calls. The core never depends on it; when no
// database is configured the service simply is not constructed.
package database

import (
	"context"
	"database/sql"

	"github.com/apex/log"

	"conflict-service/models"
)

type HistoryService struct {
	db *sql.DB
}

func NewHistoryService(db *sql.DB) *HistoryService {
	return &HistoryService{db: db}
}

// SaveAnalysis appends one analysis record.
func (s *HistoryService) SaveAnalysis(ctx context.Context, e *models.HistoryEntry) error {
	result, err := s.db.ExecContext(ctx, `INSERT
		INTO analyses (name, project_type, latitude, longitude, radius_km, risk_score, risk_level, conflicts, action)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.ProjectType, e.Latitude, e.Longitude, e.RadiusKm,
		e.RiskScore, e.RiskLevel, e.Conflicts, e.Action)
	if err != nil {
		log.Errorf("Error inserting analysis record: %w", err)
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows != 1 {
		log.Warnf("saveAnalysis: expected to affect 1 row, affected %d", rows)
	}
	return nil
}

// RecentAnalyses returns the newest records, newest first.
func (s *HistoryService) RecentAnalyses(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, COALESCE(name, ''), project_type, latitude, longitude, radius_km,
		risk_score, risk_level, conflicts, action, created_at
		FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		log.Errorf("Error querying analyses: %w", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.Id, &e.Name, &e.ProjectType, &e.Latitude, &e.Longitude,
			&e.RadiusKm, &e.RiskScore, &e.RiskLevel, &e.Conflicts, &e.Action, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
