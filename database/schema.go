package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the necessary database tables if they don't exist
func InitSchema(db *sql.DB) error {
	log.Info("Initializing conflict-service database schema...")

	analysesTableSQL := `
	CREATE TABLE IF NOT EXISTS analyses(
		id INT NOT NULL AUTO_INCREMENT,
		name VARCHAR(255),
		project_type VARCHAR(64) NOT NULL,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		radius_km DOUBLE NOT NULL,
		risk_score DOUBLE NOT NULL,
		risk_level ENUM('low', 'medium', 'high', 'critical') NOT NULL,
		conflicts INT NOT NULL DEFAULT 0,
		action ENUM('relocate', 'none') NOT NULL DEFAULT 'none',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		INDEX risk_level_index (risk_level),
		INDEX created_at_index (created_at)
	)`

	if _, err := db.Exec(analysesTableSQL); err != nil {
		return fmt.Errorf("failed to create analyses table: %w", err)
	}
	log.Info("Analyses table created/verified")

	return nil
}
