package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations executes all database migrations
func RunMigrations(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return err
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates database indexes
func createIndexes(db *gorm.DB) error {
	// Index for case lookups by user and status
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_cases_user_status
		ON cases(user_id, status)
	`).Error; err != nil {
		return err
	}

	// Index for report search ordering
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reports_created
		ON reports(created_at)
	`).Error; err != nil {
		return err
	}

	// Index for session history
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sessions_started
		ON sessions(user_id, started_at)
	`).Error; err != nil {
		return err
	}

	return nil
}
