package db

import (
	"github.com/distritask/dashboard/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.TimelineEvent{}); err != nil {
		return err
	}

	return createCustomIndexes(db)
}

func createCustomIndexes(db *gorm.DB) error {
	// task history lookups are always newest first
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_timeline_events_task_created
		ON timeline_events (task_id, created_at)
	`).Error
}
