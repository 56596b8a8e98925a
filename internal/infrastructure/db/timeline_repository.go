package db

import (
	"context"
	"time"

	"github.com/distritask/dashboard/internal/core/ports"
	"github.com/distritask/dashboard/internal/domain"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type timelineRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimelineRepository(db *gorm.DB, log *logger.Logger) ports.TimelineRepository {
	return &timelineRepository{
		db:  db,
		log: log,
	}
}

func (r *timelineRepository) Create(ctx context.Context, event *domain.TimelineEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		r.log.Errorw("timeline_repo_create_failed", "type", event.Type, "task_id", event.TaskID, "error", err)
		return err
	}
	r.log.Debugw("timeline_repo_create_ok", "id", event.ID, "type", event.Type, "task_id", event.TaskID)
	return nil
}

func (r *timelineRepository) GetAll(ctx context.Context, limit int) ([]domain.TimelineEvent, error) {
	var events []domain.TimelineEvent
	err := r.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		r.log.Errorw("timeline_repo_list_failed", "error", err)
		return nil, err
	}
	r.log.Debugw("timeline_repo_list_ok", "count", len(events))
	return events, nil
}

func (r *timelineRepository) GetByTask(ctx context.Context, taskID string, limit int) ([]domain.TimelineEvent, error) {
	var events []domain.TimelineEvent
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		r.log.Errorw("timeline_repo_get_by_task_failed", "task_id", taskID, "error", err)
		return nil, err
	}
	r.log.Debugw("timeline_repo_get_by_task_ok", "task_id", taskID, "count", len(events))
	return events, nil
}

// CleanupOld removes events older than the specified duration
func (r *timelineRepository) CleanupOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := r.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&domain.TimelineEvent{})
	if res.Error != nil {
		r.log.Errorw("timeline_repo_cleanup_failed", "error", res.Error)
		return 0, res.Error
	}
	r.log.Infow("timeline_repo_cleanup_ok", "removed", res.RowsAffected)
	return res.RowsAffected, nil
}
