package services

import (
	"context"
	"time"

	"github.com/distritask/dashboard/internal/core/ports"
	"github.com/distritask/dashboard/internal/domain"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
)

const (
	defaultTimelineLimit = 50
	maxTimelineLimit     = 500
	recordTimeout        = 5 * time.Second
)

// TimelineService persists applied updates and submissions as an audit log.
// With no repository it records nothing and lists return ErrTimelineDisabled.
type TimelineService struct {
	repo   ports.TimelineRepository
	logger *logger.Logger
}

func NewTimelineService(repo ports.TimelineRepository, log *logger.Logger) *TimelineService {
	return &TimelineService{repo: repo, logger: log}
}

func (s *TimelineService) Enabled() bool {
	return s.repo != nil
}

func (s *TimelineService) RecordUpdate(ctx context.Context, update domain.TaskUpdate) {
	if s.repo == nil {
		return
	}
	s.create(ctx, domain.TimelineEventFromUpdate(update))
}

func (s *TimelineService) RecordSubmission(ctx context.Context, result *ports.SubmitResult, err error) {
	if s.repo == nil {
		return
	}
	event := &domain.TimelineEvent{Type: domain.EventTypeTaskSubmitted, Worker: domain.DefaultWorker}
	switch {
	case err != nil:
		event.Type = domain.EventTypeSubmitFailed
		event.Message = err.Error()
	case result != nil:
		event.TaskID = result.ID
		event.Message = result.Message
	}
	s.create(ctx, event)
}

func (s *TimelineService) create(ctx context.Context, event *domain.TimelineEvent) {
	// a slow database must not stall the feed for long
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, event); err != nil {
		s.logger.Warnw("timeline_record_failed", "type", event.Type, "task_id", event.TaskID, "error", err)
	}
}

// List returns the newest events, optionally for a single task.
func (s *TimelineService) List(ctx context.Context, taskID string, limit int) ([]domain.TimelineEvent, error) {
	if s.repo == nil {
		return nil, ErrTimelineDisabled
	}
	if limit <= 0 {
		limit = defaultTimelineLimit
	}
	if limit > maxTimelineLimit {
		limit = maxTimelineLimit
	}
	if taskID != "" {
		return s.repo.GetByTask(ctx, taskID, limit)
	}
	return s.repo.GetAll(ctx, limit)
}

// RunRetention deletes events older than retention every interval until ctx is done.
func (s *TimelineService) RunRetention(ctx context.Context, retention, interval time.Duration) {
	if s.repo == nil || retention <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		removed, err := s.repo.CleanupOld(ctx, retention)
		if err != nil {
			s.logger.Warnw("timeline_retention_failed", "error", err)
		} else if removed > 0 {
			s.logger.Infow("timeline_retention_ok", "removed", removed)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
