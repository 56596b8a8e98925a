package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/distritask/dashboard/internal/core/ports"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
)

// SubmissionService forwards "submit task" requests to the intake service.
// At most one submission is in flight; extra attempts are rejected, not queued.
type SubmissionService struct {
	intake       ports.TaskIntake
	connectivity ports.Connectivity
	publisher    ports.BoardPublisher
	recorder     ports.TimelineRecorder
	logger       *logger.Logger
	busy         atomic.Bool
}

type SubmissionServiceConfig struct {
	Intake       ports.TaskIntake
	Connectivity ports.Connectivity
	Publisher    ports.BoardPublisher
	Recorder     ports.TimelineRecorder
	Logger       *logger.Logger
}

func NewSubmissionService(cfg SubmissionServiceConfig) *SubmissionService {
	return &SubmissionService{
		intake:       cfg.Intake,
		connectivity: cfg.Connectivity,
		publisher:    cfg.Publisher,
		recorder:     cfg.Recorder,
		logger:       cfg.Logger,
	}
}

// Busy reports whether a submission is in flight.
func (s *SubmissionService) Busy() bool {
	return s.busy.Load()
}

// CanSubmit mirrors the enabled state of the submit control.
func (s *SubmissionService) CanSubmit() bool {
	return !s.Busy() && s.online()
}

func (s *SubmissionService) Submit(ctx context.Context) (*ports.SubmitResult, error) {
	if !s.online() {
		s.logger.Warnw("submission_rejected_offline")
		return nil, ErrStreamOffline
	}
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Warnw("submission_rejected_in_flight")
		return nil, ErrSubmissionInFlight
	}
	defer s.busy.Store(false)

	start := time.Now()
	res, err := s.intake.Submit(ctx)
	if s.recorder != nil {
		s.recorder.RecordSubmission(ctx, res, err)
	}
	if err != nil {
		s.logger.Errorw("submission_failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		if s.publisher != nil {
			s.publisher.PublishNotice("error", fmt.Sprintf("Failed to submit task: %v", err))
		}
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	s.logger.Infow("submission_success", "task_id", res.ID, "duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (s *SubmissionService) online() bool {
	return s.connectivity == nil || s.connectivity.Connected()
}
