package ports

import (
	"context"

	"github.com/distritask/dashboard/internal/domain"
)

// UpdateStream dials the external task-update feed.
type UpdateStream interface {
	Dial(ctx context.Context) (UpdateFeed, error)
}

// UpdateFeed is one open connection to the feed. Updates is closed when the
// connection ends; Err then reports why (nil on a clean close).
type UpdateFeed interface {
	Updates() <-chan domain.TaskUpdate
	Err() error
	Close() error
}

// SubmitResult is the decoded body of a successful intake response.
type SubmitResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// TaskIntake is the external task-intake service.
type TaskIntake interface {
	Submit(ctx context.Context) (*SubmitResult, error)
}

// Connectivity reports whether the live feed is currently open.
type Connectivity interface {
	Connected() bool
}

type BoardPublisher interface {
	PublishBoard()
	PublishNotice(level, message string)
}

type TimelineRecorder interface {
	RecordUpdate(ctx context.Context, update domain.TaskUpdate)
	RecordSubmission(ctx context.Context, result *SubmitResult, err error)
}
