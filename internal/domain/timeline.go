package domain

import (
	"time"

	"gorm.io/gorm"
)

// Timeline event types
const (
	EventTypeTaskUpdate    = "TASK_UPDATE"
	EventTypeTaskSubmitted = "TASK_SUBMITTED"
	EventTypeSubmitFailed  = "TASK_SUBMIT_FAILED"
)

// TimelineEvent is one persisted entry of the board's audit log.
// It is never replayed into the live view.
type TimelineEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Type    string `gorm:"size:100;not null;index" json:"type"`
	TaskID  string `gorm:"size:255;index" json:"task_id"`
	Status  string `gorm:"size:50;index" json:"status"`
	Worker  string `gorm:"size:100;index" json:"worker"`
	Message string `gorm:"type:text" json:"message"`
	Time    string `gorm:"size:50" json:"time"`
}

func TimelineEventFromUpdate(u TaskUpdate) *TimelineEvent {
	return &TimelineEvent{
		Type:    EventTypeTaskUpdate,
		TaskID:  u.ID,
		Status:  u.Status,
		Worker:  u.Worker,
		Message: u.Message,
		Time:    u.Time,
	}
}
