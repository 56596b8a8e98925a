package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultWorker owns every update that does not name a worker.
const DefaultWorker = "manager"

var (
	ErrUpdateMalformed     = errors.New("task update: malformed payload")
	ErrUpdateMissingID     = errors.New("task update: id is required")
	ErrUpdateMissingStatus = errors.New("task update: status is required")
)

// TaskUpdate is a snapshot of one task's state as emitted by the execution system.
type TaskUpdate struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Time    string `json:"time,omitempty"`
	Worker  string `json:"worker,omitempty"`
	Message string `json:"message,omitempty"`
}

// Owner returns the worker owning the update, falling back to fallback
// (or DefaultWorker when fallback is empty). Only an empty worker falls back;
// the feed's value is otherwise taken as sent, whitespace included.
func (u TaskUpdate) Owner(fallback string) string {
	if u.Worker != "" {
		return u.Worker
	}
	if fallback != "" {
		return fallback
	}
	return DefaultWorker
}

// OwnedBy reports whether the update belongs to worker, ignoring case.
func (u TaskUpdate) OwnedBy(worker, fallback string) bool {
	return strings.EqualFold(u.Owner(fallback), strings.TrimSpace(worker))
}

// wire form; pointers tell an absent field from an empty one
type taskUpdatePayload struct {
	ID      *string `json:"id"`
	Status  *string `json:"status"`
	Time    *string `json:"time"`
	Worker  *string `json:"worker"`
	Message *string `json:"message"`
}

// DecodeTaskUpdate parses one stream frame. id and status are mandatory,
// the remaining fields default to empty and unknown fields are ignored.
func DecodeTaskUpdate(data []byte) (TaskUpdate, error) {
	var p taskUpdatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return TaskUpdate{}, fmt.Errorf("%w: %v", ErrUpdateMalformed, err)
	}
	if p.ID == nil || strings.TrimSpace(*p.ID) == "" {
		return TaskUpdate{}, ErrUpdateMissingID
	}
	if p.Status == nil || strings.TrimSpace(*p.Status) == "" {
		return TaskUpdate{}, ErrUpdateMissingStatus
	}

	return TaskUpdate{
		ID:      *p.ID,
		Status:  *p.Status,
		Time:    deref(p.Time),
		Worker:  deref(p.Worker),
		Message: deref(p.Message),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
