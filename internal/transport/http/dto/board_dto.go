package dto

import (
	"github.com/distritask/dashboard/internal/core/ports"
	"github.com/distritask/dashboard/internal/core/services"
	"github.com/distritask/dashboard/internal/infrastructure/stream"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type SubmitResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func SubmitToResponse(res *ports.SubmitResult) SubmitResponse {
	if res == nil {
		return SubmitResponse{}
	}
	return SubmitResponse{ID: res.ID, Message: res.Message}
}

type StatusResponse struct {
	Connected   bool                  `json:"connected"`
	CanSubmit   bool                  `json:"can_submit"`
	Submitting  bool                  `json:"submitting"`
	Subscribers int                   `json:"subscribers"`
	Timeline    bool                  `json:"timeline"`
	Monitor     services.MonitorStats `json:"monitor"`
	Feed        *stream.Stats         `json:"feed,omitempty"`
}
