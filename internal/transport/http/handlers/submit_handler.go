package handlers

import (
	"errors"

	"github.com/distritask/dashboard/internal/core/services"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"github.com/distritask/dashboard/internal/transport/http/dto"
	httpmw "github.com/distritask/dashboard/internal/transport/http/middleware"
	"github.com/gofiber/fiber/v2"
)

type SubmitHandler struct {
	service *services.SubmissionService
	logger  *logger.Logger
}

func NewSubmitHandler(service *services.SubmissionService, logger *logger.Logger) *SubmitHandler {
	return &SubmitHandler{service: service, logger: logger}
}

func (h *SubmitHandler) Submit(c *fiber.Ctx) error {
	h.logger.Infow("task_submit_request", "request_id", httpmw.RequestIDFrom(c.UserContext()))
	res, err := h.service.Submit(c.UserContext())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStreamOffline):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrSubmissionInFlight):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: err.Error()})
		}
	}

	h.logger.Infow("task_submit_success", "task_id", res.ID)
	return c.Status(fiber.StatusAccepted).JSON(dto.SubmitToResponse(res))
}
