package handlers

import (
	"errors"
	"strconv"

	"github.com/distritask/dashboard/internal/core/services"
	"github.com/distritask/dashboard/internal/transport/http/dto"
	"github.com/gofiber/fiber/v2"
)

type TimelineHandler struct {
	service *services.TimelineService
}

func NewTimelineHandler(service *services.TimelineService) *TimelineHandler {
	return &TimelineHandler{service: service}
}

func (h *TimelineHandler) GetEvents(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid limit"})
		}
		limit = n
	}

	events, err := h.service.List(c.UserContext(), c.Query("task_id"), limit)
	if err != nil {
		if errors.Is(err, services.ErrTimelineDisabled) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(events)
}
