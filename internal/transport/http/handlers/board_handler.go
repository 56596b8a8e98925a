package handlers

import (
	"github.com/distritask/dashboard/internal/core/services"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"github.com/distritask/dashboard/internal/infrastructure/stream"
	"github.com/distritask/dashboard/internal/transport/http/dto"
	"github.com/gofiber/fiber/v2"
)

// FeedStats exposes the stream client's frame counters.
type FeedStats interface {
	Stats() stream.Stats
}

type BoardHandler struct {
	board      *services.BoardService
	monitor    *services.MonitorService
	submission *services.SubmissionService
	timeline   *services.TimelineService
	hub        *services.BoardHub
	feed       FeedStats
	logger     *logger.Logger
}

type BoardHandlerConfig struct {
	Board      *services.BoardService
	Monitor    *services.MonitorService
	Submission *services.SubmissionService
	Timeline   *services.TimelineService
	Hub        *services.BoardHub
	Feed       FeedStats
	Logger     *logger.Logger
}

func NewBoardHandler(cfg BoardHandlerConfig) *BoardHandler {
	return &BoardHandler{
		board:      cfg.Board,
		monitor:    cfg.Monitor,
		submission: cfg.Submission,
		timeline:   cfg.Timeline,
		hub:        cfg.Hub,
		feed:       cfg.Feed,
		logger:     cfg.Logger,
	}
}

func (h *BoardHandler) GetBoard(c *fiber.Ctx) error {
	return c.JSON(h.board.Snapshot())
}

func (h *BoardHandler) GetNode(c *fiber.Ctx) error {
	nodeID := c.Params("node")
	node, ok := h.board.Node(nodeID)
	if !ok {
		h.logger.Warnw("board_node_not_found", "node", nodeID)
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "node not found",
		})
	}
	return c.JSON(node)
}

func (h *BoardHandler) GetStatus(c *fiber.Ctx) error {
	resp := dto.StatusResponse{
		Connected: h.monitor.Connected(),
		Monitor:   h.monitor.Stats(),
	}
	if h.submission != nil {
		resp.CanSubmit = h.submission.CanSubmit()
		resp.Submitting = h.submission.Busy()
	}
	if h.hub != nil {
		resp.Subscribers = h.hub.Subscribers()
	}
	if h.timeline != nil {
		resp.Timeline = h.timeline.Enabled()
	}
	if h.feed != nil {
		stats := h.feed.Stats()
		resp.Feed = &stats
	}
	return c.JSON(resp)
}
