package handlers

import (
	"github.com/distritask/dashboard/internal/core/services"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"github.com/gofiber/contrib/websocket"
)

// BoardStreamHandler pushes board frames to a browser over WebSocket.
type BoardStreamHandler struct {
	hub    *services.BoardHub
	logger *logger.Logger
}

func NewBoardStreamHandler(hub *services.BoardHub, logger *logger.Logger) *BoardStreamHandler {
	return &BoardStreamHandler{hub: hub, logger: logger}
}

func (h *BoardStreamHandler) Handle(c *websocket.Conn) {
	frames, cancel := h.hub.Subscribe()
	defer cancel()

	remote := c.RemoteAddr().String()
	h.logger.Infow("board_stream_open", "remote", remote)

	// browsers only send control frames; a read error means they left
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for frame := range frames {
		if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.logger.Warnw("board_stream_write_failed", "remote", remote, "error", err)
			break
		}
	}
	h.logger.Infow("board_stream_closed", "remote", remote)
}
