package http

import (
	"github.com/distritask/dashboard/internal/config"
	"github.com/distritask/dashboard/internal/core/services"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"github.com/distritask/dashboard/internal/transport/http/handlers"
	httpmw "github.com/distritask/dashboard/internal/transport/http/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type RouterConfig struct {
	Config     *config.Config
	Logger     *logger.Logger
	Monitor    *services.MonitorService
	Board      *services.BoardService
	Hub        *services.BoardHub
	Submission *services.SubmissionService
	Timeline   *services.TimelineService
	Feed       handlers.FeedStats
}

func SetupRoutes(app *fiber.App, cfg RouterConfig) {
	boardHandler := handlers.NewBoardHandler(handlers.BoardHandlerConfig{
		Board:      cfg.Board,
		Monitor:    cfg.Monitor,
		Submission: cfg.Submission,
		Timeline:   cfg.Timeline,
		Hub:        cfg.Hub,
		Feed:       cfg.Feed,
		Logger:     cfg.Logger,
	})
	submitHandler := handlers.NewSubmitHandler(cfg.Submission, cfg.Logger)
	timelineHandler := handlers.NewTimelineHandler(cfg.Timeline)
	streamHandler := handlers.NewBoardStreamHandler(cfg.Hub, cfg.Logger)

	// Browser push
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws/board", websocket.New(streamHandler.Handle))

	api := app.Group("/api/v1")

	api.Get("/status", boardHandler.GetStatus)

	board := api.Group("/board")
	board.Get("/", boardHandler.GetBoard)
	board.Get("/nodes/:node", boardHandler.GetNode)

	tasks := api.Group("/tasks")
	tasks.Post("/submit", httpmw.AdminAuth(cfg.Config), submitHandler.Submit)

	api.Get("/timeline", timelineHandler.GetEvents)
}
