package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/distritask/dashboard/internal/config"
	"github.com/distritask/dashboard/internal/core/ports"
	"github.com/distritask/dashboard/internal/core/services"
	"github.com/distritask/dashboard/internal/infrastructure/db"
	"github.com/distritask/dashboard/internal/infrastructure/intake"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"github.com/distritask/dashboard/internal/infrastructure/stream"
	transporthttp "github.com/distritask/dashboard/internal/transport/http"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const retentionInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Follow the update stream and serve the board",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log, err := logger.New(cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer log.Sync()

		return serve(cmd.Context(), cfg, log)
	},
}

func serve(parent context.Context, cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var database *gorm.DB
	var timelineRepo ports.TimelineRepository
	if cfg.Database.Enabled {
		var err error
		database, err = db.NewConnection(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Infow("database_connected", "driver", cfg.Database.Driver)

		if err := db.RunMigrations(database); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		timelineRepo = db.NewTimelineRepository(database, log.Named("timeline"))
	}

	timeline := services.NewTimelineService(timelineRepo, log.Named("timeline"))

	feed := stream.NewClient(stream.ClientConfig{
		URL:              cfg.Stream.URL,
		HandshakeTimeout: cfg.Stream.HandshakeTimeout,
		ReadLimit:        cfg.Stream.ReadLimit,
		Buffer:           cfg.Stream.Buffer,
		Logger:           log.Named("stream"),
	})

	monitor := services.NewMonitorService(services.MonitorServiceConfig{
		Stream:            feed,
		Recorder:          timeline,
		Logger:            log.Named("monitor"),
		Capacity:          cfg.Board.Capacity,
		DefaultWorker:     cfg.Board.DefaultWorker,
		ReconnectInterval: cfg.Stream.ReconnectInterval,
	})
	board := services.NewBoardService(monitor, cfg.Board.Nodes)
	hub := services.NewBoardHub(board, log.Named("hub"))
	monitor.SetPublisher(hub)

	submission := services.NewSubmissionService(services.SubmissionServiceConfig{
		Intake: intake.NewClient(intake.ClientConfig{
			BaseURL: cfg.Intake.BaseURL,
			Timeout: cfg.Intake.Timeout,
			Logger:  log.Named("intake"),
		}),
		Connectivity: monitor,
		Publisher:    hub,
		Recorder:     timeline,
		Logger:       log.Named("submission"),
	})

	app := transporthttp.NewApp(cfg, log)
	transporthttp.SetupRoutes(app, transporthttp.RouterConfig{
		Config:     cfg,
		Logger:     log,
		Monitor:    monitor,
		Board:      board,
		Hub:        hub,
		Submission: submission,
		Timeline:   timeline,
		Feed:       feed,
	})

	go func() {
		if err := monitor.Run(ctx); err != nil {
			log.Warnw("monitor_stopped", "error", err)
		}
	}()

	if timeline.Enabled() && cfg.Database.Retention > 0 {
		go timeline.RunRetention(ctx, cfg.Database.Retention, retentionInterval)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Listen(cfg.Server.Address())
	}()
	log.Infow("server_started", "addr", cfg.Server.Address(), "stream", cfg.Stream.URL, "intake", cfg.Intake.BaseURL)

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		if err != nil {
			err = fmt.Errorf("server failed to start: %w", err)
		}
	}

	gracefulShutdown(app, database, cfg.Server.ShutdownTimeout, log)
	return err
}

type shutdowner interface {
	ShutdownWithContext(ctx context.Context) error
}

func gracefulShutdown(app shutdowner, database *gorm.DB, timeout time.Duration, log *logger.Logger) {
	log.Info("shutting down server...")

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("server forced to shutdown: %v", err)
	}

	if database != nil {
		if err := db.Close(database); err != nil {
			log.Errorf("failed to close database connection: %v", err)
		}
	}

	log.Info("server exited gracefully")
}
