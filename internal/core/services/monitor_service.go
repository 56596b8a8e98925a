package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/distritask/dashboard/internal/core/ports"
	"github.com/distritask/dashboard/internal/domain"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
)

// MonitorService owns the feed connection and is the only writer of the
// live view. Every session starts from an empty view; a closed session
// leaves its view readable until the next one opens.
type MonitorService struct {
	stream            ports.UpdateStream
	publisher         ports.BoardPublisher
	recorder          ports.TimelineRecorder
	logger            *logger.Logger
	capacity          int
	defaultWorker     string
	reconnectInterval time.Duration

	view      atomic.Pointer[LiveView]
	connected atomic.Bool
	applied   atomic.Uint64
	sessions  atomic.Uint64
}

type MonitorServiceConfig struct {
	Stream            ports.UpdateStream
	Recorder          ports.TimelineRecorder
	Logger            *logger.Logger
	Capacity          int
	DefaultWorker     string
	ReconnectInterval time.Duration
}

type MonitorStats struct {
	Connected bool   `json:"connected"`
	Applied   uint64 `json:"applied"`
	Sessions  uint64 `json:"sessions"`
	Visible   int    `json:"visible"`
}

func NewMonitorService(cfg MonitorServiceConfig) *MonitorService {
	m := &MonitorService{
		stream:            cfg.Stream,
		recorder:          cfg.Recorder,
		logger:            cfg.Logger,
		capacity:          cfg.Capacity,
		defaultWorker:     cfg.DefaultWorker,
		reconnectInterval: cfg.ReconnectInterval,
	}
	m.view.Store(NewLiveView(cfg.Capacity, cfg.DefaultWorker))
	return m
}

func (m *MonitorService) SetPublisher(p ports.BoardPublisher) {
	m.publisher = p
}

func (m *MonitorService) View() *LiveView {
	return m.view.Load()
}

func (m *MonitorService) Connected() bool {
	return m.connected.Load()
}

func (m *MonitorService) Stats() MonitorStats {
	return MonitorStats{
		Connected: m.connected.Load(),
		Applied:   m.applied.Load(),
		Sessions:  m.sessions.Load(),
		Visible:   m.View().Len(),
	}
}

// Run consumes the feed until ctx is done. With no reconnect interval a
// closed connection is terminal and Run returns its error.
func (m *MonitorService) Run(ctx context.Context) error {
	for {
		err := m.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if m.reconnectInterval <= 0 {
			m.logger.Warnw("monitor_stream_terminal", "error", err)
			return err
		}

		m.logger.Infow("monitor_stream_reconnect_wait", "interval", m.reconnectInterval, "error", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(m.reconnectInterval):
		}
	}
}

func (m *MonitorService) session(ctx context.Context) error {
	feed, err := m.stream.Dial(ctx)
	if err != nil {
		m.logger.Warnw("monitor_stream_dial_failed", "error", err)
		return fmt.Errorf("dial stream: %w", err)
	}
	defer feed.Close()

	view := NewLiveView(m.capacity, m.defaultWorker)
	m.view.Store(view)
	m.sessions.Add(1)
	m.setConnected(true)
	m.logger.Infow("monitor_stream_open", "session", m.sessions.Load())

	defer m.setConnected(false)

	updates := feed.Updates()
	for {
		select {
		case <-ctx.Done():
			m.logger.Infow("monitor_stream_cancelled")
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				err := feed.Err()
				if err == nil {
					err = ErrStreamClosed
				}
				m.logger.Infow("monitor_stream_closed", "error", err, "visible", view.Len())
				return err
			}
			m.apply(ctx, view, u)
		}
	}
}

func (m *MonitorService) apply(ctx context.Context, view *LiveView, u domain.TaskUpdate) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Errorw("monitor_apply_panic", "task_id", u.ID, "panic", r)
		}
	}()

	view.ApplyUpdate(u)
	m.applied.Add(1)
	m.logger.Debugw("monitor_update_applied", "task_id", u.ID, "status", u.Status, "worker", u.Owner(view.DefaultWorker()))

	if m.recorder != nil {
		m.recorder.RecordUpdate(ctx, u)
	}
	if m.publisher != nil {
		m.publisher.PublishBoard()
	}
}

func (m *MonitorService) setConnected(v bool) {
	if m.connected.Swap(v) == v {
		return
	}
	if m.publisher != nil {
		m.publisher.PublishBoard()
	}
}
