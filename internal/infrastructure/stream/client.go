package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/distritask/dashboard/internal/core/ports"
	"github.com/distritask/dashboard/internal/domain"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"github.com/fasthttp/websocket"
)

// Client dials the external task-update WebSocket feed.
type Client struct {
	url              string
	handshakeTimeout time.Duration
	readLimit        int64
	buffer           int
	header           http.Header
	logger           *logger.Logger

	decodeFailures atomic.Uint64
	frames         atomic.Uint64
}

type ClientConfig struct {
	URL              string
	HandshakeTimeout time.Duration
	// ReadLimit caps one frame in bytes; larger frames are dropped and
	// counted as decode failures. Zero means no cap.
	ReadLimit int64
	Buffer           int
	Header           http.Header
	Logger           *logger.Logger
}

type Stats struct {
	Frames         uint64 `json:"frames"`
	DecodeFailures uint64 `json:"decode_failures"`
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.HandshakeTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = 64
	}

	return &Client{
		url:              cfg.URL,
		handshakeTimeout: timeout,
		readLimit:        cfg.ReadLimit,
		buffer:           buffer,
		header:           cfg.Header,
		logger:           cfg.Logger,
	}
}

func (c *Client) Stats() Stats {
	return Stats{
		Frames:         c.frames.Load(),
		DecodeFailures: c.decodeFailures.Load(),
	}
}

func (c *Client) Dial(ctx context.Context) (ports.UpdateFeed, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.handshakeTimeout,
	}

	c.logger.Infow("stream_dial", "url", c.url)
	conn, resp, err := dialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		if resp != nil {
			c.logger.Warnw("stream_dial_bad_status", "url", c.url, "status", resp.StatusCode)
			return nil, fmt.Errorf("handshake failed with status %d: %w", resp.StatusCode, err)
		}
		c.logger.Warnw("stream_dial_network_error", "url", c.url, "error", err)
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}

	f := &feed{
		client:  c,
		conn:    conn,
		updates: make(chan domain.TaskUpdate, c.buffer),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go f.readLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = f.Close()
		case <-f.done:
		}
	}()

	c.logger.Infow("stream_open", "url", c.url)
	return f, nil
}

type feed struct {
	client  *Client
	conn    *websocket.Conn
	updates chan domain.TaskUpdate
	quit    chan struct{}
	done    chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

func (f *feed) Updates() <-chan domain.TaskUpdate {
	return f.updates
}

func (f *feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *feed) Close() error {
	var err error
	f.closeOnce.Do(func() {
		close(f.quit)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = f.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = f.conn.Close()
	})
	return err
}

func (f *feed) readLoop() {
	log := f.client.logger
	defer close(f.done)
	defer close(f.updates)

	for {
		msgType, r, err := f.conn.NextReader()
		if err != nil {
			f.finish(err)
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		f.client.frames.Add(1)

		data, oversized, err := readFrame(r, f.client.readLimit)
		if err != nil {
			f.finish(err)
			return
		}
		if oversized {
			f.client.decodeFailures.Add(1)
			log.Warnw("stream_frame_dropped", "error", "frame exceeds read limit", "limit", f.client.readLimit)
			continue
		}

		update, err := domain.DecodeTaskUpdate(data)
		if err != nil {
			f.client.decodeFailures.Add(1)
			log.Warnw("stream_frame_dropped", "error", err, "bytes", len(data))
			continue
		}

		select {
		case f.updates <- update:
		case <-f.quit:
			f.finish(nil)
			return
		}
	}
}

// readFrame reads one message. A message over limit is drained and reported
// as oversized so the connection stays usable; limit <= 0 means no cap.
func readFrame(r io.Reader, limit int64) ([]byte, bool, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		return data, false, err
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) <= limit {
		return data, false, nil
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, false, err
	}
	return nil, true, nil
}

func (f *feed) closedLocally() bool {
	select {
	case <-f.quit:
		return true
	default:
		return false
	}
}

func (f *feed) finish(err error) {
	if f.closedLocally() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		err = nil
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		f.client.logger.Infow("stream_closed_by_peer", "code", closeErr.Code, "text", closeErr.Text)
	} else if err != nil {
		f.client.logger.Warnw("stream_read_failed", "error", err)
	}

	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}
