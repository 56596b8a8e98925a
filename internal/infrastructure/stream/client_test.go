package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/distritask/dashboard/internal/domain"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T, handle func(conn *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func collect(t *testing.T, ch <-chan domain.TaskUpdate) []domain.TaskUpdate {
	t.Helper()
	var out []domain.TaskUpdate
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, u)
		case <-timeout:
			t.Fatal("timed out waiting for feed to close")
		}
	}
}

func TestClientDecodesFramesAndDropsMalformed(t *testing.T) {
	url := newFeedServer(t, func(conn *websocket.Conn) {
		frames := []string{
			`{"id":"t1","status":"pending","time":"10:00:00","worker":"manager","message":"Task accepted"}`,
			`not json`,
			`{"status":"processing"}`,
			`{"id":"t1","status":"processing","worker":"worker-2"}`,
		}
		for _, f := range frames {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(f))
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		time.Sleep(50 * time.Millisecond)
	})

	client := NewClient(ClientConfig{URL: url, Logger: logger.NewNop()})
	feed, err := client.Dial(context.Background())
	require.NoError(t, err)
	defer feed.Close()

	updates := collect(t, feed.Updates())
	require.Len(t, updates, 2)
	assert.Equal(t, "pending", updates[0].Status)
	assert.Equal(t, "Task accepted", updates[0].Message)
	assert.Equal(t, "worker-2", updates[1].Worker)
	assert.NoError(t, feed.Err())

	stats := client.Stats()
	assert.Equal(t, uint64(4), stats.Frames)
	assert.Equal(t, uint64(2), stats.DecodeFailures)
}

func sendLargeThenValid(conn *websocket.Conn) {
	large := `{"id":"big","status":"pending","message":"` + strings.Repeat("x", 70*1024) + `"}`
	_ = conn.WriteMessage(websocket.TextMessage, []byte(large))
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"after","status":"pending"}`))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(50 * time.Millisecond)
}

func TestClientDropsFrameOverReadLimit(t *testing.T) {
	url := newFeedServer(t, sendLargeThenValid)

	client := NewClient(ClientConfig{URL: url, ReadLimit: 64 * 1024, Logger: logger.NewNop()})
	feed, err := client.Dial(context.Background())
	require.NoError(t, err)
	defer feed.Close()

	updates := collect(t, feed.Updates())
	require.Len(t, updates, 1)
	assert.Equal(t, "after", updates[0].ID)
	assert.NoError(t, feed.Err())

	stats := client.Stats()
	assert.Equal(t, uint64(2), stats.Frames)
	assert.Equal(t, uint64(1), stats.DecodeFailures)
}

func TestClientWithoutReadLimitAcceptsLargeFrames(t *testing.T) {
	url := newFeedServer(t, sendLargeThenValid)

	client := NewClient(ClientConfig{URL: url, Logger: logger.NewNop()})
	feed, err := client.Dial(context.Background())
	require.NoError(t, err)
	defer feed.Close()

	updates := collect(t, feed.Updates())
	require.Len(t, updates, 2)
	assert.Equal(t, "big", updates[0].ID)
	assert.Equal(t, "after", updates[1].ID)
	assert.Equal(t, uint64(0), client.Stats().DecodeFailures)
}

func TestClientReportsAbruptClose(t *testing.T) {
	url := newFeedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"t1","status":"pending"}`))
		// returning closes the TCP connection without a close frame
	})

	feed, err := NewClient(ClientConfig{URL: url, Logger: logger.NewNop()}).Dial(context.Background())
	require.NoError(t, err)

	updates := collect(t, feed.Updates())
	assert.Len(t, updates, 1)
	assert.Error(t, feed.Err())
}

func TestClientClosesOnContextCancel(t *testing.T) {
	release := make(chan struct{})
	url := newFeedServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(release)
				return
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	feed, err := NewClient(ClientConfig{URL: url, Logger: logger.NewNop()}).Dial(ctx)
	require.NoError(t, err)

	cancel()
	assert.Empty(t, collect(t, feed.Updates()))
	assert.NoError(t, feed.Err())

	select {
	case <-release:
	case <-time.After(5 * time.Second):
		t.Fatal("server never saw the close")
	}
}

func TestClientDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{URL: "ws" + strings.TrimPrefix(srv.URL, "http"), Logger: logger.NewNop()}).
		Dial(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
