package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/distritask/dashboard/internal/domain"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(nodes ...string) (*MonitorService, *BoardService) {
	m := NewMonitorService(MonitorServiceConfig{Logger: logger.NewNop(), Capacity: 12, DefaultWorker: "manager"})
	return m, NewBoardService(m, nodes)
}

func readMessage(t *testing.T, ch <-chan []byte) BoardMessage {
	t.Helper()
	select {
	case frame := <-ch:
		var msg BoardMessage
		require.NoError(t, json.Unmarshal(frame, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no frame")
		return BoardMessage{}
	}
}

func TestBoardService_Snapshot(t *testing.T) {
	m, board := newTestBoard("manager", "worker-1", "worker-2", "worker-3")
	m.View().ApplyUpdate(domain.TaskUpdate{ID: "t-000001", Status: "pending"})
	m.View().ApplyUpdate(domain.TaskUpdate{ID: "t-000002", Status: "processing", Worker: "WORKER-1"})
	m.View().ApplyUpdate(domain.TaskUpdate{ID: "t-000003", Status: "completed", Worker: "worker-9"})

	snap := board.Snapshot()
	assert.False(t, snap.Connected)
	assert.Equal(t, 12, snap.Capacity)
	assert.Equal(t, 3, snap.Total)
	require.Len(t, snap.Nodes, 4)
	assert.Equal(t, 1, snap.Nodes[0].Count)
	assert.Equal(t, 15, snap.Nodes[0].Tasks[0].Progress)
	assert.Equal(t, 65, snap.Nodes[1].Tasks[0].Progress)
	assert.Equal(t, 0, snap.Nodes[3].Count)
	assert.NotNil(t, snap.Nodes[3].Tasks)
	require.Len(t, snap.Unassigned, 1)
	assert.Equal(t, "t-0000", snap.Unassigned[0].ShortID)

	node, ok := board.Node("Worker-1")
	require.True(t, ok)
	assert.Equal(t, "worker-1", node.ID)
	assert.Equal(t, 1, node.Count)

	_, ok = board.Node("worker-9")
	assert.False(t, ok)
}

func TestBoardHub_SubscribeGetsCurrentBoard(t *testing.T) {
	m, board := newTestBoard("manager")
	m.View().ApplyUpdate(domain.TaskUpdate{ID: "a", Status: "pending"})
	hub := NewBoardHub(board, logger.NewNop())

	ch, cancel := hub.Subscribe()
	defer cancel()

	msg := readMessage(t, ch)
	assert.Equal(t, "board", msg.Type)
	require.NotNil(t, msg.Board)
	assert.Equal(t, 1, msg.Board.Total)
}

func TestBoardHub_PublishFansOut(t *testing.T) {
	m, board := newTestBoard("manager")
	hub := NewBoardHub(board, logger.NewNop())

	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	defer cancelB()
	readMessage(t, a)
	readMessage(t, b)
	assert.Equal(t, 2, hub.Subscribers())

	m.View().ApplyUpdate(domain.TaskUpdate{ID: "x", Status: "completed"})
	hub.PublishBoard()
	hub.PublishNotice("error", "Failed to submit task")

	for _, ch := range []<-chan []byte{a, b} {
		msg := readMessage(t, ch)
		assert.Equal(t, 1, msg.Board.Total)
		notice := readMessage(t, ch)
		assert.Equal(t, "notice", notice.Type)
		assert.Equal(t, "error", notice.Level)
	}

	cancelA()
	cancelA()
	assert.Equal(t, 1, hub.Subscribers())
	_, open := <-a
	assert.False(t, open)
}

func TestBoardHub_LaggingSubscriberDoesNotBlock(t *testing.T) {
	_, board := newTestBoard("manager")
	hub := NewBoardHub(board, logger.NewNop())
	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			hub.PublishBoard()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}
