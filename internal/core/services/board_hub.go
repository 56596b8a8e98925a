package services

import (
	"encoding/json"
	"sync"

	"github.com/distritask/dashboard/internal/infrastructure/logger"
)

const subscriberBuffer = 16

type BoardMessage struct {
	Type    string         `json:"type"`
	Board   *BoardSnapshot `json:"board,omitempty"`
	Level   string         `json:"level,omitempty"`
	Message string         `json:"message,omitempty"`
}

// BoardHub fans board snapshots and notices out to browser subscribers.
// A subscriber that cannot keep up misses frames instead of blocking the feed.
type BoardHub struct {
	board  *BoardService
	logger *logger.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan []byte
}

func NewBoardHub(board *BoardService, log *logger.Logger) *BoardHub {
	return &BoardHub{
		board:  board,
		logger: log,
		subs:   make(map[uint64]chan []byte),
	}
}

// Subscribe registers a subscriber. The current board is queued immediately.
// The returned cancel func must be called once the subscriber goes away.
func (h *BoardHub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	if frame, err := h.encodeBoard(); err == nil {
		ch <- frame
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	h.logger.Debugw("board_hub_subscribe", "subscriber", id)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
			h.logger.Debugw("board_hub_unsubscribe", "subscriber", id)
		})
	}
}

func (h *BoardHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *BoardHub) PublishBoard() {
	frame, err := h.encodeBoard()
	if err != nil {
		h.logger.Errorw("board_hub_encode_failed", "error", err)
		return
	}
	h.broadcast(frame)
}

func (h *BoardHub) PublishNotice(level, message string) {
	frame, err := json.Marshal(BoardMessage{Type: "notice", Level: level, Message: message})
	if err != nil {
		h.logger.Errorw("board_hub_encode_failed", "error", err)
		return
	}
	h.broadcast(frame)
}

func (h *BoardHub) encodeBoard() ([]byte, error) {
	snap := h.board.Snapshot()
	return json.Marshal(BoardMessage{Type: "board", Board: &snap})
}

func (h *BoardHub) broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- frame:
		default:
			h.logger.Warnw("board_hub_subscriber_lagging", "subscriber", id)
		}
	}
}
