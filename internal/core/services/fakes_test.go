package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/distritask/dashboard/internal/core/ports"
	"github.com/distritask/dashboard/internal/domain"
)

type fakeFeed struct {
	updates chan domain.TaskUpdate
	err     error
	once    sync.Once
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{updates: make(chan domain.TaskUpdate)}
}

func (f *fakeFeed) Updates() <-chan domain.TaskUpdate { return f.updates }
func (f *fakeFeed) Err() error                       { return f.err }
func (f *fakeFeed) Close() error                     { return nil }

func (f *fakeFeed) end(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.updates)
	})
}

// fakeStream hands out the queued feeds in order, then fails to dial.
type fakeStream struct {
	mu    sync.Mutex
	feeds []*fakeFeed
	dials int
}

func (s *fakeStream) Dial(ctx context.Context) (ports.UpdateFeed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dials++
	if len(s.feeds) == 0 {
		return nil, errors.New("connection refused")
	}
	f := s.feeds[0]
	s.feeds = s.feeds[1:]
	return f, nil
}

func (s *fakeStream) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

type fakeIntake struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	err     error
}

func (i *fakeIntake) Submit(ctx context.Context) (*ports.SubmitResult, error) {
	i.mu.Lock()
	i.calls++
	i.mu.Unlock()
	if i.release != nil {
		select {
		case <-i.release:
		case <-time.After(5 * time.Second):
		}
	}
	if i.err != nil {
		return nil, i.err
	}
	return &ports.SubmitResult{ID: "new-task", Message: "Task enqueued successfully!"}, nil
}

func (i *fakeIntake) Calls() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.calls
}

type staticConnectivity bool

func (c staticConnectivity) Connected() bool { return bool(c) }

type recordingPublisher struct {
	mu      sync.Mutex
	boards  int
	notices []string
}

func (p *recordingPublisher) PublishBoard() {
	p.mu.Lock()
	p.boards++
	p.mu.Unlock()
}

func (p *recordingPublisher) PublishNotice(level, message string) {
	p.mu.Lock()
	p.notices = append(p.notices, level+": "+message)
	p.mu.Unlock()
}

func (p *recordingPublisher) Notices() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.notices...)
}

type memoryTimelineRepo struct {
	mu      sync.Mutex
	events  []domain.TimelineEvent
	cleaned int
	fail    error
}

func (r *memoryTimelineRepo) Create(ctx context.Context, event *domain.TimelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	event.ID = uint(len(r.events) + 1)
	r.events = append(r.events, *event)
	return nil
}

func (r *memoryTimelineRepo) GetAll(ctx context.Context, limit int) ([]domain.TimelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TimelineEvent
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}

func (r *memoryTimelineRepo) GetByTask(ctx context.Context, taskID string, limit int) ([]domain.TimelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TimelineEvent
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if r.events[i].TaskID == taskID {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}

func (r *memoryTimelineRepo) CleanupOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleaned++
	return 0, nil
}

func (r *memoryTimelineRepo) Events() []domain.TimelineEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TimelineEvent(nil), r.events...)
}
