package services

import (
	"strings"
	"sync"

	"github.com/distritask/dashboard/internal/domain"
)

const DefaultViewCapacity = 12

// NodeBucket is the ordered slice of the view owned by one node.
type NodeBucket struct {
	Node  string
	Tasks []domain.TaskUpdate
}

// LiveView holds the most recently first-seen task updates, newest first.
// A single goroutine applies updates; any number may read. Every apply
// swaps in a fresh slice, so a snapshot handed out is never mutated.
type LiveView struct {
	mu            sync.RWMutex
	tasks         []domain.TaskUpdate
	capacity      int
	defaultWorker string
}

func NewLiveView(capacity int, defaultWorker string) *LiveView {
	if capacity <= 0 {
		capacity = DefaultViewCapacity
	}
	if defaultWorker == "" {
		defaultWorker = domain.DefaultWorker
	}
	return &LiveView{
		tasks:         []domain.TaskUpdate{},
		capacity:      capacity,
		defaultWorker: defaultWorker,
	}
}

// ApplyUpdate merges one update into the view and returns a copy of the new
// state. A known id is overwritten in place; an unseen id goes to the front
// and the oldest first-seen entries fall off the tail.
func (v *LiveView) ApplyUpdate(update domain.TaskUpdate) []domain.TaskUpdate {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.tasks {
		if v.tasks[i].ID == update.ID {
			next := make([]domain.TaskUpdate, len(v.tasks))
			copy(next, v.tasks)
			next[i] = update
			v.tasks = next
			return cloneTasks(next)
		}
	}

	size := len(v.tasks) + 1
	if size > v.capacity {
		size = v.capacity
	}
	next := make([]domain.TaskUpdate, 0, size)
	next = append(next, update)
	next = append(next, v.tasks[:size-1]...)
	v.tasks = next
	return cloneTasks(next)
}

// Snapshot returns a copy of the current collection, newest first-seen first.
func (v *LiveView) Snapshot() []domain.TaskUpdate {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneTasks(v.tasks)
}

func cloneTasks(tasks []domain.TaskUpdate) []domain.TaskUpdate {
	out := make([]domain.TaskUpdate, len(tasks))
	copy(out, tasks)
	return out
}

// TasksForWorker returns the updates owned by workerID, compared without case,
// in view order.
func (v *LiveView) TasksForWorker(workerID string) []domain.TaskUpdate {
	tasks := v.Snapshot()
	out := make([]domain.TaskUpdate, 0, len(tasks))
	for _, t := range tasks {
		if t.OwnedBy(workerID, v.defaultWorker) {
			out = append(out, t)
		}
	}
	return out
}

// Partition splits one snapshot into a bucket per node, in the order given.
// Updates owned by a node outside the list are returned as unassigned.
func (v *LiveView) Partition(nodes []string) (buckets []NodeBucket, unassigned []domain.TaskUpdate) {
	tasks := v.Snapshot()

	index := make(map[string]int, len(nodes))
	buckets = make([]NodeBucket, 0, len(nodes))
	for _, n := range nodes {
		key := strings.ToLower(strings.TrimSpace(n))
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = len(buckets)
		buckets = append(buckets, NodeBucket{Node: n, Tasks: []domain.TaskUpdate{}})
	}

	for _, t := range tasks {
		i, ok := index[strings.ToLower(t.Owner(v.defaultWorker))]
		if !ok {
			unassigned = append(unassigned, t)
			continue
		}
		buckets[i].Tasks = append(buckets[i].Tasks, t)
	}
	return buckets, unassigned
}

func (v *LiveView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.tasks)
}

func (v *LiveView) Capacity() int {
	return v.capacity
}

func (v *LiveView) DefaultWorker() string {
	return v.defaultWorker
}
