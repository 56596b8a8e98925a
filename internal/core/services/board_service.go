package services

import (
	"strings"

	"github.com/distritask/dashboard/internal/domain"
)

type NodeView struct {
	ID    string            `json:"id"`
	Count int               `json:"count"`
	Tasks []domain.TaskCard `json:"tasks"`
}

type BoardSnapshot struct {
	Connected  bool              `json:"connected"`
	Capacity   int               `json:"capacity"`
	Total      int               `json:"total"`
	Nodes      []NodeView        `json:"nodes"`
	Unassigned []domain.TaskCard `json:"unassigned,omitempty"`
}

// BoardService projects the monitor's live view onto the configured nodes.
type BoardService struct {
	monitor *MonitorService
	nodes   []string
}

func NewBoardService(monitor *MonitorService, nodes []string) *BoardService {
	return &BoardService{monitor: monitor, nodes: nodes}
}

func (b *BoardService) Nodes() []string {
	return b.nodes
}

func (b *BoardService) Snapshot() BoardSnapshot {
	view := b.monitor.View()
	buckets, unassigned := view.Partition(b.nodes)

	snap := BoardSnapshot{
		Connected: b.monitor.Connected(),
		Capacity:  view.Capacity(),
		Nodes:     make([]NodeView, len(buckets)),
	}
	for i, bucket := range buckets {
		snap.Nodes[i] = NodeView{
			ID:    bucket.Node,
			Count: len(bucket.Tasks),
			Tasks: domain.NewTaskCards(bucket.Tasks),
		}
		snap.Total += len(bucket.Tasks)
	}
	if len(unassigned) > 0 {
		snap.Unassigned = domain.NewTaskCards(unassigned)
		snap.Total += len(unassigned)
	}
	return snap
}

// Node returns the view of one configured node. ok is false for unknown nodes.
func (b *BoardService) Node(id string) (NodeView, bool) {
	for _, n := range b.nodes {
		if strings.EqualFold(n, strings.TrimSpace(id)) {
			tasks := b.monitor.View().TasksForWorker(n)
			return NodeView{ID: n, Count: len(tasks), Tasks: domain.NewTaskCards(tasks)}, true
		}
	}
	return NodeView{}, false
}
