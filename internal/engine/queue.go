package engine

import (
	"container/heap"

	"github.com/me/godp/pkg/model"
)

// taskQueue orders pending tasks by priority (CRITICAL first), then by
// creation time (earlier first), then by submission sequence. It has no
// locking of its own; the engine mutex covers every access.
type taskQueue struct {
	items taskHeap
}

func newTaskQueue() *taskQueue {
	return &taskQueue{}
}

// push inserts a task. O(log n).
func (q *taskQueue) push(t *model.Task) {
	heap.Push(&q.items, t)
}

// pop removes and returns the highest-ordered task, or nil when empty.
func (q *taskQueue) pop() *model.Task {
	if len(q.items) == 0 {
		return nil
	}
	return heap.Pop(&q.items).(*model.Task)
}

// len returns the number of queued tasks.
func (q *taskQueue) len() int {
	return len(q.items)
}

// taskHeap implements heap.Interface over pending tasks.
type taskHeap []*model.Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if ra, rb := a.Config.Priority.Rank(), b.Config.Priority.Rank(); ra != rb {
		return ra > rb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Seq < b.Seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*model.Task))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
