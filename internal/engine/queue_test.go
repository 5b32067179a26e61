package engine

import (
	"testing"
	"time"

	"github.com/me/godp/pkg/model"
)

func queuedTask(id string, priority model.Priority, createdAt time.Time, seq uint64) *model.Task {
	return &model.Task{
		ID:        id,
		Config:    model.TaskConfig{Priority: priority},
		Status:    model.TaskQueued,
		CreatedAt: createdAt,
		Seq:       seq,
	}
}

func TestQueuePriorityOrder(t *testing.T) {
	t0 := time.Now().UTC()
	q := newTaskQueue()

	// A(LOW, t0), B(HIGH, t1), C(HIGH, t2) must dequeue as B, C, A.
	q.push(queuedTask("A", model.PriorityLow, t0, 1))
	q.push(queuedTask("B", model.PriorityHigh, t0.Add(time.Millisecond), 2))
	q.push(queuedTask("C", model.PriorityHigh, t0.Add(2*time.Millisecond), 3))

	var order []string
	for q.len() > 0 {
		order = append(order, q.pop().ID)
	}
	want := []string{"B", "C", "A"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("dequeue order = %v, want %v", order, want)
		}
	}
}

func TestQueueFIFOWithinPriorityBand(t *testing.T) {
	t0 := time.Now().UTC()
	q := newTaskQueue()

	for i, id := range []string{"first", "second", "third"} {
		q.push(queuedTask(id, model.PriorityCritical, t0.Add(time.Duration(i)*time.Microsecond), uint64(i)))
	}

	for _, want := range []string{"first", "second", "third"} {
		if got := q.pop().ID; got != want {
			t.Fatalf("pop = %s, want %s", got, want)
		}
	}
}

func TestQueueSeqBreaksCreatedAtTies(t *testing.T) {
	t0 := time.Now().UTC()
	q := newTaskQueue()

	q.push(queuedTask("later", model.PriorityMedium, t0, 9))
	q.push(queuedTask("earlier", model.PriorityMedium, t0, 4))

	if got := q.pop().ID; got != "earlier" {
		t.Fatalf("pop = %s, want earlier (lower sequence wins a timestamp tie)", got)
	}
}

func TestQueuePopEmpty(t *testing.T) {
	q := newTaskQueue()
	if got := q.pop(); got != nil {
		t.Fatalf("pop on empty queue = %v, want nil", got)
	}
}

func TestQueueAllPriorityBands(t *testing.T) {
	t0 := time.Now().UTC()
	q := newTaskQueue()

	q.push(queuedTask("med", model.PriorityMedium, t0, 1))
	q.push(queuedTask("low", model.PriorityLow, t0, 2))
	q.push(queuedTask("crit", model.PriorityCritical, t0, 3))
	q.push(queuedTask("high", model.PriorityHigh, t0, 4))

	for _, want := range []string{"crit", "high", "med", "low"} {
		if got := q.pop().ID; got != want {
			t.Fatalf("pop = %s, want %s", got, want)
		}
	}
}
