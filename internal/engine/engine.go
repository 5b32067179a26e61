// Package engine implements the GoDP task engine: a thread-safe task
// registry, a priority-ordered queue of pending work, and a fixed pool of
// workers that drain it.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/me/godp/internal/algorithm"
	"github.com/me/godp/internal/dataset"
	"github.com/me/godp/pkg/model"
)

// Archiver receives terminal task snapshots for history storage. The engine
// never reads archived tasks back; the queue is not persistent.
type Archiver interface {
	SaveTask(ctx context.Context, task *model.Task) error
}

// Options configures a new Engine.
type Options struct {
	// Workers is the pool size. Defaults to the available parallelism.
	Workers int

	// Logger receives engine events. Defaults to slog.Default().
	Logger *slog.Logger

	// Archiver, when set, receives every task that reaches a terminal
	// state.
	Archiver Archiver
}

// record binds a task to the dataset and algorithm it runs. The dataset is
// shared and read-only; the algorithm instance is owned exclusively by this
// task.
type record struct {
	task *model.Task
	ds   dataset.Dataset
	alg  algorithm.Algorithm
}

// Engine is the submit/query/cancel surface plus the worker pool. One coarse
// mutex protects both the queue and the id→record map; workers suspend on
// the condition variable while the queue is empty.
type Engine struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   *taskQueue
	records map[string]*record

	stopping bool
	running  int

	workers  int
	wg       sync.WaitGroup
	logger   *slog.Logger
	archiver Archiver
}

var taskSeq atomic.Uint64

// generateTaskID builds a unique task id from the current time and a
// process-wide monotonic counter.
func generateTaskID() (string, uint64) {
	seq := taskSeq.Add(1)
	return fmt.Sprintf("TASK_%x_%d", time.Now().UnixNano(), seq), seq
}

// New creates an Engine and starts its worker pool.
func New(opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &Engine{
		queue:    newTaskQueue(),
		records:  make(map[string]*record),
		workers:  opts.Workers,
		logger:   opts.Logger.With("component", "engine"),
		archiver: opts.Archiver,
	}
	e.cond = sync.NewCond(&e.mu)

	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.runWorker(i)
	}
	e.logger.Info("engine started", "workers", e.workers)
	return e
}

// Submit creates a task record, inserts it into the registry and the queue
// in one critical section, and returns its id. It never waits for
// execution, regardless of the config's Async hint.
func (e *Engine) Submit(submitterID string, cfg model.TaskConfig, ds dataset.Dataset, alg algorithm.Algorithm) (string, error) {
	if ds == nil {
		return "", model.NewValidationError("submit: dataset is required")
	}
	if alg == nil {
		return "", model.NewValidationError("submit: algorithm is required")
	}
	if cfg.Priority == "" {
		cfg.Priority = model.PriorityMedium
	}

	id, seq := generateTaskID()
	task := &model.Task{
		ID:          id,
		SubmitterID: submitterID,
		Config:      cfg,
		Status:      model.TaskCreated,
		Result:      model.PendingResult(),
		CreatedAt:   time.Now().UTC(),
		Seq:         seq,
	}

	e.mu.Lock()
	if e.stopping {
		e.mu.Unlock()
		return "", &model.APIError{Code: model.ErrShutdown, Message: "engine is shutting down"}
	}
	task.Status = model.TaskQueued
	e.records[id] = &record{task: task, ds: ds, alg: alg}
	e.queue.push(task)
	e.mu.Unlock()

	e.cond.Signal()
	e.logger.Debug("task submitted",
		"task_id", id,
		"submitter", submitterID,
		"name", cfg.Name,
		"priority", cfg.Priority,
	)
	return id, nil
}

// Status returns the current lifecycle status of a task.
func (e *Engine) Status(id string) (model.TaskStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[id]
	if !ok {
		return "", model.NewNotFoundError("task", id)
	}
	return rec.task.Status, nil
}

// Result returns the task's current result. Before the task reaches a
// terminal state this is the PENDING default; Result never waits for
// completion.
func (e *Engine) Result(id string) (model.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[id]
	if !ok {
		return model.Result{}, model.NewNotFoundError("task", id)
	}
	return rec.task.Result, nil
}

// Task returns a snapshot of the full task record.
func (e *Engine) Task(id string) (model.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[id]
	if !ok {
		return model.Task{}, model.NewNotFoundError("task", id)
	}
	return rec.task.Snapshot(), nil
}

// Cancel marks a QUEUED or RUNNING task CANCELLED and stamps its end time,
// returning true. Any other status returns false. A task cancelled while
// queued stays in the queue; the worker that eventually dequeues it observes
// the terminal status and skips execution.
func (e *Engine) Cancel(id string) (bool, error) {
	e.mu.Lock()
	rec, ok := e.records[id]
	if !ok {
		e.mu.Unlock()
		return false, model.NewNotFoundError("task", id)
	}

	task := rec.task
	if task.Status != model.TaskQueued && task.Status != model.TaskRunning {
		e.mu.Unlock()
		return false, nil
	}

	now := time.Now().UTC()
	task.Status = model.TaskCancelled
	task.EndedAt = &now
	snap := task.Snapshot()
	e.mu.Unlock()

	e.logger.Info("task cancelled", "task_id", id)
	e.archive(&snap)
	return true, nil
}

// Stats reports a point-in-time view of engine load.
func (e *Engine) Stats() model.EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := model.EngineStats{Workers: e.workers, Running: e.running}
	for _, rec := range e.records {
		switch rec.task.Status {
		case model.TaskQueued:
			stats.Queued++
		case model.TaskCompleted:
			stats.Completed++
		case model.TaskFailed:
			stats.Failed++
		case model.TaskCancelled:
			stats.Cancelled++
		}
	}
	return stats
}

// Shutdown raises the stop signal, wakes every worker, and waits for the
// pool to exit. Workers finish the task they are executing and keep
// draining the queue until it is empty; tasks cancelled or still queued
// when the pool drains are left in whatever status they hold.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.stopping {
		e.mu.Unlock()
		e.wg.Wait()
		return
	}
	e.stopping = true
	e.mu.Unlock()

	e.cond.Broadcast()
	e.wg.Wait()
	e.logger.Info("engine stopped")
}

// archive hands a terminal task snapshot to the configured archiver.
func (e *Engine) archive(task *model.Task) {
	if e.archiver == nil {
		return
	}
	if err := e.archiver.SaveTask(context.Background(), task); err != nil {
		e.logger.Error("archive task", "task_id", task.ID, "error", err)
	}
}
