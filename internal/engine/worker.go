package engine

import (
	"fmt"
	"time"

	"github.com/me/godp/pkg/model"
)

// runWorker is one execution loop of the pool. It suspends while the queue
// is empty, drains the highest-priority task otherwise, and exits once the
// stop signal is raised and the queue is empty. Failures inside a task are
// absorbed into that task's state and never escape the loop.
func (e *Engine) runWorker(id int) {
	defer e.wg.Done()

	for {
		e.mu.Lock()
		for !e.stopping && e.queue.len() == 0 {
			e.cond.Wait()
		}
		if e.queue.len() == 0 {
			// stopping and nothing left to drain
			e.mu.Unlock()
			return
		}

		task := e.queue.pop()
		rec := e.records[task.ID]

		if task.Status == model.TaskCancelled {
			// Cancelled while queued: skip-on-dequeue. The cancel call
			// already stamped EndedAt and archived the record.
			e.mu.Unlock()
			e.logger.Debug("skipping cancelled task", "task_id", task.ID, "worker", id)
			continue
		}

		now := time.Now().UTC()
		task.Status = model.TaskRunning
		task.StartedAt = &now
		e.running++
		e.mu.Unlock()

		e.logger.Debug("task running", "task_id", task.ID, "worker", id)
		res := e.executeTask(rec)

		e.mu.Lock()
		e.running--
		if task.Status == model.TaskCancelled {
			// Cancelled mid-run. The terminal status and end time are
			// already set; the late result is discarded.
			e.mu.Unlock()
			e.logger.Debug("task finished after cancellation", "task_id", task.ID)
			continue
		}

		ended := time.Now().UTC()
		task.EndedAt = &ended
		task.Result = res
		if res.Status == model.ResultSuccess {
			task.Status = model.TaskCompleted
		} else {
			task.Status = model.TaskFailed
			task.ErrorMessage = res.Message
		}
		snap := task.Snapshot()
		e.mu.Unlock()

		e.logger.Info("task finished",
			"task_id", task.ID,
			"status", snap.Status,
			"worker", id,
			"duration", ended.Sub(now).String(),
		)
		e.archive(&snap)
	}
}

// executeTask applies parameters, initializes the algorithm, and runs it
// against the dataset. Every failure mode, including a panicking algorithm,
// is converted into a FAILURE result.
func (e *Engine) executeTask(rec *record) (res model.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("algorithm panicked", "task_id", rec.task.ID, "panic", r)
			res = model.FailureResult(fmt.Sprintf("algorithm panicked: %v", r))
		}
	}()

	for key, value := range rec.task.Config.Parameters {
		rec.alg.SetParameter(key, value)
	}

	if !rec.alg.Initialize() {
		return model.FailureResult("Algorithm initialization failed")
	}

	return rec.alg.Execute(rec.ds)
}
