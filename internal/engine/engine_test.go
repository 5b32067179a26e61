package engine

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/me/godp/internal/algorithm"
	"github.com/me/godp/internal/dataset"
	"github.com/me/godp/internal/logging"
	"github.com/me/godp/pkg/model"
)

// stubAlg is a controllable algorithm for engine tests.
type stubAlg struct {
	algorithm.Base
	initOK   bool
	onInit   func(*stubAlg)
	run      func() model.Result
	executed atomic.Bool
}

func newStubAlg(run func() model.Result) *stubAlg {
	return &stubAlg{
		Base:   algorithm.NewBase("stub", "test algorithm", model.KindNumeric),
		initOK: true,
		run:    run,
	}
}

func (a *stubAlg) Initialize() bool {
	if a.onInit != nil {
		a.onInit(a)
	}
	return a.initOK
}

func (a *stubAlg) Execute(_ dataset.Dataset) model.Result {
	a.executed.Store(true)
	if a.run != nil {
		return a.run()
	}
	return model.SuccessResult("ok")
}

func okAlg() *stubAlg {
	return newStubAlg(nil)
}

// gatedAlg blocks inside Execute until release is closed.
func gatedAlg(release <-chan struct{}) *stubAlg {
	return newStubAlg(func() model.Result {
		<-release
		return model.SuccessResult("ok")
	})
}

func testDS(values ...float64) *dataset.Numeric {
	d := dataset.NewNumeric()
	d.SetValues(values)
	return d
}

func newTestEngine(t *testing.T, workers int) *Engine {
	t.Helper()
	e := New(Options{Workers: workers, Logger: logging.Discard()})
	t.Cleanup(e.Shutdown)
	return e
}

func waitStatus(t *testing.T, e *Engine, id string, want model.TaskStatus) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		got, err := e.Status(id)
		if err != nil {
			t.Fatalf("Status(%s): %v", id, err)
		}
		if got == want {
			return
		}
		if got.IsTerminal() {
			t.Fatalf("task %s reached terminal %s while waiting for %s", id, got, want)
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("task %s never reached %s", id, want)
}

func TestSubmitReturnsBeforeTerminal(t *testing.T) {
	e := newTestEngine(t, 1)
	release := make(chan struct{})

	for _, async := range []bool{false, true} {
		cfg := model.DefaultTaskConfig()
		cfg.Async = async

		id, err := e.Submit("tester", cfg, testDS(1), gatedAlg(release))
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}

		status, err := e.Status(id)
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if status.IsTerminal() {
			t.Fatalf("task %s terminal immediately after Submit (async=%v)", id, async)
		}

		res, err := e.Result(id)
		if err != nil {
			t.Fatalf("Result: %v", err)
		}
		if res.Status != model.ResultPending {
			t.Errorf("pre-terminal Result.Status = %s, want PENDING", res.Status)
		}
	}
	close(release)
}

func TestDequeueOrder(t *testing.T) {
	e := newTestEngine(t, 1)

	blockerGate := make(chan struct{})
	blocker, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), gatedAlg(blockerGate))
	if err != nil {
		t.Fatalf("Submit blocker: %v", err)
	}
	waitStatus(t, e, blocker, model.TaskRunning)

	var mu sync.Mutex
	var order []string
	traced := func(name string) *stubAlg {
		return newStubAlg(func() model.Result {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return model.SuccessResult("ok")
		})
	}

	submit := func(name string, p model.Priority) string {
		cfg := model.DefaultTaskConfig()
		cfg.Name = name
		cfg.Priority = p
		id, err := e.Submit("tester", cfg, testDS(1), traced(name))
		if err != nil {
			t.Fatalf("Submit %s: %v", name, err)
		}
		// Distinct creation times keep the FIFO tie-break observable.
		time.Sleep(2 * time.Millisecond)
		return id
	}

	submit("A", model.PriorityLow)
	submit("B", model.PriorityHigh)
	lastID := submit("C", model.PriorityHigh)

	close(blockerGate)
	waitStatus(t, e, lastID, model.TaskCompleted)

	mu.Lock()
	defer mu.Unlock()
	want := []string{"B", "C", "A"}
	if len(order) != len(want) {
		t.Fatalf("execution order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("execution order = %v, want %v", order, want)
		}
	}
}

func TestUnknownTaskID(t *testing.T) {
	e := newTestEngine(t, 1)

	if _, err := e.Status("TASK_missing"); !model.IsNotFound(err) {
		t.Errorf("Status error = %v, want NOT_FOUND", err)
	}
	if _, err := e.Result("TASK_missing"); !model.IsNotFound(err) {
		t.Errorf("Result error = %v, want NOT_FOUND", err)
	}
	if _, err := e.Cancel("TASK_missing"); !model.IsNotFound(err) {
		t.Errorf("Cancel error = %v, want NOT_FOUND", err)
	}
	if _, err := e.Task("TASK_missing"); !model.IsNotFound(err) {
		t.Errorf("Task error = %v, want NOT_FOUND", err)
	}
}

func TestInitializationFailure(t *testing.T) {
	e := newTestEngine(t, 1)

	alg := okAlg()
	alg.initOK = false

	id, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), alg)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitStatus(t, e, id, model.TaskFailed)

	task, err := e.Task(id)
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if task.ErrorMessage != "Algorithm initialization failed" {
		t.Errorf("ErrorMessage = %q, want %q", task.ErrorMessage, "Algorithm initialization failed")
	}
	if alg.executed.Load() {
		t.Error("Execute was called after Initialize returned false")
	}
}

func TestParametersAppliedBeforeInitialize(t *testing.T) {
	e := newTestEngine(t, 1)

	alg := okAlg()
	seen := make(chan string, 1)
	alg.onInit = func(a *stubAlg) { seen <- a.GetParameter("k") }

	cfg := model.DefaultTaskConfig()
	cfg.Parameters = map[string]string{"k": "5"}

	id, err := e.Submit("tester", cfg, testDS(1), alg)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitStatus(t, e, id, model.TaskCompleted)

	if got := <-seen; got != "5" {
		t.Errorf("parameter k at Initialize = %q, want 5", got)
	}
}

func TestTypeMismatchFails(t *testing.T) {
	e := newTestEngine(t, 1)

	text := dataset.NewText()
	text.SetLines([]string{"some words"})

	id, err := e.Submit("tester", model.DefaultTaskConfig(), text, algorithm.NewStatistical())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitStatus(t, e, id, model.TaskFailed)

	task, _ := e.Task(id)
	if task.Result.Status != model.ResultFailure {
		t.Errorf("Result.Status = %s, want FAILURE", task.Result.Status)
	}
	if want := "type mismatch"; task.ErrorMessage == "" || !strings.Contains(task.ErrorMessage, want) {
		t.Errorf("ErrorMessage = %q, want it to mention %q", task.ErrorMessage, want)
	}
}

func TestConcurrencyCappedByPoolSize(t *testing.T) {
	const workers = 2
	e := newTestEngine(t, workers)

	var running, peak atomic.Int32
	release := make(chan struct{})

	var ids []string
	for i := 0; i < 6; i++ {
		alg := newStubAlg(func() model.Result {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			<-release
			running.Add(-1)
			return model.SuccessResult("ok")
		})
		id, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), alg)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		ids = append(ids, id)
	}

	// Let both workers pick up tasks before releasing anything.
	deadline := time.Now().Add(5 * time.Second)
	for running.Load() < workers && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(release)

	for _, id := range ids {
		waitStatus(t, e, id, model.TaskCompleted)
	}
	if got := peak.Load(); got > workers {
		t.Errorf("observed %d tasks RUNNING concurrently, pool size is %d", got, workers)
	}
}

func TestStatisticalScenario(t *testing.T) {
	e := newTestEngine(t, 2)

	cfg := model.DefaultTaskConfig()
	cfg.Name = "stats over 1..5"

	id, err := e.Submit("tester", cfg, testDS(1, 2, 3, 4, 5), algorithm.NewStatistical())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitStatus(t, e, id, model.TaskCompleted)

	res, err := e.Result(id)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	for _, want := range []string{"Mean: 3\n", "Standard Deviation: 1.4142135623730951\n", "Median: 3\n"} {
		if !strings.Contains(res.Data, want) {
			t.Errorf("result missing %q:\n%s", want, res.Data)
		}
	}
}

func TestResultIdempotent(t *testing.T) {
	e := newTestEngine(t, 1)

	id, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), okAlg())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitStatus(t, e, id, model.TaskCompleted)

	first, err := e.Result(id)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	second, err := e.Result(id)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("repeated Result calls differ:\n%s\n%s", a, b)
	}
}

func TestCancelQueuedSkipsExecution(t *testing.T) {
	e := newTestEngine(t, 1)

	gate := make(chan struct{})
	blocker, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), gatedAlg(gate))
	if err != nil {
		t.Fatalf("Submit blocker: %v", err)
	}
	waitStatus(t, e, blocker, model.TaskRunning)

	victim := okAlg()
	victimID, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), victim)
	if err != nil {
		t.Fatalf("Submit victim: %v", err)
	}

	ok, err := e.Cancel(victimID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !ok {
		t.Fatal("Cancel on a QUEUED task returned false")
	}

	task, _ := e.Task(victimID)
	if task.Status != model.TaskCancelled {
		t.Fatalf("Status = %s, want CANCELLED", task.Status)
	}
	if task.EndedAt == nil {
		t.Error("cancelled task has no EndedAt")
	}

	// Drain the queue past the cancelled record.
	close(gate)
	sentinel, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), okAlg())
	if err != nil {
		t.Fatalf("Submit sentinel: %v", err)
	}
	waitStatus(t, e, sentinel, model.TaskCompleted)

	if victim.executed.Load() {
		t.Error("worker executed a task cancelled while queued")
	}
	if status, _ := e.Status(victimID); status != model.TaskCancelled {
		t.Errorf("cancelled task ended as %s", status)
	}
}

func TestCancelRunningKeepsCancelled(t *testing.T) {
	e := newTestEngine(t, 1)

	gate := make(chan struct{})
	id, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), gatedAlg(gate))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitStatus(t, e, id, model.TaskRunning)

	ok, err := e.Cancel(id)
	if err != nil || !ok {
		t.Fatalf("Cancel = (%v, %v), want (true, nil)", ok, err)
	}
	close(gate)

	// Wait for the worker to notice and move on.
	sentinel, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), okAlg())
	if err != nil {
		t.Fatalf("Submit sentinel: %v", err)
	}
	waitStatus(t, e, sentinel, model.TaskCompleted)

	if status, _ := e.Status(id); status != model.TaskCancelled {
		t.Errorf("Status = %s, want CANCELLED to survive a mid-run completion", status)
	}
}

func TestCancelTerminalReturnsFalse(t *testing.T) {
	e := newTestEngine(t, 1)

	id, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), okAlg())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitStatus(t, e, id, model.TaskCompleted)

	ok, err := e.Cancel(id)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if ok {
		t.Error("Cancel on a COMPLETED task returned true")
	}
}

func TestPanicIsolation(t *testing.T) {
	e := newTestEngine(t, 1)

	panicky := newStubAlg(func() model.Result { panic("algorithm bug") })
	id, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), panicky)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitStatus(t, e, id, model.TaskFailed)

	task, _ := e.Task(id)
	if !strings.Contains(task.ErrorMessage, "algorithm bug") {
		t.Errorf("ErrorMessage = %q, want the panic value", task.ErrorMessage)
	}

	// The pool must stay alive for subsequent tasks.
	next, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), okAlg())
	if err != nil {
		t.Fatalf("Submit after panic: %v", err)
	}
	waitStatus(t, e, next, model.TaskCompleted)
}

func TestShutdownDrainsQueue(t *testing.T) {
	e := New(Options{Workers: 2, Logger: logging.Discard()})

	var ids []string
	for i := 0; i < 8; i++ {
		id, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), okAlg())
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		ids = append(ids, id)
	}

	e.Shutdown()

	for _, id := range ids {
		status, err := e.Status(id)
		if err != nil {
			t.Fatalf("Status(%s): %v", id, err)
		}
		if status != model.TaskCompleted {
			t.Errorf("task %s status after shutdown = %s, want COMPLETED", id, status)
		}
	}

	if _, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), okAlg()); err == nil {
		t.Error("Submit after Shutdown succeeded")
	}
}

func TestTimestampOrdering(t *testing.T) {
	e := newTestEngine(t, 1)

	id, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), okAlg())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitStatus(t, e, id, model.TaskCompleted)

	task, _ := e.Task(id)
	if task.StartedAt == nil || task.EndedAt == nil {
		t.Fatal("terminal task missing StartedAt or EndedAt")
	}
	if task.StartedAt.Before(task.CreatedAt) {
		t.Errorf("StartedAt %v before CreatedAt %v", task.StartedAt, task.CreatedAt)
	}
	if task.EndedAt.Before(*task.StartedAt) {
		t.Errorf("EndedAt %v before StartedAt %v", task.EndedAt, task.StartedAt)
	}
}

// archiveRecorder collects archived task snapshots.
type archiveRecorder struct {
	mu    sync.Mutex
	tasks []model.Task
}

func (a *archiveRecorder) SaveTask(_ context.Context, task *model.Task) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tasks = append(a.tasks, *task)
	return nil
}

func TestArchiverReceivesTerminalTasks(t *testing.T) {
	rec := &archiveRecorder{}
	e := New(Options{Workers: 1, Logger: logging.Discard(), Archiver: rec})

	id, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), okAlg())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitStatus(t, e, id, model.TaskCompleted)
	e.Shutdown()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.tasks) != 1 {
		t.Fatalf("archived %d tasks, want 1", len(rec.tasks))
	}
	if rec.tasks[0].ID != id || rec.tasks[0].Status != model.TaskCompleted {
		t.Errorf("archived snapshot = %+v", rec.tasks[0])
	}
}

func TestStats(t *testing.T) {
	e := newTestEngine(t, 2)

	id, err := e.Submit("tester", model.DefaultTaskConfig(), testDS(1), okAlg())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitStatus(t, e, id, model.TaskCompleted)

	stats := e.Stats()
	if stats.Workers != 2 {
		t.Errorf("Stats.Workers = %d, want 2", stats.Workers)
	}
	if stats.Completed != 1 {
		t.Errorf("Stats.Completed = %d, want 1", stats.Completed)
	}
}
