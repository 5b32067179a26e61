package model

import (
	"time"
)

// TaskConfig holds caller-supplied configuration for one task submission.
type TaskConfig struct {
	// Name is a human-readable label with no behavioral effect.
	Name string `json:"name"`

	// Priority decides dequeue order (CRITICAL > HIGH > MEDIUM > LOW).
	Priority Priority `json:"priority"`

	// Async is informational only: submission never blocks regardless of
	// its value, and callers always poll for completion.
	Async bool `json:"async"`

	// Timeout is stored and reported but not enforced by the engine.
	Timeout time.Duration `json:"timeout"`

	// Parameters are forwarded verbatim to the algorithm before it is
	// initialized.
	Parameters map[string]string `json:"parameters,omitempty"`
}

// DefaultTaskConfig returns a config with MEDIUM priority and a five minute
// stored timeout.
func DefaultTaskConfig() TaskConfig {
	return TaskConfig{
		Priority: PriorityMedium,
		Timeout:  5 * time.Minute,
	}
}

// Task is one request to run an algorithm against a dataset, tracked through
// its lifecycle to a terminal outcome. Tasks are mutated only by the engine
// that owns them; API callers receive snapshots.
type Task struct {
	ID          string     `json:"id"`
	SubmitterID string     `json:"submitter_id"`
	Config      TaskConfig `json:"config"`
	Status      TaskStatus `json:"status"`
	Result      Result     `json:"result"`

	// ErrorMessage is set only when the task fails.
	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	// Seq is the submission sequence number, used as the final ordering
	// tie-break inside a priority band.
	Seq uint64 `json:"-"`
}

// Snapshot returns a copy of the task safe to hand out across the engine
// boundary. Parameter maps are copied so callers cannot mutate engine state.
func (t *Task) Snapshot() Task {
	c := *t
	if t.Config.Parameters != nil {
		params := make(map[string]string, len(t.Config.Parameters))
		for k, v := range t.Config.Parameters {
			params[k] = v
		}
		c.Config.Parameters = params
	}
	if t.StartedAt != nil {
		started := *t.StartedAt
		c.StartedAt = &started
	}
	if t.EndedAt != nil {
		ended := *t.EndedAt
		c.EndedAt = &ended
	}
	return c
}
