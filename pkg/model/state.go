package model

// TaskStatus represents the lifecycle state of a Task.
type TaskStatus string

const (
	TaskCreated   TaskStatus = "CREATED"
	TaskQueued    TaskStatus = "QUEUED"
	TaskRunning   TaskStatus = "RUNNING"
	TaskCompleted TaskStatus = "COMPLETED"
	TaskFailed    TaskStatus = "FAILED"
	TaskCancelled TaskStatus = "CANCELLED"
)

// String returns the string representation of the task status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the task is in a final state.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskCompleted, TaskFailed, TaskCancelled:
		return true
	}
	return false
}

// ValidTaskTransitions defines the allowed state transitions for Tasks.
// CANCELLED is reachable only from QUEUED or RUNNING; no terminal state
// transitions anywhere.
var ValidTaskTransitions = map[TaskStatus][]TaskStatus{
	TaskCreated: {TaskQueued},
	TaskQueued:  {TaskRunning, TaskCancelled},
	TaskRunning: {TaskCompleted, TaskFailed, TaskCancelled},
}

// CanTransitionTo returns true if moving from the current status to next is valid.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range ValidTaskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Priority orders queued tasks: CRITICAL > HIGH > MEDIUM > LOW.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// Rank returns the numeric ordering key for a priority. Higher rank is
// dequeued first. Unknown values rank as MEDIUM.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	}
	return 1
}

// ParsePriority converts a string to a Priority, case-insensitively.
// Empty or unrecognized input falls back to MEDIUM.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return Priority(s)
	}
	switch s {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	case "critical":
		return PriorityCritical
	}
	return PriorityMedium
}

// DataKind tags the concrete shape of a dataset. Algorithms declare the
// kinds they support and refuse mismatched datasets with a typed failure
// instead of a downcast.
type DataKind string

const (
	KindNumeric DataKind = "NUMERIC"
	KindText    DataKind = "TEXT"
)

// String returns the string representation of the data kind.
func (k DataKind) String() string {
	return string(k)
}
