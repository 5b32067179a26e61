package model

import "time"

// Response is the standard JSON envelope returned by the GoDP API.
type Response struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

// SubmitRequest is the POST /tasks payload.
type SubmitRequest struct {
	Submitter string            `json:"submitter"`
	Name      string            `json:"name"`
	Priority  string            `json:"priority"`
	Async     bool              `json:"async"`
	Timeout   string            `json:"timeout,omitempty"` // Go duration string, e.g. "5m"
	Params    map[string]string `json:"parameters,omitempty"`
	Dataset   DatasetSpec       `json:"dataset"`
	Algorithm AlgorithmSpec     `json:"algorithm"`
}

// DatasetSpec names a registered dataset type and its source location.
type DatasetSpec struct {
	Type       string `json:"type"`
	Source     string `json:"source"`
	Preprocess bool   `json:"preprocess"`
}

// AlgorithmSpec names a registered algorithm type.
type AlgorithmSpec struct {
	Type string `json:"type"`
}

// SubmitResponse carries the id of a newly created task.
type SubmitResponse struct {
	TaskID string `json:"task_id"`
}

// StatusResponse carries the current lifecycle status of a task.
type StatusResponse struct {
	TaskID string     `json:"task_id"`
	Status TaskStatus `json:"status"`
}

// CancelResponse reports whether a cancellation request took effect.
type CancelResponse struct {
	TaskID    string `json:"task_id"`
	Cancelled bool   `json:"cancelled"`
}

// TypesResponse lists the registered dataset and algorithm type names.
type TypesResponse struct {
	Datasets   []string `json:"datasets"`
	Algorithms []string `json:"algorithms"`
}

// PluginInfo describes a loaded plugin.
type PluginInfo struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Path        string   `json:"path"`
	Kinds       []string `json:"kinds,omitempty"`
}

// EngineStats is a point-in-time view of engine load, reported by /health.
type EngineStats struct {
	Workers   int `json:"workers"`
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status string      `json:"status"`
	Uptime string      `json:"uptime"`
	Engine EngineStats `json:"engine"`
}

// ListOptions controls pagination and filtering for history listings.
type ListOptions struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Status string `json:"status,omitempty"` // filter by task status, empty means all
}

// Clamp normalizes pagination values to sane bounds.
func (o *ListOptions) Clamp() {
	if o.Limit <= 0 {
		o.Limit = 50
	}
	if o.Limit > 500 {
		o.Limit = 500
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// TaskListResponse is a page of archived tasks.
type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}
