package model

import "time"

// ResultStatus classifies the outcome carried by a Result, independent of
// the owning task's lifecycle status.
type ResultStatus string

const (
	ResultSuccess    ResultStatus = "SUCCESS"
	ResultFailure    ResultStatus = "FAILURE"
	ResultPending    ResultStatus = "PENDING"
	ResultProcessing ResultStatus = "PROCESSING"
)

// Result is the value produced by an algorithm execution. A zero Result is
// PENDING; tasks carry a PENDING result until they reach a terminal state.
type Result struct {
	Status    ResultStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	Data      string       `json:"data,omitempty"`
	Timestamp time.Time    `json:"timestamp,omitzero"`
}

// PendingResult returns the default result attached to a task at creation.
func PendingResult() Result {
	return Result{Status: ResultPending}
}

// SuccessResult builds a SUCCESS result carrying the given payload.
func SuccessResult(data string) Result {
	return Result{
		Status:    ResultSuccess,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// FailureResult builds a FAILURE result with a descriptive message.
func FailureResult(message string) Result {
	return Result{
		Status:    ResultFailure,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
