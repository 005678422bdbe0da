package tasks

import (
	"context"
	"time"
)

// Status is the lifecycle state of a task
type Status string

const (
	// StatusWorking indicates the executor is running
	StatusWorking Status = "working"
	// StatusInputRequired indicates the task is paused waiting for the client
	StatusInputRequired Status = "input_required"
	// StatusCompleted indicates the executor returned a result
	StatusCompleted Status = "completed"
	// StatusFailed indicates the executor returned an error
	StatusFailed Status = "failed"
	// StatusCancelled indicates the task was cancelled by request
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition is permitted from s
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// canTransition encodes the task state machine. Terminal states have no
// outgoing edges.
func canTransition(from, to Status) bool {
	switch from {
	case StatusWorking:
		return to == StatusInputRequired || to.IsTerminal()
	case StatusInputRequired:
		return to == StatusWorking || to.IsTerminal()
	default:
		return false
	}
}

// Task is the public projection of a task record. The originating method,
// its parameters and the outcome are withheld; use GetTaskResult for those.
type Task struct {
	TaskID        string    `json:"taskId"`
	Status        Status    `json:"status"`
	StatusMessage string    `json:"statusMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	// TTL is the retention in milliseconds measured from CreatedAt
	TTL int64 `json:"ttl"`
	// PollInterval is the suggested delay between polls in milliseconds
	PollInterval  int64  `json:"pollInterval"`
	ProgressToken string `json:"progressToken,omitempty"`
}

// TaskParams are the task-level options supplied by the requestor
type TaskParams struct {
	// TTL is the desired retention; zero or negative means the default.
	// Values above the configured maximum are clamped.
	TTL time.Duration
}

// TaskResult is the outcome view returned by GetTaskResult. Exactly one of
// Result/Error is meaningful when IsTerminal is true; Task is set otherwise.
type TaskResult struct {
	Result     any        `json:"result,omitempty"`
	Error      *TaskError `json:"error,omitempty"`
	Task       *Task      `json:"task,omitempty"`
	IsTerminal bool       `json:"isTerminal"`
}

// ListResult is one page of ListTasks
type ListResult struct {
	Tasks      []Task `json:"tasks"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// TaskStats summarizes the live tasks by status
type TaskStats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"byStatus"`
}

// Executor is the long-running unit of work a task wraps. Its context is
// cancelled when the task reaches a terminal status by other means; honoring
// it is optional.
type Executor func(ctx context.Context) (any, error)

// StatusListener observes every status transition. Returned errors and panics
// are logged and never reach the caller that triggered the transition.
type StatusListener func(task Task) error

// ListenerID identifies a registered StatusListener
type ListenerID uint64

// record is the store-owned task state
type record struct {
	task   Task
	seq    uint64
	method string
	params map[string]any
	result any
	err    *TaskError
	ttl    time.Duration
	cancel context.CancelFunc
}

func (r *record) expired(now time.Time) bool {
	return now.Sub(r.task.CreatedAt) > r.ttl
}
