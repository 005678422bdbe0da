package tasks

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/codeintel-mcp/internal/config"
)

// InternalErrorCode is the JSON-RPC code assigned to executor failures that
// carry no code of their own
const InternalErrorCode = mcp.INTERNAL_ERROR

var (
	// ErrTaskNotFound is returned when executing an unknown task
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskRunning is returned when executing a task that already has an executor
	ErrTaskRunning = errors.New("task already has a running executor")
	// ErrInvalidTransition is returned when cancelling a terminal task
	ErrInvalidTransition = errors.New("invalid task transition")

	errTaskTerminal = errors.New("task is terminal")
)

// TaskError is the normalized failure stored on a failed task. Executors may
// return a *TaskError (or wrap one) to control the reported code and data.
type TaskError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task error %d: %s", e.Code, e.Message)
}

// normalizeError maps an executor error onto a TaskError. Structured errors
// keep their code, message and data; anything else becomes an internal error
// carrying err.Error().
func normalizeError(err error) *TaskError {
	var te *TaskError
	if errors.As(err, &te) {
		out := &TaskError{Code: te.Code, Message: te.Message, Data: te.Data}
		if out.Code == 0 {
			out.Code = InternalErrorCode
		}
		return out
	}
	return &TaskError{Code: InternalErrorCode, Message: err.Error()}
}

// panicError normalizes a value recovered from a panicking executor
func panicError(v any) *TaskError {
	if err, ok := v.(error); ok {
		return normalizeError(err)
	}
	return &TaskError{Code: InternalErrorCode, Message: fmt.Sprint(v)}
}

func cancelledError() *TaskError {
	return &TaskError{Code: InternalErrorCode, Message: config.MsgTaskCancelledError}
}
