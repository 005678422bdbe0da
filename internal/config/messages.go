package config

// Messages used throughout the server
const (
	// ErrTaskNotFound is the format string for unknown or expired tasks
	ErrTaskNotFound = "Task not found: %s"
	// ErrInvalidTTL is the format string for a ttl argument that is not a number
	ErrInvalidTTL = "invalid ttl %v: must be milliseconds"
	// MsgTaskCancelled is the status message set on cancellation
	MsgTaskCancelled = "The task was cancelled by request."
	// MsgTaskCancelledError is the error message reported for cancelled tasks
	MsgTaskCancelledError = "Task was cancelled"
	// MsgTaskStarted is the format string for task started messages
	MsgTaskStarted = "Task %s started for %s"
	// MsgInvalidated is the format string for cache invalidation results
	MsgInvalidated = "Invalidated cached project %s"
	// MsgNotCached is the format string for invalidating an uncached project
	MsgNotCached = "Project %s was not cached"
)
