// Package tasks implements the task lifecycle manager: a pollable state
// machine for long-running operations with TTL-bounded retention,
// cooperative cancellation and status-change fan-out.
//
// Lifecycle: working <-> input_required -> completed | failed | cancelled
//
// Terminal statuses are absorbing. A late executor result for a task that
// was already cancelled is discarded.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AltairaLabs/codeintel-mcp/internal/config"
	"github.com/AltairaLabs/codeintel-mcp/internal/pagination"
)

// listScope tags cursors issued by ListTasks
const listScope = "tasks"

// Manager is the public façade over a TaskStore. Construct one per server
// (or per test) and call Dispose when done.
type Manager struct {
	store    *TaskStore
	notifier *notifier
	cfg      config.TaskConfig
	logger   *slog.Logger

	done      chan struct{} // Signal to stop the sweep goroutine
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewManager creates a manager and starts its background sweep
func NewManager(cfg config.TaskConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		store:    NewTaskStore(),
		notifier: newNotifier(logger),
		cfg:      withDefaults(cfg),
		logger:   logger,
		done:     make(chan struct{}),
	}
	m.store.onChange = m.notifier.enqueue

	go m.sweepLoop()

	return m
}

// withDefaults fills unset fields so a zero TaskConfig is usable
func withDefaults(cfg config.TaskConfig) config.TaskConfig {
	d := config.DefaultTaskConfig()
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = d.DefaultTTL
	}
	if cfg.MaxTTL <= 0 {
		cfg.MaxTTL = d.MaxTTL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = d.PollInterval
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = d.SweepInterval
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = d.PageSize
	}
	return cfg
}

// CreateTask registers a new working task for method/params. The requested
// TTL is clamped to the configured maximum, never rejected.
func (m *Manager) CreateTask(method string, params map[string]any, taskParams *TaskParams, progressToken string) Task {
	ttl := m.cfg.DefaultTTL
	if taskParams != nil && taskParams.TTL > 0 {
		ttl = taskParams.TTL
	}
	if ttl > m.cfg.MaxTTL {
		ttl = m.cfg.MaxTTL
	}

	task := m.store.Create(method, params, ttl, m.cfg.PollInterval, progressToken)
	m.logger.Debug("Task created",
		"task_id", task.TaskID,
		"method", method,
		"ttl_ms", task.TTL,
	)
	return task
}

// ExecuteTask runs executor for the task on its own goroutine and returns
// immediately. The executor's outcome moves the task to completed or failed.
// It returns ErrTaskNotFound if the task does not exist and ErrTaskRunning if
// another executor is already attached. A task that is already terminal is
// left untouched and its executor is not started.
func (m *Manager) ExecuteTask(taskID string, executor Executor) error {
	ctx, cancel := context.WithCancel(context.Background())

	if err := m.store.Attach(taskID, cancel); err != nil {
		cancel()
		if errors.Is(err, errTaskTerminal) {
			m.logger.Debug("Task already terminal, executor not started", "task_id", taskID)
			return nil
		}
		return fmt.Errorf("%w: %s", err, taskID)
	}

	method, _, _ := m.store.Method(taskID)

	m.wg.Add(1)
	go m.run(ctx, taskID, method, executor)
	return nil
}

func (m *Manager) run(ctx context.Context, taskID, method string, executor Executor) {
	defer m.wg.Done()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Task executor panicked",
				"task_id", taskID,
				"method", method,
				"panic", fmt.Sprint(r),
			)
			m.fail(taskID, panicError(r))
		}
	}()

	result, err := executor(ctx)
	if err != nil {
		m.logger.Info("Task failed",
			"task_id", taskID,
			"method", method,
			"duration", time.Since(start),
			"error", err,
		)
		m.fail(taskID, normalizeError(err))
		return
	}

	m.logger.Info("Task completed",
		"task_id", taskID,
		"method", method,
		"duration", time.Since(start),
	)
	m.complete(taskID, result)
}

func (m *Manager) complete(taskID string, result any) {
	_, _, applied := m.store.Transition(taskID, StatusCompleted, "", func(r *record) {
		r.result = result
		r.err = nil
	})
	if !applied {
		m.logger.Debug("Discarding late result for task", "task_id", taskID)
		return
	}
	m.notifier.drain()
}

func (m *Manager) fail(taskID string, taskErr *TaskError) {
	_, _, applied := m.store.Transition(taskID, StatusFailed, taskErr.Message, func(r *record) {
		r.result = nil
		r.err = taskErr
	})
	if !applied {
		m.logger.Debug("Discarding late failure for task", "task_id", taskID)
		return
	}
	m.notifier.drain()
}

// GetTask returns the task, or nil if it does not exist or has expired.
// Expired tasks are deleted on read.
func (m *Manager) GetTask(taskID string) *Task {
	task, ok := m.store.Get(taskID)
	if !ok {
		return nil
	}
	return &task
}

// GetTaskResult returns the outcome of a terminal task or a snapshot of a
// running one, or nil if the task does not exist or has expired
func (m *Manager) GetTaskResult(taskID string) *TaskResult {
	result, ok := m.store.Result(taskID)
	if !ok {
		return nil
	}
	return result
}

// ListTasks returns one page of live tasks, newest first. A missing or
// unreadable cursor starts from the first page. Expired tasks found while
// listing are deleted.
func (m *Manager) ListTasks(cursor string) ListResult {
	all := m.store.List()
	page := pagination.PaginateScoped(listScope, all, cursor, m.cfg.PageSize)
	return ListResult{Tasks: page.Items, NextCursor: page.NextCursor}
}

// CancelTask marks a task cancelled and cancels its executor context. It
// returns nil, nil if the task does not exist and ErrInvalidTransition if the
// task is already terminal.
func (m *Manager) CancelTask(taskID string) (*Task, error) {
	task, exists, applied := m.store.Transition(taskID, StatusCancelled, config.MsgTaskCancelled, nil)
	if !exists {
		return nil, nil
	}
	if !applied {
		return nil, fmt.Errorf("%w: task %s is already in terminal status '%s'",
			ErrInvalidTransition, taskID, task.Status)
	}

	m.logger.Info("Task cancelled", "task_id", taskID)
	m.notifier.drain()
	return &task, nil
}

// UpdateTaskStatus applies a generic transition. Unlike CancelTask it never
// fails loudly: it returns nil when the task is missing, terminal, or the
// transition is not allowed.
func (m *Manager) UpdateTaskStatus(taskID string, status Status, message string) *Task {
	task, _, applied := m.store.Transition(taskID, status, message, nil)
	if !applied {
		return nil
	}
	m.notifier.drain()
	return &task
}

// SetInputRequired pauses a working task until the client responds
func (m *Manager) SetInputRequired(taskID, message string) *Task {
	return m.UpdateTaskStatus(taskID, StatusInputRequired, message)
}

// ResumeTask moves an input_required task back to working. It returns nil
// for tasks in any other status.
func (m *Manager) ResumeTask(taskID string) *Task {
	return m.UpdateTaskStatus(taskID, StatusWorking, "")
}

// OnStatusChange registers a listener invoked, in registration order, with
// the task projection after every transition
func (m *Manager) OnStatusChange(listener StatusListener) ListenerID {
	return m.notifier.subscribe(listener)
}

// OffStatusChange removes a listener. It reports whether it was registered.
func (m *Manager) OffStatusChange(id ListenerID) bool {
	return m.notifier.unsubscribe(id)
}

// Stats counts the held tasks by status
func (m *Manager) Stats() TaskStats {
	return m.store.Stats()
}

// Wait blocks until every started executor has returned or ctx is done
func (m *Manager) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispose stops the background sweep, cancels running executors and clears
// all tasks and listeners. It is safe to call more than once.
func (m *Manager) Dispose() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.store.Clear()
		m.notifier.reset()
	})
}

// sweepLoop periodically removes expired tasks
func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := m.store.Sweep(); removed > 0 {
				m.logger.Debug("Removed expired tasks", "count", removed)
			}
		case <-m.done:
			return
		}
	}
}
