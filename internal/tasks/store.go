package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStore owns the task records and enforces the status state machine and
// TTL expiry. A single mutex serializes all access, so transitions on one
// task are totally ordered.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[string]*record
	seq   uint64

	now func() time.Time

	// onChange is called with the lock held after every transition, so calls
	// arrive in transition order. It must not call back into the store.
	onChange func(Task)
}

// NewTaskStore creates an empty task store
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[string]*record),
		now:   time.Now,
	}
}

// Create inserts a new working task and returns its projection
func (s *TaskStore) Create(method string, params map[string]any, ttl, pollInterval time.Duration, progressToken string) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.seq++
	rec := &record{
		task: Task{
			TaskID:        uuid.NewString(),
			Status:        StatusWorking,
			CreatedAt:     now,
			LastUpdatedAt: now,
			TTL:           ttl.Milliseconds(),
			PollInterval:  pollInterval.Milliseconds(),
			ProgressToken: progressToken,
		},
		seq:    s.seq,
		method: method,
		params: params,
		ttl:    ttl,
	}
	s.tasks[rec.task.TaskID] = rec
	return rec.task
}

// lookup returns a live record, deleting it if it has expired.
// Must be called with s.mu held.
func (s *TaskStore) lookup(taskID string) (*record, bool) {
	rec, ok := s.tasks[taskID]
	if !ok {
		return nil, false
	}
	if rec.expired(s.now()) {
		s.remove(taskID, rec)
		return nil, false
	}
	return rec, true
}

// remove deletes a record and releases its executor context.
// Must be called with s.mu held.
func (s *TaskStore) remove(taskID string, rec *record) {
	if rec.cancel != nil {
		rec.cancel()
		rec.cancel = nil
	}
	delete(s.tasks, taskID)
}

// Get returns the projection of a live task
func (s *TaskStore) Get(taskID string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(taskID)
	if !ok {
		return Task{}, false
	}
	return rec.task, true
}

// Method returns the originating method and parameters of a live task
func (s *TaskStore) Method(taskID string) (string, map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(taskID)
	if !ok {
		return "", nil, false
	}
	return rec.method, rec.params, true
}

// Result returns the outcome view of a live task
func (s *TaskStore) Result(taskID string) (*TaskResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(taskID)
	if !ok {
		return nil, false
	}

	switch rec.task.Status {
	case StatusCompleted:
		return &TaskResult{Result: rec.result, IsTerminal: true}, true
	case StatusFailed:
		return &TaskResult{Error: rec.err, IsTerminal: true}, true
	case StatusCancelled:
		return &TaskResult{Error: cancelledError(), IsTerminal: true}, true
	default:
		snapshot := rec.task
		return &TaskResult{Task: &snapshot, IsTerminal: false}, true
	}
}

// Attach binds an executor cancel function to a live, non-terminal task.
// A task holds at most one executor: while one is attached, further
// attempts fail with ErrTaskRunning and the existing cancel is kept.
func (s *TaskStore) Attach(taskID string, cancel context.CancelFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(taskID)
	if !ok {
		return ErrTaskNotFound
	}
	if rec.task.Status.IsTerminal() {
		return errTaskTerminal
	}
	if rec.cancel != nil {
		return ErrTaskRunning
	}
	rec.cancel = cancel
	return nil
}

// Transition moves a live task to status if the state machine allows it.
// apply, when non-nil, runs with the lock held before the change is
// published. It returns the task's current projection, whether the task
// exists, and whether the transition was applied.
func (s *TaskStore) Transition(taskID string, to Status, message string, apply func(*record)) (Task, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(taskID)
	if !ok {
		return Task{}, false, false
	}
	if !canTransition(rec.task.Status, to) {
		return rec.task, true, false
	}

	rec.task.Status = to
	rec.task.StatusMessage = message
	rec.task.LastUpdatedAt = s.now()
	if apply != nil {
		apply(rec)
	}
	if to.IsTerminal() && rec.cancel != nil {
		rec.cancel()
		rec.cancel = nil
	}

	if s.onChange != nil {
		s.onChange(rec.task)
	}
	return rec.task, true, true
}

// List removes expired tasks and returns the rest newest first. Tasks created
// at the same instant are ordered by reverse insertion.
func (s *TaskStore) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	live := make([]*record, 0, len(s.tasks))
	for id, rec := range s.tasks {
		if rec.expired(now) {
			s.remove(id, rec)
			continue
		}
		live = append(live, rec)
	}

	sort.Slice(live, func(i, j int) bool {
		a, b := live[i], live[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]Task, len(live))
	for i, rec := range live {
		out[i] = rec.task
	}
	return out
}

// Sweep deletes every expired task and returns how many were removed
func (s *TaskStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, rec := range s.tasks {
		if rec.expired(now) {
			s.remove(id, rec)
			removed++
		}
	}
	return removed
}

// Stats counts the tasks currently held, expired or not
func (s *TaskStore) Stats() TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := TaskStats{ByStatus: make(map[Status]int)}
	for _, rec := range s.tasks {
		stats.Total++
		stats.ByStatus[rec.task.Status]++
	}
	return stats
}

// Size returns the number of records held, including expired ones not yet swept
func (s *TaskStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Clear removes every task and releases all executor contexts
func (s *TaskStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rec := range s.tasks {
		s.remove(id, rec)
	}
	s.tasks = make(map[string]*record)
}
