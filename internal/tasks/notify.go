package tasks

import (
	"fmt"
	"log/slog"
	"sync"
)

type registeredListener struct {
	id ListenerID
	fn StatusListener
}

// notifier fans status changes out to listeners. Changes are queued in
// transition order and delivered by whichever goroutine finds the queue idle,
// so a listener may trigger further transitions without deadlocking.
type notifier struct {
	mu        sync.Mutex
	listeners []registeredListener
	nextID    ListenerID
	pending   []Task
	draining  bool
	logger    *slog.Logger
}

func newNotifier(logger *slog.Logger) *notifier {
	return &notifier{logger: logger}
}

func (n *notifier) subscribe(fn StatusListener) ListenerID {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.listeners = append(n.listeners, registeredListener{id: n.nextID, fn: fn})
	return n.nextID
}

func (n *notifier) unsubscribe(id ListenerID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, l := range n.listeners {
		if l.id == id {
			n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// enqueue records a change. Called by the store with its lock held.
func (n *notifier) enqueue(task Task) {
	n.mu.Lock()
	n.pending = append(n.pending, task)
	n.mu.Unlock()
}

// drain delivers queued changes unless another goroutine is already doing so
func (n *notifier) drain() {
	n.mu.Lock()
	if n.draining {
		n.mu.Unlock()
		return
	}
	n.draining = true

	for len(n.pending) > 0 {
		task := n.pending[0]
		n.pending = n.pending[1:]
		listeners := make([]registeredListener, len(n.listeners))
		copy(listeners, n.listeners)
		n.mu.Unlock()

		for _, l := range listeners {
			n.invoke(l, task)
		}

		n.mu.Lock()
	}

	n.draining = false
	n.mu.Unlock()
}

func (n *notifier) invoke(l registeredListener, task Task) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Status listener panicked",
				"listener_id", l.id,
				"task_id", task.TaskID,
				"status", task.Status,
				"panic", fmt.Sprint(r),
			)
		}
	}()

	if err := l.fn(task); err != nil {
		n.logger.Error("Status listener failed",
			"listener_id", l.id,
			"task_id", task.TaskID,
			"status", task.Status,
			"error", err,
		)
	}
}

func (n *notifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = nil
	n.pending = nil
}
