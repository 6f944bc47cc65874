package sync

import (
	stdsync "sync"

	"github.com/roach88/dueline/internal/remote"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventSnapshot carries an inbound remote snapshot for a category.
	EventSnapshot EventType = iota + 1
	// EventFlushTick asks the engine to attempt a dirty-queue replay.
	EventFlushTick
	// EventConnectivity reports an online/offline transition.
	EventConnectivity
)

// Event wraps snapshots, flush ticks and connectivity changes for the
// engine's event queue.
type Event struct {
	Type     EventType
	Category Category

	// Path records which subscription delivered a snapshot. A workspace
	// switch changes the category's path, so the handler can tell a
	// pre-switch event from a current one and drop it.
	Path string

	Value  remote.Value
	Online bool
}

// eventQueue is a thread-safe FIFO queue for engine events.
//
// Unbounded: subscription callbacks may enqueue from any goroutine and
// must never block. The Run loop is the only dequeuer.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type eventQueue struct {
	mu     stdsync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered size 1, coalesces wakeups
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue. Safe from any
// goroutine. Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Event{}, false) if the queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}
	e := q.events[0]

	// Nil out the slot so the Value payload is collectable before the
	// backing array is reallocated.
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns a channel that signals when events may be available.
// Use with select for context-aware waiting.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close signals that no more events will be enqueued and wakes any
// blocked waiter.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
