// Package command carries user commands from the control surfaces (HTTP,
// signals) to the single-threaded frame loop.
//
// The queue is a small bounded channel with non-blocking enqueue: the loop
// drains it at tick start, and a full queue signals backpressure to the
// caller rather than blocking an HTTP handler.
package command

import (
	"context"
	"sync"

	"github.com/keido/slouchd/pkg/metrics"
)

// Command identifies a user command understood by the frame loop.
type Command int

// Commands understood by the frame loop.
const (
	Reset Command = iota + 1 // clear baseline and debounce counter
	Quit                     // terminate the loop
	ToggleDebug              // flip the debug view on or off
)

// String returns the command's wire name.
func (c Command) String() string {
	switch c {
	case Reset:
		return "reset"
	case Quit:
		return "quit"
	case ToggleDebug:
		return "toggle-debug-view"
	default:
		return "unknown"
	}
}

// Default queue configuration constants.
const defaultCapacity = 16

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a command. Returns false if the queue is full or
	// closed and the command was dropped.
	Enqueue(ctx context.Context, c Command) bool

	// Dequeue returns the channel the loop drains. The channel is closed
	// when the queue is closed.
	Dequeue() <-chan Command

	// Close shuts the queue down. After closing, enqueues fail.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	commands chan Command
	capacity int

	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of pending commands.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewInMemoryQueue creates a command queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.commands = make(chan Command, q.capacity)
	return q
}

// Enqueue adds a command without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Command) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordCommandDrop()
		return false
	}

	select {
	case q.commands <- c:
		return true
	case <-ctx.Done():
		metrics.RecordCommandDrop()
		return false
	default:
		metrics.RecordCommandDrop()
		return false
	}
}

// Dequeue returns the command channel.
func (q *InMemoryQueue) Dequeue() <-chan Command {
	return q.commands
}

// Close shuts the queue down.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.commands)
	return nil
}
