package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Common errors returned by queues
var (
	ErrQueueClosed = errors.New("notification queue is closed")
	ErrQueueFull   = errors.New("notification queue is full")
)

// Queue carries intents from request handlers to dispatcher workers.
type Queue interface {
	// Enqueue adds an intent. It must not block past ctx.
	Enqueue(ctx context.Context, intent Intent) error

	// Dequeue blocks until an intent is available, ctx is done or the
	// queue is closed.
	Dequeue(ctx context.Context) (Intent, error)

	// DeadLetter records an intent that will not be retried.
	DeadLetter(ctx context.Context, intent Intent) error

	// Close stops accepting intents.
	Close() error
}

// MemoryQueue is an in-process buffered queue. Intents are lost on restart.
type MemoryQueue struct {
	mu      sync.RWMutex
	intents chan Intent
	closed  bool
	dead    []Intent
}

// NewMemoryQueue creates a queue holding up to size intents.
func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{intents: make(chan Intent, size)}
}

// Enqueue adds an intent without blocking. A full buffer returns ErrQueueFull.
func (q *MemoryQueue) Enqueue(_ context.Context, intent Intent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.intents <- intent:
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(q.intents))
	}
}

// Dequeue waits for the next intent.
func (q *MemoryQueue) Dequeue(ctx context.Context) (Intent, error) {
	select {
	case <-ctx.Done():
		return Intent{}, ctx.Err()
	case intent, ok := <-q.intents:
		if !ok {
			return Intent{}, ErrQueueClosed
		}
		return intent, nil
	}
}

// DeadLetter keeps the intent in memory for inspection.
func (q *MemoryQueue) DeadLetter(_ context.Context, intent Intent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead = append(q.dead, intent)
	return nil
}

// DeadLetters returns a copy of the dead-lettered intents.
func (q *MemoryQueue) DeadLetters() []Intent {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return append([]Intent(nil), q.dead...)
}

// Len returns the number of buffered intents.
func (q *MemoryQueue) Len() int {
	return len(q.intents)
}

// Close closes the queue. Buffered intents can still be dequeued.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.intents)
	}
	return nil
}
