package notifications

import (
	"context"
	"sync"
	"time"
)

// Locker hands out named run-locks with an expiry.
type Locker interface {
	// TryLock acquires key for at most ttl. acquired is false when another
	// holder has it. unlock is only valid when acquired is true.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), acquired bool, err error)
}

// MemoryLocker is a Locker for a single process.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	now   func() time.Time
	token uint64
	owner map[string]uint64
}

// NewMemoryLocker creates an in-process Locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held:  make(map[string]time.Time),
		owner: make(map[string]uint64),
		now:   time.Now,
	}
}

// TryLock acquires key unless it is held and not yet expired.
func (l *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expires, ok := l.held[key]; ok && l.now().Before(expires) {
		return nil, false, nil
	}

	l.token++
	token := l.token
	l.held[key] = l.now().Add(ttl)
	l.owner[key] = token

	unlock := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		// An expired lock may have been taken over; only the owner releases.
		if l.owner[key] == token {
			delete(l.held, key)
			delete(l.owner, key)
		}
	}
	return unlock, true, nil
}
