package memstore

import (
	"context"
	"sync"
)

// keyedLocks hands out one binary semaphore per key. Entries are never freed;
// the key space is bounded by rooms, requesters and dates seen.
type keyedLocks struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{sems: make(map[string]chan struct{})}
}

func (l *keyedLocks) sem(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sems[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.sems[key] = s
	}
	return s
}

func (l *keyedLocks) acquire(ctx context.Context, key string) error {
	select {
	case l.sem(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *keyedLocks) release(key string) {
	<-l.sem(key)
}
