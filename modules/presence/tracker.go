// Package presence counts live connections per identity so the live layer
// can tell when a user goes offline.
package presence

import (
	"context"
	"sort"
	"sync"
)

// Tracker counts open connections per user id.
type Tracker interface {
	// Connected records a new connection and returns the user's connection count.
	Connected(ctx context.Context, userID string) (int64, error)
	// Disconnected records a closed connection and returns the remaining count.
	Disconnected(ctx context.Context, userID string) (int64, error)
	// IsOnline reports whether the user has at least one open connection.
	IsOnline(ctx context.Context, userID string) (bool, error)
	// Online returns the ids of all users with an open connection.
	Online(ctx context.Context) ([]string, error)
}

// MemoryTracker is a Tracker for a single process.
type MemoryTracker struct {
	mu    sync.Mutex
	conns map[string]int64
}

var _ Tracker = (*MemoryTracker)(nil)

// NewMemoryTracker creates an empty MemoryTracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{conns: make(map[string]int64)}
}

// Connected implements Tracker.
func (t *MemoryTracker) Connected(_ context.Context, userID string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[userID]++
	return t.conns[userID], nil
}

// Disconnected implements Tracker.
func (t *MemoryTracker) Disconnected(_ context.Context, userID string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.conns[userID] - 1
	if n <= 0 {
		delete(t.conns, userID)
		return 0, nil
	}
	t.conns[userID] = n
	return n, nil
}

// IsOnline implements Tracker.
func (t *MemoryTracker) IsOnline(_ context.Context, userID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conns[userID] > 0, nil
}

// Online implements Tracker.
func (t *MemoryTracker) Online(_ context.Context) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.conns))
	for id := range t.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
