package store

import (
	"context"
	"sync"
)

// Document is one raw record from a backend collection.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Snapshot is a full result set pushed by the backend on every
// matching change. It replaces, never patches, prior state. Err is
// set when the subscription itself failed; Docs is nil in that case.
type Snapshot struct {
	Docs []Document
	Err  error
}

// Subscription delivers snapshots on C until Close is called or the
// backend stream ends, at which point C is closed.
type Subscription struct {
	C      <-chan Snapshot
	cancel context.CancelFunc
	once   sync.Once
}

// NewSubscription wraps a snapshot channel and its release function.
// Store implementations, including test fakes, build subscriptions
// through this.
func NewSubscription(c <-chan Snapshot, cancel context.CancelFunc) *Subscription {
	return &Subscription{C: c, cancel: cancel}
}

// Close releases the backend listener. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}
