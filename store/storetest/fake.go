// Package storetest provides an in-memory DocumentStore for tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendly/backend/store"
)

// Fake is an in-memory DocumentStore. Every write pushes a fresh
// snapshot to matching subscriptions, mimicking the vendor's
// push-on-change behavior.
type Fake struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]interface{}
	subs        []*fakeSub
	writeErr    error
}

type fakeSub struct {
	path   string
	query  store.Query
	ch     chan store.Snapshot
	closed bool
}

// NewFake returns an empty fake store.
func NewFake() *Fake {
	return &Fake{collections: make(map[string]map[string]map[string]interface{})}
}

// FailWrites makes every subsequent write call return err. Pass nil
// to restore normal behavior.
func (f *Fake) FailWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

// FailSubscriptions pushes a failed snapshot to every subscription on
// the given path.
func (f *Fake) FailSubscriptions(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if !sub.closed && sub.path == path {
			sub.ch <- store.Snapshot{Err: err}
		}
	}
}

// Count returns the number of documents in a collection, matching
// nothing but the path.
func (f *Fake) Count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.collections[path])
}

func (f *Fake) Subscribe(ctx context.Context, path string, q store.Query) (*store.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &fakeSub{path: path, query: q, ch: make(chan store.Snapshot, 16)}
	f.subs = append(f.subs, sub)
	sub.ch <- store.Snapshot{Docs: f.matching(sub)}

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !sub.closed {
			sub.closed = true
			close(sub.ch)
		}
	}
	return store.NewSubscription(sub.ch, cancel), nil
}

func (f *Fake) Add(ctx context.Context, path string, data map[string]interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return "", f.writeErr
	}

	id := uuid.NewString()
	f.put(path, id, data)
	f.broadcast(path)
	return id, nil
}

func (f *Fake) Update(ctx context.Context, path, id string, data map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return f.writeErr
	}

	existing, ok := f.collections[path][id]
	if !ok {
		existing = make(map[string]interface{})
	}
	for k, v := range data {
		existing[k] = v
	}
	f.put(path, id, existing)
	f.broadcast(path)
	return nil
}

func (f *Fake) Set(ctx context.Context, path, id string, data map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return f.writeErr
	}

	f.put(path, id, data)
	f.broadcast(path)
	return nil
}

func (f *Fake) Delete(ctx context.Context, path, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return f.writeErr
	}

	delete(f.collections[path], id)
	f.broadcast(path)
	return nil
}

func (f *Fake) GetAll(ctx context.Context, path string) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var docs []store.Document
	for id, data := range f.collections[path] {
		docs = append(docs, store.Document{ID: id, Data: clone(data)})
	}
	return docs, nil
}

func (f *Fake) put(path, id string, data map[string]interface{}) {
	if f.collections[path] == nil {
		f.collections[path] = make(map[string]map[string]interface{})
	}
	f.collections[path][id] = clone(data)
}

func (f *Fake) broadcast(path string) {
	for _, sub := range f.subs {
		if !sub.closed && sub.path == path {
			sub.ch <- store.Snapshot{Docs: f.matching(sub)}
		}
	}
}

// matching evaluates the subscription's query against the collection.
// Only equality filters and single-field ordering are supported,
// which is all the adapters use.
func (f *Fake) matching(sub *fakeSub) []store.Document {
	var docs []store.Document
	for id, data := range f.collections[sub.path] {
		if matchesFilters(data, sub.query.Filters) {
			docs = append(docs, store.Document{ID: id, Data: clone(data)})
		}
	}

	if sub.query.OrderBy != "" {
		field, desc := sub.query.OrderBy, sub.query.Descending
		sort.SliceStable(docs, func(i, j int) bool {
			if desc {
				i, j = j, i
			}
			return lessValue(docs[i].Data[field], docs[j].Data[field])
		})
	}
	return docs
}

func matchesFilters(data map[string]interface{}, filters []store.Filter) bool {
	for _, flt := range filters {
		if flt.Op != "==" {
			return false
		}
		if data[flt.Field] != flt.Value {
			return false
		}
	}
	return true
}

func lessValue(a, b interface{}) bool {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	}
	return false
}

func clone(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
