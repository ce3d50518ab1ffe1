// Package services holds the per-user workspace registry: the pair
// of live store adapters backing one authenticated user.
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"spendly/backend/session"
	"spendly/backend/store"
)

// Notifier receives a ping whenever a user's collection applied a new
// snapshot. The websocket hub implements it.
type Notifier interface {
	NotifyUser(uid, collection string)
}

// Workspace is one user's adapter pair. Both adapters hold a live
// snapshot subscription until the workspace is released.
type Workspace struct {
	UID        string
	Expenses   *store.ExpenseStore
	Categories *store.CategoryStore
}

func (w *Workspace) close() {
	w.Expenses.Close()
	w.Categories.Close()
}

// WorkspaceManager creates workspaces lazily and tears them down when
// the user signs out. At most one workspace — and therefore one
// subscription per collection — exists per user.
type WorkspaceManager struct {
	backend  store.DocumentStore
	notifier Notifier

	mu         sync.Mutex
	workspaces map[string]*Workspace

	cancelEvents func()
	done         chan struct{}
}

// NewWorkspaceManager wires the registry to the session event stream.
// notifier may be nil.
func NewWorkspaceManager(backend store.DocumentStore, sessions *session.Manager, notifier Notifier) *WorkspaceManager {
	m := &WorkspaceManager{
		backend:    backend,
		notifier:   notifier,
		workspaces: make(map[string]*Workspace),
		done:       make(chan struct{}),
	}

	events, cancel := sessions.Subscribe()
	m.cancelEvents = cancel
	go m.watchSessions(events)

	return m
}

func (m *WorkspaceManager) watchSessions(events <-chan session.Event) {
	defer close(m.done)
	for event := range events {
		if event.Type == session.SignedOut {
			m.Release(event.User.UID)
		}
	}
}

// Get returns the user's workspace, creating it on first use. A new
// workspace kicks off best-effort default-category seeding.
func (m *WorkspaceManager) Get(ctx context.Context, uid string) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ws, ok := m.workspaces[uid]; ok {
		return ws, nil
	}

	expenses, err := store.NewExpenseStore(context.Background(), m.backend, uid, m.onChange(uid, "expenses"))
	if err != nil {
		return nil, err
	}

	categories, err := store.NewCategoryStore(context.Background(), m.backend, uid, m.onChange(uid, "categories"))
	if err != nil {
		expenses.Close()
		return nil, err
	}

	ws := &Workspace{UID: uid, Expenses: expenses, Categories: categories}
	m.workspaces[uid] = ws

	go func() {
		seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		// Seed logs its own failures; nothing blocks on it.
		_ = categories.Seed(seedCtx)
	}()

	return ws, nil
}

func (m *WorkspaceManager) onChange(uid, collection string) func() {
	if m.notifier == nil {
		return nil
	}
	return func() {
		m.notifier.NotifyUser(uid, collection)
	}
}

// Release closes the user's workspace and its subscriptions.
// Idempotent.
func (m *WorkspaceManager) Release(uid string) {
	m.mu.Lock()
	ws, ok := m.workspaces[uid]
	if ok {
		delete(m.workspaces, uid)
	}
	m.mu.Unlock()

	if ok {
		log.Printf("Releasing workspace for user %s", uid)
		ws.close()
	}
}

// Close releases every workspace and detaches from the session
// stream.
func (m *WorkspaceManager) Close() {
	m.cancelEvents()
	<-m.done

	m.mu.Lock()
	workspaces := m.workspaces
	m.workspaces = make(map[string]*Workspace)
	m.mu.Unlock()

	for _, ws := range workspaces {
		ws.close()
	}
}
