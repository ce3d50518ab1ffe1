// Package session is the gateway to the vendor auth provider. It
// owns sign-in, sign-up and sign-out, keeps the process-wide set of
// authenticated sessions, and publishes identity changes on a stream
// that the rest of the service consumes.
package session

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"spendly/backend/models"
	"spendly/backend/store"
)

// EventType classifies an auth-state change.
type EventType string

const (
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"
)

// Event is one auth-state change pushed to subscribers.
type Event struct {
	Type EventType
	User models.User
}

// Session is one authenticated identity with its token material.
type Session struct {
	User         models.User
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// tokenRevoker is the slice of the Firebase Admin auth client the
// manager needs for sign-out. Nil when the backend is disabled.
type tokenRevoker interface {
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Options configures a Manager.
type Options struct {
	// APIKey is the Firebase web API key used for password sign-in.
	APIKey string
	// Endpoint overrides the Identity Toolkit base URL (tests).
	Endpoint string
	// Revoker invalidates refresh tokens on sign-out. Optional.
	Revoker tokenRevoker
	// Backend receives the user profile document on registration.
	Backend store.DocumentStore
	// Disabled marks the vendor backend as unconfigured. Auth calls
	// fail with a ConfigurationError.
	Disabled bool
	// ExpiryInterval is how often expired sessions are swept.
	// Defaults to one minute.
	ExpiryInterval time.Duration
}

// Manager tracks authenticated sessions and emits auth-state events.
type Manager struct {
	identity *identityClient
	revoker  tokenRevoker
	backend  store.DocumentStore
	disabled bool

	mu       sync.RWMutex
	sessions map[string]*Session
	streams  map[chan Event]struct{}

	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager builds a Manager and starts its expiry sweep.
func NewManager(opts Options) *Manager {
	interval := opts.ExpiryInterval
	if interval == 0 {
		interval = time.Minute
	}

	m := &Manager{
		identity: newIdentityClient(opts.APIKey, opts.Endpoint),
		revoker:  opts.Revoker,
		backend:  opts.Backend,
		disabled: opts.Disabled,
		sessions: make(map[string]*Session),
		streams:  make(map[chan Event]struct{}),
		stop:     make(chan struct{}),
	}

	go m.sweepExpired(interval)
	return m
}

// Login signs a user in with email and password. On success the
// session is tracked and a SignedIn event is published.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	if m.disabled {
		return nil, m.configError()
	}

	resp, err := m.identity.signIn(ctx, email, password)
	if err != nil {
		log.Printf("Error signing in %s: %v", email, err)
		return nil, err
	}

	sess := m.track(resp)
	return sess, nil
}

// Register creates an account, writes the user's profile document,
// and signs the user in.
func (m *Manager) Register(ctx context.Context, email, password string) (*Session, error) {
	if m.disabled {
		return nil, m.configError()
	}

	resp, err := m.identity.signUp(ctx, email, password)
	if err != nil {
		log.Printf("Error registering %s: %v", email, err)
		return nil, err
	}

	profile := models.NewUserProfile(resp.Email)
	if err := m.backend.Set(ctx, "users", resp.LocalID, profile.Doc()); err != nil {
		log.Printf("Error creating profile for %s: %v", resp.LocalID, err)
		return nil, &models.BackendError{Op: "create user profile", Err: err}
	}

	sess := m.track(resp)
	return sess, nil
}

// Logout tears down the user's session. Idempotent when the user is
// already signed out; backend failures are logged, never returned.
func (m *Manager) Logout(ctx context.Context, uid string) {
	m.mu.Lock()
	sess, ok := m.sessions[uid]
	if ok {
		delete(m.sessions, uid)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	if m.revoker != nil {
		if err := m.revoker.RevokeRefreshTokens(ctx, uid); err != nil {
			log.Printf("Error revoking refresh tokens for %s: %v", uid, err)
		}
	}

	m.publish(Event{Type: SignedOut, User: sess.User})
}

// Get returns the tracked session for a uid, if any.
func (m *Manager) Get(uid string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[uid]
	return sess, ok
}

// Subscribe returns a stream of auth-state events and a release
// function. The release function must be called on all exit paths.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	m.mu.Lock()
	m.streams[ch] = struct{}{}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.streams[ch]; ok {
			delete(m.streams, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the expiry sweep and releases all event streams.
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.streams {
		delete(m.streams, ch)
		close(ch)
	}
}

func (m *Manager) track(resp *identityResponse) *Session {
	expiresIn, err := strconv.Atoi(resp.ExpiresIn)
	if err != nil || expiresIn <= 0 {
		expiresIn = 3600
	}

	sess := &Session{
		User:         models.User{UID: resp.LocalID, Email: resp.Email},
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second),
	}

	m.mu.Lock()
	m.sessions[sess.User.UID] = sess
	m.mu.Unlock()

	m.publish(Event{Type: SignedIn, User: sess.User})
	return sess
}

func (m *Manager) publish(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for ch := range m.streams {
		select {
		case ch <- event:
		default:
			log.Printf("Warning: dropping auth event %s for %s, subscriber not keeping up", event.Type, event.User.UID)
		}
	}
}

// sweepExpired signs out sessions whose tokens have lapsed, so the
// auth-state stream also fires without an explicit logout.
func (m *Manager) sweepExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.expireBefore(now)
		}
	}
}

func (m *Manager) expireBefore(now time.Time) {
	m.mu.Lock()
	var expired []*Session
	for uid, sess := range m.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(m.sessions, uid)
			expired = append(expired, sess)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		log.Printf("Session expired for user %s", sess.User.UID)
		m.publish(Event{Type: SignedOut, User: sess.User})
	}
}

func (m *Manager) configError() error {
	return &models.ConfigurationError{Message: "Firebase is not properly configured. Please check your environment variables."}
}
