package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendly/backend/models"
	"spendly/backend/store/storetest"
)

// newIdentityServer emulates the Identity Toolkit endpoints. Accounts
// maps email to password; sign-up rejects emails already present.
func newIdentityServer(t *testing.T, accounts map[string]string) *httptest.Server {
	t.Helper()

	writeErr := func(w http.ResponseWriter, code string) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": code},
		})
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req identityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch {
		case strings.Contains(r.URL.Path, "signInWithPassword"):
			password, ok := accounts[req.Email]
			if !ok {
				writeErr(w, "EMAIL_NOT_FOUND")
				return
			}
			if password != req.Password {
				writeErr(w, "INVALID_PASSWORD")
				return
			}
		case strings.Contains(r.URL.Path, "signUp"):
			if _, ok := accounts[req.Email]; ok {
				writeErr(w, "EMAIL_EXISTS")
				return
			}
			if len(req.Password) < 6 {
				writeErr(w, "WEAK_PASSWORD : Password should be at least 6 characters")
				return
			}
			accounts[req.Email] = req.Password
		default:
			t.Errorf("unexpected identity endpoint: %s", r.URL.Path)
		}

		json.NewEncoder(w).Encode(identityResponse{
			LocalID:      "uid-" + req.Email,
			Email:        req.Email,
			IDToken:      "id-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    "3600",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestManager(t *testing.T, srv *httptest.Server, backend *storetest.Fake) *Manager {
	t.Helper()
	m := NewManager(Options{
		APIKey:   "test-key",
		Endpoint: srv.URL,
		Backend:  backend,
	})
	t.Cleanup(m.Close)
	return m
}

func TestLoginSuccess(t *testing.T) {
	srv := newIdentityServer(t, map[string]string{"alice@example.com": "secret123"})
	m := newTestManager(t, srv, storetest.NewFake())

	events, cancel := m.Subscribe()
	defer cancel()

	sess, err := m.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "uid-alice@example.com", sess.User.UID)
	assert.Equal(t, "alice@example.com", sess.User.Email)
	assert.Equal(t, "id-token", sess.IDToken)
	assert.True(t, sess.ExpiresAt.After(time.Now()))

	tracked, ok := m.Get(sess.User.UID)
	require.True(t, ok)
	assert.Equal(t, sess, tracked)

	event := <-events
	assert.Equal(t, SignedIn, event.Type)
	assert.Equal(t, sess.User, event.User)
}

func TestLoginErrors(t *testing.T) {
	testCases := []struct {
		name     string
		email    string
		password string
		message  string
	}{
		{
			name:     "unknown account",
			email:    "nobody@example.com",
			password: "whatever",
			message:  "No account found with this email address.",
		},
		{
			name:     "wrong password",
			email:    "alice@example.com",
			password: "wrong",
			message:  "Incorrect password. Please try again.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newIdentityServer(t, map[string]string{"alice@example.com": "secret123"})
			m := newTestManager(t, srv, storetest.NewFake())

			_, err := m.Login(context.Background(), tc.email, tc.password)

			var authErr *models.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tc.message, authErr.Message)
		})
	}
}

func TestLoginUnknownCodeFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": "SOMETHING_NEW"},
		})
	}))
	defer srv.Close()

	m := newTestManager(t, srv, storetest.NewFake())

	_, err := m.Login(context.Background(), "alice@example.com", "secret123")

	var authErr *models.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "An unexpected error occurred.", authErr.Message)
}

func TestLoginUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // transport failure on every call

	m := newTestManager(t, srv, storetest.NewFake())

	_, err := m.Login(context.Background(), "alice@example.com", "secret123")

	var authErr *models.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Service is temporarily unavailable. Please try again.", authErr.Message)
}

func TestRegisterCreatesProfile(t *testing.T) {
	srv := newIdentityServer(t, map[string]string{})
	backend := storetest.NewFake()
	m := newTestManager(t, srv, backend)

	sess, err := m.Register(context.Background(), "bob@example.com", "secret123")
	require.NoError(t, err)

	docs, err := backend.GetAll(context.Background(), "users")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, sess.User.UID, docs[0].ID)
	assert.Equal(t, "bob@example.com", docs[0].Data["email"])

	profile, ok := docs[0].Data["profile"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "IDR", profile["currency"])
}

func TestRegisterErrors(t *testing.T) {
	srv := newIdentityServer(t, map[string]string{"taken@example.com": "secret123"})
	m := newTestManager(t, srv, storetest.NewFake())

	_, err := m.Register(context.Background(), "taken@example.com", "secret123")
	var authErr *models.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "An account with this email already exists.", authErr.Message)

	_, err = m.Register(context.Background(), "new@example.com", "abc")
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Password should be at least 6 characters.", authErr.Message)
}

type failingRevoker struct{}

func (failingRevoker) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return errors.New("backend unreachable")
}

func TestLogout(t *testing.T) {
	srv := newIdentityServer(t, map[string]string{"alice@example.com": "secret123"})
	m := NewManager(Options{
		APIKey:   "test-key",
		Endpoint: srv.URL,
		Backend:  storetest.NewFake(),
		Revoker:  failingRevoker{},
	})
	defer m.Close()

	sess, err := m.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)

	events, cancel := m.Subscribe()
	defer cancel()

	// A failing revoker is logged, never surfaced.
	m.Logout(context.Background(), sess.User.UID)

	_, ok := m.Get(sess.User.UID)
	assert.False(t, ok)

	event := <-events
	assert.Equal(t, SignedOut, event.Type)
	assert.Equal(t, sess.User.UID, event.User.UID)

	// Idempotent when already signed out: no second event.
	m.Logout(context.Background(), sess.User.UID)
	select {
	case e := <-events:
		t.Fatalf("unexpected event after repeated logout: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDisabledManager(t *testing.T) {
	m := NewManager(Options{Disabled: true, Backend: storetest.NewFake()})
	defer m.Close()

	_, err := m.Login(context.Background(), "alice@example.com", "secret123")
	var configErr *models.ConfigurationError
	require.ErrorAs(t, err, &configErr)

	_, err = m.Register(context.Background(), "alice@example.com", "secret123")
	require.ErrorAs(t, err, &configErr)
}

func TestSessionExpirySignsOut(t *testing.T) {
	srv := newIdentityServer(t, map[string]string{"alice@example.com": "secret123"})
	m := newTestManager(t, srv, storetest.NewFake())

	sess, err := m.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)

	events, cancel := m.Subscribe()
	defer cancel()

	// Sweep as if the token lifetime has fully elapsed.
	m.expireBefore(time.Now().Add(2 * time.Hour))

	_, ok := m.Get(sess.User.UID)
	assert.False(t, ok)

	event := <-events
	assert.Equal(t, SignedOut, event.Type)
}
