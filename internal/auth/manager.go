package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	apierrors "github.com/diogo/foldchat/internal/errors"
)

// State is the session state published to subscribers
type State struct {
	User    *User
	Loading bool
}

// Manager tracks the signed-in user on top of a Provider
type Manager struct {
	provider Provider
	log      zerolog.Logger

	mu        sync.RWMutex
	user      *User
	token     string
	loading   bool
	listeners []stateListener
	nextSubID int
}

type stateListener struct {
	id int
	fn func(State)
}

// NewManager creates a manager; call Initialize to restore a saved session
func NewManager(provider Provider, log zerolog.Logger) *Manager {
	return &Manager{
		provider: provider,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

// Initialize restores an existing session. Loading is true until it returns.
func (m *Manager) Initialize(ctx context.Context) error {
	m.set(nil, true)

	sess, err := m.provider.CurrentSession(ctx)
	if err != nil {
		m.set(nil, false)
		m.log.Warn().Err(err).Msg("Session restore failed")
		return wrapAuthError(err, "Could not restore your session")
	}

	if sess == nil {
		m.set(nil, false)
		m.log.Debug().Msg("No saved session")
		return nil
	}

	m.setSession(sess)
	user := sess.User
	m.log.Info().Str("user", user.Email).Msg("Session restored")
	return nil
}

// SignIn validates the form and signs in
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	if err := ValidateCredentials(email, password, false); err != nil {
		return err
	}

	sess, err := m.provider.SignIn(ctx, normalizeEmail(email), password)
	if err != nil {
		m.log.Warn().Err(err).Msg("Sign in failed")
		return wrapAuthError(err, "Sign in failed")
	}

	m.setSession(sess)
	user := sess.User
	m.log.Info().Str("user", user.Email).Msg("Signed in")
	return nil
}

// SignUp validates the form and creates an account. ErrConfirmationPending
// means the account exists but cannot be used until confirmed.
func (m *Manager) SignUp(ctx context.Context, email, password string) error {
	if err := ValidateCredentials(email, password, true); err != nil {
		return err
	}

	sess, err := m.provider.SignUp(ctx, normalizeEmail(email), password)
	if err != nil {
		m.log.Warn().Err(err).Msg("Sign up failed")
		return wrapAuthError(err, "Sign up failed")
	}
	if sess == nil {
		m.log.Info().Msg("Sign up pending email confirmation")
		return ErrConfirmationPending
	}

	m.setSession(sess)
	user := sess.User
	m.log.Info().Str("user", user.Email).Msg("Signed up")
	return nil
}

// SignOut ends the session. The local state is cleared even when the
// provider call fails.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.provider.SignOut(ctx)
	m.set(nil, false)
	if err != nil {
		m.log.Warn().Err(err).Msg("Sign out failed at provider")
		return wrapAuthError(err, "Sign out failed")
	}
	m.log.Info().Msg("Signed out")
	return nil
}

// User returns a copy of the signed-in user, or nil
func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// AccessToken returns the current session's access token, or ""
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Loading reports whether a session restore is in progress
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Subscribe registers fn to be called after every state change, in
// subscription order. The returned func unsubscribes.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSubID
	m.nextSubID++
	m.listeners = append(m.listeners, stateListener{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) setSession(sess *Session) {
	user := sess.User
	m.mu.Lock()
	m.token = sess.AccessToken
	m.mu.Unlock()
	m.set(&user, false)
}

func (m *Manager) set(user *User, loading bool) {
	m.mu.Lock()
	m.user = user
	m.loading = loading
	if user == nil {
		m.token = ""
	}
	listeners := append([]stateListener{}, m.listeners...)
	m.mu.Unlock()

	state := State{Loading: loading}
	if user != nil {
		u := *user
		state.User = &u
	}
	for _, l := range listeners {
		l.fn(state)
	}
}

// wrapAuthError keeps AuthErrors and network errors as they are and wraps
// anything else with a general message
func wrapAuthError(err error, fallback string) error {
	var authErr *apierrors.AuthError
	if errors.As(err, &authErr) || apierrors.IsNetworkError(err) {
		return err
	}
	return apierrors.NewAuthError(fmt.Sprintf("%s: %v", fallback, err), err)
}
