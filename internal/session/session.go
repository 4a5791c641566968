// Package session owns the client's only mutable authentication state:
// the bearer token and the current user record. The two always change
// together, are mirrored to persistent storage, and every change is
// broadcast to subscribers in the order it was applied.
package session

import (
	"fmt"
	"sync"

	"github.com/fhounton/immoctl/immo"
)

// Store is the persistence half of the session. *state.State satisfies
// it; tests substitute an in-memory implementation.
type Store interface {
	SetSession(token string, user *immo.User) error
	ClearSession() error
	Session() (string, *immo.User)
}

// Listener receives the current user after every session transition.
// nil means logged out.
type Listener func(*immo.User)

// Manager holds the session in memory, mirrors it to a Store, and
// broadcasts user changes with replay-latest semantics. Reads are
// synchronous and reflect the most recent completed write.
type Manager struct {
	mu        sync.Mutex
	store     Store
	token     string
	user      *immo.User
	listeners map[int]Listener
	nextID    int
}

// NewManager creates a manager seeded from whatever session the store
// already holds, so a restart resumes the previous login.
func NewManager(store Store) *Manager {
	m := &Manager{
		store:     store,
		listeners: make(map[int]Listener),
	}

	m.token, m.user = store.Session()

	return m
}

// Set installs a new session. The store write happens first; on
// failure the in-memory session is left untouched so readers never see
// a half-applied transition. Subscribers are notified once with the
// new user.
func (m *Manager) Set(user *immo.User, token string) error {
	if user == nil || token == "" {
		return fmt.Errorf("both user and token are required for a session")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SetSession(token, user); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	m.token = token
	m.user = user
	m.notifyLocked()

	return nil
}

// Clear tears the session down: both fields nulled, storage wiped,
// subscribers notified with nil. Idempotent.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.ClearSession(); err != nil {
		return fmt.Errorf("clearing persisted session: %w", err)
	}

	m.token = ""
	m.user = nil
	m.notifyLocked()

	return nil
}

// Token returns the current bearer token, or empty string when logged
// out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.token
}

// CurrentUser returns the current user record, or nil when logged out.
func (m *Manager) CurrentUser() *immo.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.user
}

// IsAuthenticated reports whether a session exists.
func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// OnChange subscribes to session transitions. The listener is invoked
// immediately with the current user (replay-latest), then once per
// transition, in order. Listeners run synchronously under the
// manager's lock and must not call back into the Manager. The returned
// function cancels the subscription.
func (m *Manager) OnChange(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	fn(m.user)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		delete(m.listeners, id)
	}
}

func (m *Manager) notifyLocked() {
	for _, fn := range m.listeners {
		fn(m.user)
	}
}
