package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/errors"
	"github.com/fourmiz/fourmiz-idm/pkg/rolepref"
)

// Manager owns the single live session per device. Attaching a different
// account discards the previous session and purges the other accounts'
// persisted preferences, so a shared device never resolves against a stale
// preference left by someone else.
type Manager struct {
	store       rolepref.Repository
	sessionOpts []Option

	mu      sync.Mutex
	current *Session
}

// NewManager creates a session manager over a preference store
func NewManager(store rolepref.Repository, sessionOpts ...Option) *Manager {
	return &Manager{
		store:       store,
		sessionOpts: sessionOpts,
	}
}

// Attach returns the session for an account, creating it on first use or on
// account change. The returned session starts Uninitialized; callers resolve
// it with fresh profile data.
func (m *Manager) Attach(ctx context.Context, accountID uuid.UUID) (*Session, error) {
	if accountID == uuid.Nil {
		return nil, errors.InvalidInput("account id", "must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.AccountID() == accountID {
		return m.current, nil
	}

	if m.current != nil {
		slog.Info("Account switch detected, discarding previous role session",
			"previous_account_id", m.current.AccountID(),
			"account_id", accountID)
	}

	// Purge failure is not fatal: the stale entries only matter if their
	// accounts sign in again, and resolution re-validates the value anyway.
	if err := m.store.PurgeExcept(ctx, accountID); err != nil {
		slog.Warn("Failed to purge other accounts' role preferences",
			"account_id", accountID, "err", err)
	}

	m.current = NewSession(accountID, m.store, m.sessionOpts...)
	return m.current, nil
}

// Current returns the live session, or nil when no account is attached
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Get returns the live session for an account, without creating one
func (m *Manager) Get(accountID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.AccountID() != accountID {
		return nil, errors.NotFound("role session", accountID.String())
	}
	return m.current, nil
}

// Detach discards the live session on sign-out. The persisted preference is
// kept so the account's next login resolves to its last-chosen role.
func (m *Manager) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		slog.Info("Role session discarded", "account_id", m.current.AccountID())
		m.current = nil
	}
}
