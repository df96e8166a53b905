package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/errors"
	"github.com/fourmiz/fourmiz-idm/pkg/profile"
	"github.com/fourmiz/fourmiz-idm/pkg/role"
	"github.com/fourmiz/fourmiz-idm/pkg/rolepref"
)

// DefaultStoreTimeout bounds reads and writes against the preference store.
// Resolution itself is pure; only the store can be slow, and a slow store
// must degrade to the computed default rather than block the user out.
const DefaultStoreTimeout = 3 * time.Second

// Session owns the role selection for one authenticated account. It is
// created at login, discarded at logout, and never shared across accounts;
// an account change goes through Manager, which builds a fresh session.
type Session struct {
	accountID    uuid.UUID
	store        rolepref.Repository
	storeTimeout time.Duration
	clock        func() time.Time

	mu        sync.Mutex
	state     State
	active    role.Role
	available role.RoleSet
	profile   profile.Profile
	switching bool
	prefDirty bool
}

// Option configures a Session
type Option func(*Session)

// WithStoreTimeout overrides the bound on preference store operations
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithClock overrides the time source, for tests
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// NewSession creates an uninitialized session for an account
func NewSession(accountID uuid.UUID, store rolepref.Repository, opts ...Option) *Session {
	s := &Session{
		accountID:    accountID,
		store:        store,
		storeTimeout: DefaultStoreTimeout,
		clock:        time.Now,
		state:        StateUninitialized,
		available:    role.NewRoleSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AccountID returns the account this session belongs to
func (s *Session) AccountID() uuid.UUID {
	return s.accountID
}

// Resolve normalizes a raw profile record, computes the available roles, and
// selects the initial active role. It may be called again with fresher
// profile data; each call runs the full resolution.
//
// A failing or slow preference store degrades to no-persisted-value: the
// session still reaches Ready with the computed default.
func (s *Session) Resolve(ctx context.Context, raw profile.RawProfile) (Snapshot, error) {
	p, err := profile.Normalize(raw)
	if err != nil {
		return Snapshot{}, err
	}
	return s.ResolveProfile(ctx, p)
}

// ResolveProfile runs the resolution against an already-normalized profile
func (s *Session) ResolveProfile(ctx context.Context, p profile.Profile) (Snapshot, error) {
	if p.AccountID != s.accountID {
		return Snapshot{}, errors.Newf(errors.ErrCodeInvalidInput,
			"profile belongs to a different account: %s", p.AccountID)
	}

	s.mu.Lock()
	if s.switching {
		s.mu.Unlock()
		return Snapshot{}, errors.SwitchInProgress()
	}
	s.switching = true
	s.state = StateResolving
	s.mu.Unlock()

	persisted := s.readPersisted(ctx)

	available := role.ResolveAvailableRoles(p)
	initial := role.ResolveInitialRole(p, persisted, s.clock())

	s.mu.Lock()
	s.profile = p
	s.available = available
	s.active = initial
	s.state = StateReady
	s.switching = false
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	slog.Info("Role session resolved",
		"account_id", s.accountID,
		"active_role", initial,
		"available_roles", available.Strings())

	return snapshot, nil
}

// readPersisted reads the stored preference with a bounded timeout. Any
// failure is logged and treated as no-preference.
func (s *Session) readPersisted(ctx context.Context) role.Role {
	readCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	persisted, err := s.store.Get(readCtx, s.accountID)
	if err != nil {
		if err != rolepref.ErrPreferenceNotFound {
			slog.Warn("Preference store read failed, falling back to default",
				"account_id", s.accountID, "err", err)
		}
		return ""
	}
	return persisted
}

// SwitchRole requests a transition to another role. Guards are checked in
// order: recognized tag, membership in the available set, same-role no-op,
// and the provider profile-completeness gate. A rejected switch leaves the
// active role untouched. Only one switch may be in flight at a time; a
// concurrent request is rejected rather than queued.
func (s *Session) SwitchRole(ctx context.Context, requested role.Role) (SwitchResult, error) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return SwitchResult{}, errors.New(errors.ErrCodeSessionNotReady, "session is not resolved yet")
	}
	if s.switching {
		s.mu.Unlock()
		return SwitchResult{}, errors.SwitchInProgress()
	}

	if !requested.Valid() {
		s.mu.Unlock()
		return SwitchResult{}, errors.InvalidRole(string(requested))
	}
	if !s.available.Has(requested) {
		s.mu.Unlock()
		return SwitchResult{}, errors.RoleNotAvailable(string(requested))
	}
	if requested == s.active {
		if !s.prefDirty {
			// No-op: the persisted preference is left untouched
			result := SwitchResult{ActiveRole: s.active, Changed: false, Persisted: true}
			s.mu.Unlock()
			return result, nil
		}

		// The last preference write failed; the no-op is the retry point
		s.switching = true
		s.mu.Unlock()

		persisted := s.persist(ctx, requested)

		s.mu.Lock()
		s.prefDirty = !persisted
		s.switching = false
		s.mu.Unlock()

		return SwitchResult{ActiveRole: requested, Changed: false, Persisted: persisted}, nil
	}
	if requested == role.RoleFourmiz {
		status := role.CheckProfileCompletion(s.profile, role.RoleFourmiz)
		if !status.IsComplete {
			s.mu.Unlock()
			return SwitchResult{}, errors.ProfileIncomplete(status.MissingFields).
				WithDetail("completion_percentage", status.CompletionPercentage)
		}
	}

	// Commit in memory, then persist outside the lock. The busy flag keeps a
	// second switch from interleaving with the in-flight write.
	s.switching = true
	s.active = requested
	s.mu.Unlock()

	persisted := s.persist(ctx, requested)

	s.mu.Lock()
	s.prefDirty = !persisted
	s.switching = false
	s.mu.Unlock()

	slog.Info("Role switched",
		"account_id", s.accountID,
		"active_role", requested,
		"persisted", persisted)

	return SwitchResult{ActiveRole: requested, Changed: true, Persisted: persisted}, nil
}

// persist writes the chosen role with a bounded timeout. The write runs on a
// background context so an abandoned caller does not leave the store
// half-written; last-writer-wins is fine with a single writer per account.
func (s *Session) persist(ctx context.Context, chosen role.Role) bool {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
	defer cancel()

	if err := s.store.Set(writeCtx, s.accountID, chosen); err != nil {
		slog.Warn("Preference store write failed, will retry on next switch",
			"account_id", s.accountID, "role", chosen, "err", err)
		return false
	}
	return true
}

// CheckCompletion evaluates profile completeness for a target role using the
// profile captured at resolution time
func (s *Session) CheckCompletion(target role.Role) (role.CompletionStatus, error) {
	if !target.Valid() {
		return role.CompletionStatus{}, errors.InvalidRole(string(target))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return role.CompletionStatus{}, errors.New(errors.ErrCodeSessionNotReady, "session is not resolved yet")
	}

	return role.CheckProfileCompletion(s.profile, target), nil
}

// Snapshot returns the current in-memory view of the session
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		AccountID:      s.accountID,
		State:          s.state,
		ActiveRole:     s.active,
		AvailableRoles: s.available.Roles(),
		IsInitialized:  s.state == StateReady,
	}
}
