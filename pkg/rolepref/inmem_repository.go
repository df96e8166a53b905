package rolepref

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

// InMemRepository implements Repository with in-memory storage.
// Intended for tests and dev setups without a database.
type InMemRepository struct {
	prefs map[uuid.UUID]role.Role
	mutex sync.RWMutex
}

// NewInMemRepository creates a new in-memory role preference repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		prefs: make(map[uuid.UUID]role.Role),
	}
}

// Get retrieves the persisted role for an account
func (r *InMemRepository) Get(ctx context.Context, accountID uuid.UUID) (role.Role, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	chosen, exists := r.prefs[accountID]
	if !exists {
		return "", ErrPreferenceNotFound
	}

	return chosen, nil
}

// Set durably records the last-chosen role for an account
func (r *InMemRepository) Set(ctx context.Context, accountID uuid.UUID, chosen role.Role) error {
	if !chosen.Valid() {
		return fmt.Errorf("unrecognized role: %s", chosen)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.prefs[accountID] = chosen
	return nil
}

// Delete removes the persisted role for an account
func (r *InMemRepository) Delete(ctx context.Context, accountID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.prefs, accountID)
	return nil
}

// PurgeExcept removes every persisted role except the given account's
func (r *InMemRepository) PurgeExcept(ctx context.Context, accountID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for id := range r.prefs {
		if id != accountID {
			delete(r.prefs, id)
		}
	}
	return nil
}
