package profile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemProfileRepository implements ProfileRepository with in-memory storage.
// Intended for tests and dev setups without a database.
type InMemProfileRepository struct {
	profiles map[uuid.UUID]Profile
	mutex    sync.RWMutex
}

// NewInMemProfileRepository creates a new in-memory profile repository
func NewInMemProfileRepository() *InMemProfileRepository {
	return &InMemProfileRepository{
		profiles: make(map[uuid.UUID]Profile),
	}
}

// GetProfile retrieves the profile for an account
func (r *InMemProfileRepository) GetProfile(ctx context.Context, accountID uuid.UUID) (Profile, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	p, exists := r.profiles[accountID]
	if !exists || p.DeletedAt != nil {
		return Profile{}, ErrProfileNotFound
	}

	return p, nil
}

// UpsertProfile creates or replaces the profile for an account
func (r *InMemProfileRepository) UpsertProfile(ctx context.Context, p Profile) (Profile, error) {
	if p.AccountID == uuid.Nil {
		return Profile{}, fmt.Errorf("account id is required")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	Touch(&p, time.Now())
	r.profiles[p.AccountID] = p

	return p, nil
}

// DeleteProfile soft-deletes the profile for an account
func (r *InMemProfileRepository) DeleteProfile(ctx context.Context, accountID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	p, exists := r.profiles[accountID]
	if !exists || p.DeletedAt != nil {
		return ErrProfileNotFound
	}

	now := time.Now().UTC()
	p.DeletedAt = &now
	p.LastModifiedAt = now
	r.profiles[accountID] = p

	return nil
}
