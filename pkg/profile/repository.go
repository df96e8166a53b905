package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrProfileNotFound is returned when no profile exists for an account
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileRepository defines the interface for profile storage operations
type ProfileRepository interface {
	// GetProfile retrieves the profile for an account
	GetProfile(ctx context.Context, accountID uuid.UUID) (Profile, error)
	// UpsertProfile creates or replaces the profile for an account
	UpsertProfile(ctx context.Context, p Profile) (Profile, error)
	// DeleteProfile soft-deletes the profile for an account
	DeleteProfile(ctx context.Context, accountID uuid.UUID) error
}
