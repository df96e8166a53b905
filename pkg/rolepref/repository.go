package rolepref

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

var (
	// ErrPreferenceNotFound is returned when no role preference exists for an account
	ErrPreferenceNotFound = errors.New("role preference not found")
)

// Repository defines the interface for the durable last-chosen-role store.
// One key-value pair per account; reads and writes are scoped per account so
// a device shared between accounts never leaks one account's preference into
// another's resolution.
type Repository interface {
	// Get retrieves the persisted role for an account
	Get(ctx context.Context, accountID uuid.UUID) (role.Role, error)
	// Set durably records the last-chosen role for an account
	Set(ctx context.Context, accountID uuid.UUID, r role.Role) error
	// Delete removes the persisted role for an account
	Delete(ctx context.Context, accountID uuid.UUID) error
	// PurgeExcept removes every persisted role except the given account's.
	// Called when an account switch is detected on a shared device.
	PurgeExcept(ctx context.Context, accountID uuid.UUID) error
}
