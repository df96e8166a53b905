package upgrade

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

var (
	// ErrRequestNotFound is returned when no request exists with the given ID
	ErrRequestNotFound = errors.New("upgrade request not found")
	// ErrDuplicatePending is returned when the account already has a pending
	// request for the same role
	ErrDuplicatePending = errors.New("pending upgrade request already exists")
)

// Repository defines the interface for upgrade request storage
type Repository interface {
	// Create stores a new request
	Create(ctx context.Context, req Request) (Request, error)
	// Get retrieves a request by ID
	Get(ctx context.Context, id uuid.UUID) (Request, error)
	// FindPending retrieves the pending request for an account and role, if any
	FindPending(ctx context.Context, accountID uuid.UUID, requested role.Role) (Request, error)
	// ListByAccount retrieves all requests for an account, newest first
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]Request, error)
	// Update replaces a stored request
	Update(ctx context.Context, req Request) (Request, error)
}
