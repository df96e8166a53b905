package upgrade

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

// InMemRepository implements Repository with in-memory storage
type InMemRepository struct {
	requests map[uuid.UUID]Request
	mutex    sync.RWMutex
}

// NewInMemRepository creates a new in-memory upgrade request repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		requests: make(map[uuid.UUID]Request),
	}
}

// Create stores a new request
func (r *InMemRepository) Create(ctx context.Context, req Request) (Request, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, existing := range r.requests {
		if existing.AccountID == req.AccountID &&
			existing.RequestedRole == req.RequestedRole &&
			existing.Status == StatusPending {
			return Request{}, ErrDuplicatePending
		}
	}

	r.requests[req.ID] = req
	return req, nil
}

// Get retrieves a request by ID
func (r *InMemRepository) Get(ctx context.Context, id uuid.UUID) (Request, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	req, exists := r.requests[id]
	if !exists {
		return Request{}, ErrRequestNotFound
	}

	return req, nil
}

// FindPending retrieves the pending request for an account and role, if any
func (r *InMemRepository) FindPending(ctx context.Context, accountID uuid.UUID, requested role.Role) (Request, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, req := range r.requests {
		if req.AccountID == accountID && req.RequestedRole == requested && req.Status == StatusPending {
			return req, nil
		}
	}

	return Request{}, ErrRequestNotFound
}

// ListByAccount retrieves all requests for an account, newest first
func (r *InMemRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]Request, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var requests []Request
	for _, req := range r.requests {
		if req.AccountID == accountID {
			requests = append(requests, req)
		}
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})

	return requests, nil
}

// Update replaces a stored request
func (r *InMemRepository) Update(ctx context.Context, req Request) (Request, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.requests[req.ID]; !exists {
		return Request{}, ErrRequestNotFound
	}

	r.requests[req.ID] = req
	return req, nil
}
