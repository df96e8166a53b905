package upgrade

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

// FileRepository implements Repository using file-based storage
type FileRepository struct {
	dataDir  string
	requests map[uuid.UUID]Request
	mutex    sync.RWMutex
}

// NewFileRepository creates a new file-based upgrade request repository
func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRepository{
		dataDir:  dataDir,
		requests: make(map[uuid.UUID]Request),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

// Create stores a new request
func (r *FileRepository) Create(ctx context.Context, req Request) (Request, error) {
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

	if err := r.save(); err != nil {
		delete(r.requests, req.ID)
		return Request{}, fmt.Errorf("failed to save: %w", err)
	}

	return req, nil
}

// Get retrieves a request by ID
func (r *FileRepository) Get(ctx context.Context, id uuid.UUID) (Request, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	req, exists := r.requests[id]
	if !exists {
		return Request{}, ErrRequestNotFound
	}

	return req, nil
}

// FindPending retrieves the pending request for an account and role, if any
func (r *FileRepository) FindPending(ctx context.Context, accountID uuid.UUID, requested role.Role) (Request, error) {
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
func (r *FileRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]Request, error) {
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
func (r *FileRepository) Update(ctx context.Context, req Request) (Request, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	prev, exists := r.requests[req.ID]
	if !exists {
		return Request{}, ErrRequestNotFound
	}

	r.requests[req.ID] = req

	if err := r.save(); err != nil {
		r.requests[req.ID] = prev
		return Request{}, fmt.Errorf("failed to save: %w", err)
	}

	return req, nil
}

// load reads request data from file
func (r *FileRepository) load() error {
	filePath := filepath.Join(r.dataDir, "role_upgrade_requests.json")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var requests []Request
	if err := json.Unmarshal(data, &requests); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	r.requests = make(map[uuid.UUID]Request)
	for _, req := range requests {
		r.requests[req.ID] = req
	}

	return nil
}

// save writes request data to file atomically
func (r *FileRepository) save() error {
	requests := make([]Request, 0, len(r.requests))
	for _, req := range r.requests {
		requests = append(requests, req)
	}

	data, err := json.MarshalIndent(requests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, "role_upgrade_requests.json.tmp")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, "role_upgrade_requests.json")
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
