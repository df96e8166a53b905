package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileProfileRepository implements ProfileRepository using file-based storage
type FileProfileRepository struct {
	dataDir  string
	profiles map[uuid.UUID]Profile
	mutex    sync.RWMutex
}

// NewFileProfileRepository creates a new file-based profile repository
func NewFileProfileRepository(dataDir string) (*FileProfileRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileProfileRepository{
		dataDir:  dataDir,
		profiles: make(map[uuid.UUID]Profile),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

// GetProfile retrieves the profile for an account
func (r *FileProfileRepository) GetProfile(ctx context.Context, accountID uuid.UUID) (Profile, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	p, exists := r.profiles[accountID]
	if !exists || p.DeletedAt != nil {
		return Profile{}, ErrProfileNotFound
	}

	return p, nil
}

// UpsertProfile creates or replaces the profile for an account
func (r *FileProfileRepository) UpsertProfile(ctx context.Context, p Profile) (Profile, error) {
	if p.AccountID == uuid.Nil {
		return Profile{}, fmt.Errorf("account id is required")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	prev, existed := r.profiles[p.AccountID]

	Touch(&p, time.Now())
	r.profiles[p.AccountID] = p

	if err := r.save(); err != nil {
		// Rollback
		if existed {
			r.profiles[p.AccountID] = prev
		} else {
			delete(r.profiles, p.AccountID)
		}
		return Profile{}, fmt.Errorf("failed to save: %w", err)
	}

	return p, nil
}

// DeleteProfile soft-deletes the profile for an account
func (r *FileProfileRepository) DeleteProfile(ctx context.Context, accountID uuid.UUID) error {
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

	if err := r.save(); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// load reads profile data from file
func (r *FileProfileRepository) load() error {
	filePath := filepath.Join(r.dataDir, "profiles.json")

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

	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	r.profiles = make(map[uuid.UUID]Profile)
	for _, p := range profiles {
		r.profiles[p.AccountID] = p
	}

	return nil
}

// save writes profile data to file atomically
func (r *FileProfileRepository) save() error {
	profiles := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		profiles = append(profiles, p)
	}

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, "profiles.json.tmp")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, "profiles.json")
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
