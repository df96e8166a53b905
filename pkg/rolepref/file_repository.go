package rolepref

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

// preferenceEntry is the stored shape of one account's preference
type preferenceEntry struct {
	AccountID uuid.UUID `json:"account_id"`
	Role      role.Role `json:"role"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileRepository implements Repository using file-based storage
type FileRepository struct {
	dataDir string
	prefs   map[uuid.UUID]preferenceEntry
	mutex   sync.RWMutex
}

// NewFileRepository creates a new file-based role preference repository
func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRepository{
		dataDir: dataDir,
		prefs:   make(map[uuid.UUID]preferenceEntry),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

// Get retrieves the persisted role for an account
func (r *FileRepository) Get(ctx context.Context, accountID uuid.UUID) (role.Role, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, exists := r.prefs[accountID]
	if !exists {
		return "", ErrPreferenceNotFound
	}

	return entry.Role, nil
}

// Set durably records the last-chosen role for an account
func (r *FileRepository) Set(ctx context.Context, accountID uuid.UUID, chosen role.Role) error {
	if !chosen.Valid() {
		return fmt.Errorf("unrecognized role: %s", chosen)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	prev, existed := r.prefs[accountID]
	r.prefs[accountID] = preferenceEntry{
		AccountID: accountID,
		Role:      chosen,
		UpdatedAt: time.Now().UTC(),
	}

	if err := r.save(); err != nil {
		// Rollback
		if existed {
			r.prefs[accountID] = prev
		} else {
			delete(r.prefs, accountID)
		}
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// Delete removes the persisted role for an account
func (r *FileRepository) Delete(ctx context.Context, accountID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.prefs[accountID]; !exists {
		return nil
	}

	prev := r.prefs[accountID]
	delete(r.prefs, accountID)

	if err := r.save(); err != nil {
		r.prefs[accountID] = prev
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// PurgeExcept removes every persisted role except the given account's
func (r *FileRepository) PurgeExcept(ctx context.Context, accountID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	kept := make(map[uuid.UUID]preferenceEntry, 1)
	if entry, exists := r.prefs[accountID]; exists {
		kept[accountID] = entry
	}

	if len(kept) == len(r.prefs) {
		return nil
	}

	prev := r.prefs
	r.prefs = kept

	if err := r.save(); err != nil {
		r.prefs = prev
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// load reads preference data from file
func (r *FileRepository) load() error {
	filePath := filepath.Join(r.dataDir, "role_preferences.json")

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

	var entries []preferenceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	r.prefs = make(map[uuid.UUID]preferenceEntry)
	for _, entry := range entries {
		r.prefs[entry.AccountID] = entry
	}

	return nil
}

// save writes preference data to file atomically
func (r *FileRepository) save() error {
	entries := make([]preferenceEntry, 0, len(r.prefs))
	for _, entry := range r.prefs {
		entries = append(entries, entry)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, "role_preferences.json.tmp")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, "role_preferences.json")
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
