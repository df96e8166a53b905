package rolepref

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

func setupFileRepo(t *testing.T) *FileRepository {
	tempDir := filepath.Join(os.TempDir(), "rolepref-test-"+uuid.New().String())
	require.NoError(t, os.MkdirAll(tempDir, 0755))

	repo, err := NewFileRepository(tempDir)
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(tempDir)
	})

	return repo
}

func TestFileRepository_SetGet(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("RoundTrip", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, accountID, role.RoleFourmiz))

		got, err := repo.Get(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, role.RoleFourmiz, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, accountID, role.RoleClient))

		got, err := repo.Get(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, role.RoleClient, got)
	})

	t.Run("UnrecognizedRoleRejected", func(t *testing.T) {
		assert.Error(t, repo.Set(ctx, accountID, role.Role("admin")))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrPreferenceNotFound)
	})
}

func TestFileRepository_Persistence(t *testing.T) {
	tempDir := filepath.Join(os.TempDir(), "rolepref-test-reload-"+uuid.New().String())
	require.NoError(t, os.MkdirAll(tempDir, 0755))
	defer os.RemoveAll(tempDir)

	ctx := context.Background()
	accountID := uuid.New()

	repo, err := NewFileRepository(tempDir)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, accountID, role.RoleFourmiz))

	reopened, err := NewFileRepository(tempDir)
	require.NoError(t, err)

	got, err := reopened.Get(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, role.RoleFourmiz, got)
}

func TestFileRepository_Delete(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()
	accountID := uuid.New()

	require.NoError(t, repo.Set(ctx, accountID, role.RoleClient))
	require.NoError(t, repo.Delete(ctx, accountID))

	_, err := repo.Get(ctx, accountID)
	assert.ErrorIs(t, err, ErrPreferenceNotFound)

	// Deleting a missing entry is a no-op
	assert.NoError(t, repo.Delete(ctx, uuid.New()))
}

func TestFileRepository_PurgeExcept(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()

	kept := uuid.New()
	other1 := uuid.New()
	other2 := uuid.New()

	require.NoError(t, repo.Set(ctx, kept, role.RoleClient))
	require.NoError(t, repo.Set(ctx, other1, role.RoleFourmiz))
	require.NoError(t, repo.Set(ctx, other2, role.RoleClient))

	require.NoError(t, repo.PurgeExcept(ctx, kept))

	got, err := repo.Get(ctx, kept)
	require.NoError(t, err)
	assert.Equal(t, role.RoleClient, got)

	_, err = repo.Get(ctx, other1)
	assert.ErrorIs(t, err, ErrPreferenceNotFound)
	_, err = repo.Get(ctx, other2)
	assert.ErrorIs(t, err, ErrPreferenceNotFound)

	// Purging for an account with no stored preference clears everything
	require.NoError(t, repo.PurgeExcept(ctx, uuid.New()))
	_, err = repo.Get(ctx, kept)
	assert.ErrorIs(t, err, ErrPreferenceNotFound)
}
