package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourmiz/fourmiz-idm/pkg/errors"
	"github.com/fourmiz/fourmiz-idm/pkg/role"
	"github.com/fourmiz/fourmiz-idm/pkg/rolepref"
)

func TestManagerAttach(t *testing.T) {
	ctx := context.Background()

	t.Run("NilAccountRejected", func(t *testing.T) {
		m := NewManager(rolepref.NewInMemRepository())

		_, err := m.Attach(ctx, uuid.Nil)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
	})

	t.Run("SameAccountReturnsSameSession", func(t *testing.T) {
		m := NewManager(rolepref.NewInMemRepository())
		accountID := uuid.New()

		first, err := m.Attach(ctx, accountID)
		require.NoError(t, err)
		second, err := m.Attach(ctx, accountID)
		require.NoError(t, err)

		assert.Same(t, first, second)
	})

	t.Run("AccountSwitchBuildsFreshSession", func(t *testing.T) {
		store := rolepref.NewInMemRepository()
		m := NewManager(store, WithClock(testClock))

		alice := uuid.New()
		bob := uuid.New()

		aliceSess, err := m.Attach(ctx, alice)
		require.NoError(t, err)
		_, err = aliceSess.Resolve(ctx, completeFourmizProfile(alice))
		require.NoError(t, err)
		_, err = aliceSess.SwitchRole(ctx, role.RoleClient)
		require.NoError(t, err)

		bobSess, err := m.Attach(ctx, bob)
		require.NoError(t, err)

		assert.NotSame(t, aliceSess, bobSess)
		assert.Equal(t, StateUninitialized, bobSess.Snapshot().State)

		// Alice's stored preference was purged on the account switch, so
		// nothing of hers can leak into Bob's resolution
		_, err = store.Get(ctx, alice)
		assert.ErrorIs(t, err, rolepref.ErrPreferenceNotFound)
	})

	t.Run("PurgeFailureNotFatal", func(t *testing.T) {
		m := NewManager(&failingStore{})

		_, err := m.Attach(ctx, uuid.New())
		require.NoError(t, err)
		sess, err := m.Attach(ctx, uuid.New())
		require.NoError(t, err)
		assert.NotNil(t, sess)
	})
}

func TestManagerGetAndDetach(t *testing.T) {
	ctx := context.Background()
	m := NewManager(rolepref.NewInMemRepository())
	accountID := uuid.New()

	t.Run("GetBeforeAttach", func(t *testing.T) {
		_, err := m.Get(accountID)
		assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	})

	sess, err := m.Attach(ctx, accountID)
	require.NoError(t, err)

	t.Run("GetAfterAttach", func(t *testing.T) {
		got, err := m.Get(accountID)
		require.NoError(t, err)
		assert.Same(t, sess, got)
	})

	t.Run("GetOtherAccount", func(t *testing.T) {
		_, err := m.Get(uuid.New())
		assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	})

	t.Run("Detach", func(t *testing.T) {
		m.Detach()
		assert.Nil(t, m.Current())

		_, err := m.Get(accountID)
		assert.Error(t, err)
	})
}
