package api

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fourmiz/fourmiz-idm/pkg/role"
	"github.com/fourmiz/fourmiz-idm/pkg/session"
)

func TestToRoleResponse(t *testing.T) {
	accountID := uuid.New()

	t.Run("EachAvailableRoleListedOnce", func(t *testing.T) {
		snapshot := session.Snapshot{
			AccountID:      accountID,
			State:          session.StateReady,
			ActiveRole:     role.RoleFourmiz,
			AvailableRoles: []role.Role{role.RoleClient, role.RoleFourmiz},
			IsInitialized:  true,
		}

		response := toRoleResponse(snapshot)
		assert.Equal(t, accountID.String(), response.AccountID)
		assert.Equal(t, "ready", response.State)
		assert.Equal(t, "fourmiz", response.ActiveRole)
		assert.Equal(t, []string{"client", "fourmiz"}, response.AvailableRoles)
		assert.True(t, response.IsInitialized)
	})

	t.Run("UninitializedSession", func(t *testing.T) {
		snapshot := session.Snapshot{
			AccountID:      accountID,
			State:          session.StateUninitialized,
			AvailableRoles: []role.Role{},
		}

		response := toRoleResponse(snapshot)
		assert.Equal(t, "uninitialized", response.State)
		assert.Empty(t, response.ActiveRole)
		// The field marshals as [] rather than null
		assert.NotNil(t, response.AvailableRoles)
		assert.Empty(t, response.AvailableRoles)
	})
}
