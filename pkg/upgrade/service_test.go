package upgrade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourmiz/fourmiz-idm/pkg/errors"
	"github.com/fourmiz/fourmiz-idm/pkg/notification"
	"github.com/fourmiz/fourmiz-idm/pkg/profile"
	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

// recordingNotifier captures every notice sent
type recordingNotifier struct {
	sent []notification.NotificationData
}

func (n *recordingNotifier) Send(data notification.NotificationData, template notification.NoticeTemplate) error {
	n.sent = append(n.sent, data)
	return nil
}

func setupService(t *testing.T) (*Service, *profile.InMemProfileRepository, *recordingNotifier) {
	profileRepo := profile.NewInMemProfileRepository()
	notifier := &recordingNotifier{}
	service := NewService(NewInMemRepository(), profileRepo,
		WithNotifier(notifier, "ops@fourmiz.app"))
	return service, profileRepo, notifier
}

func clientAccount(t *testing.T, profileRepo *profile.InMemProfileRepository) uuid.UUID {
	t.Helper()
	accountID := uuid.New()
	_, err := profileRepo.UpsertProfile(context.Background(), profile.Profile{
		AccountID: accountID,
		Roles:     []string{"client"},
	})
	require.NoError(t, err)
	return accountID
}

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		service, profileRepo, notifier := setupService(t)
		accountID := clientAccount(t, profileRepo)

		req, err := service.CreateRequest(ctx, CreateRequestParams{
			AccountID:     accountID,
			RequestedRole: role.RoleFourmiz,
			Reason:        "I want to offer plumbing services",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, req.ID)
		assert.Equal(t, StatusPending, req.Status)
		assert.Equal(t, role.RoleFourmiz, req.RequestedRole)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "ops@fourmiz.app", notifier.sent[0].To)
	})

	t.Run("UnrecognizedRole", func(t *testing.T) {
		service, profileRepo, _ := setupService(t)
		accountID := clientAccount(t, profileRepo)

		_, err := service.CreateRequest(ctx, CreateRequestParams{
			AccountID:     accountID,
			RequestedRole: role.Role("admin"),
		})
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRole))
	})

	t.Run("AlreadyAvailable", func(t *testing.T) {
		service, profileRepo, _ := setupService(t)
		accountID := uuid.New()
		_, err := profileRepo.UpsertProfile(ctx, profile.Profile{
			AccountID:      accountID,
			Roles:          []string{"client", "fourmiz"},
			IDDocumentPath: "/docs/id.pdf",
		})
		require.NoError(t, err)

		_, err = service.CreateRequest(ctx, CreateRequestParams{
			AccountID:     accountID,
			RequestedRole: role.RoleFourmiz,
		})
		assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
	})

	t.Run("DuplicatePending", func(t *testing.T) {
		service, profileRepo, _ := setupService(t)
		accountID := clientAccount(t, profileRepo)

		params := CreateRequestParams{AccountID: accountID, RequestedRole: role.RoleFourmiz}
		_, err := service.CreateRequest(ctx, params)
		require.NoError(t, err)

		_, err = service.CreateRequest(ctx, params)
		assert.True(t, errors.IsCode(err, errors.ErrCodeAlreadyExists))
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		service, _, _ := setupService(t)

		_, err := service.CreateRequest(ctx, CreateRequestParams{
			AccountID:     uuid.New(),
			RequestedRole: role.RoleFourmiz,
		})
		assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	service, profileRepo, _ := setupService(t)
	accountID := clientAccount(t, profileRepo)

	req, err := service.CreateRequest(ctx, CreateRequestParams{
		AccountID:     accountID,
		RequestedRole: role.RoleFourmiz,
	})
	require.NoError(t, err)

	t.Run("GrantsRole", func(t *testing.T) {
		decided, err := service.Approve(ctx, req.ID, "ops-admin")
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, decided.Status)
		assert.Equal(t, "ops-admin", decided.DecidedBy)
		require.NotNil(t, decided.DecidedAt)

		p, err := profileRepo.GetProfile(ctx, accountID)
		require.NoError(t, err)
		assert.Contains(t, p.Roles, "fourmiz")
	})

	t.Run("AlreadyDecided", func(t *testing.T) {
		_, err := service.Approve(ctx, req.ID, "ops-admin")
		assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		_, err := service.Approve(ctx, uuid.New(), "ops-admin")
		assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	})

	t.Run("FourmizAvailableAfterApproval", func(t *testing.T) {
		p, err := profileRepo.GetProfile(ctx, accountID)
		require.NoError(t, err)
		assert.True(t, role.ResolveAvailableRoles(p).Has(role.RoleFourmiz))
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	service, profileRepo, _ := setupService(t)
	accountID := clientAccount(t, profileRepo)

	req, err := service.CreateRequest(ctx, CreateRequestParams{
		AccountID:     accountID,
		RequestedRole: role.RoleFourmiz,
	})
	require.NoError(t, err)

	decided, err := service.Reject(ctx, req.ID, "ops-admin")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, decided.Status)

	// The profile is untouched
	p, err := profileRepo.GetProfile(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, []string{"client"}, p.Roles)

	// A fresh request can now be filed
	_, err = service.CreateRequest(ctx, CreateRequestParams{
		AccountID:     accountID,
		RequestedRole: role.RoleFourmiz,
	})
	assert.NoError(t, err)
}

func TestListRequests(t *testing.T) {
	ctx := context.Background()
	service, profileRepo, _ := setupService(t)
	accountID := clientAccount(t, profileRepo)
	otherID := clientAccount(t, profileRepo)

	req, err := service.CreateRequest(ctx, CreateRequestParams{
		AccountID:     accountID,
		RequestedRole: role.RoleFourmiz,
	})
	require.NoError(t, err)
	_, err = service.CreateRequest(ctx, CreateRequestParams{
		AccountID:     otherID,
		RequestedRole: role.RoleFourmiz,
	})
	require.NoError(t, err)

	requests, err := service.ListRequests(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, req.ID, requests[0].ID)
}
