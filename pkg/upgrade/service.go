package upgrade

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/errors"
	"github.com/fourmiz/fourmiz-idm/pkg/notification"
	"github.com/fourmiz/fourmiz-idm/pkg/profile"
	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

// newRequestTemplate is sent to operations when an upgrade request is filed
var newRequestTemplate = notification.NoticeTemplate{
	Subject: "New role upgrade request",
	Text: "Account {{.AccountID}} requested the {{.RequestedRole}} role.\n" +
		"Reason: {{.Reason}}\n",
}

// Service manages role upgrade requests
type Service struct {
	repo        Repository
	profileRepo profile.ProfileRepository
	notifier    notification.Notifier
	opsEmail    string
}

// Option configures a Service
type Option func(*Service)

// WithNotifier sets the notifier used for new-request notices
func WithNotifier(notifier notification.Notifier, opsEmail string) Option {
	return func(s *Service) {
		s.notifier = notifier
		s.opsEmail = opsEmail
	}
}

// NewService creates a new upgrade request service
func NewService(repo Repository, profileRepo profile.ProfileRepository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		profileRepo: profileRepo,
		notifier:    notification.NewNoopNotifier(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest files an upgrade request for a role the account does not
// currently hold. Requesting a role that is already available is rejected,
// as is a duplicate of a still-pending request.
func (s *Service) CreateRequest(ctx context.Context, params CreateRequestParams) (Request, error) {
	if !params.RequestedRole.Valid() {
		return Request{}, errors.InvalidRole(string(params.RequestedRole))
	}
	if params.AccountID == uuid.Nil {
		return Request{}, errors.InvalidInput("account id", "must not be empty")
	}

	p, err := s.profileRepo.GetProfile(ctx, params.AccountID)
	if err != nil {
		if err == profile.ErrProfileNotFound {
			return Request{}, errors.NotFound("profile", params.AccountID.String())
		}
		return Request{}, errors.InternalWrap(err, "failed to get profile")
	}

	if role.ResolveAvailableRoles(p).Has(params.RequestedRole) {
		return Request{}, errors.Newf(errors.ErrCodeConflict,
			"role already available: %s", params.RequestedRole)
	}

	if pending, err := s.repo.FindPending(ctx, params.AccountID, params.RequestedRole); err == nil {
		return Request{}, errors.AlreadyExists("upgrade request", string(params.RequestedRole)).
			WithDetail("request_id", pending.ID.String())
	}

	req := Request{
		ID:            uuid.New(),
		AccountID:     params.AccountID,
		RequestedRole: params.RequestedRole,
		Reason:        params.Reason,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, req)
	if err != nil {
		if err == ErrDuplicatePending {
			return Request{}, errors.AlreadyExists("upgrade request", string(params.RequestedRole))
		}
		return Request{}, errors.InternalWrap(err, "failed to create upgrade request")
	}

	s.notifyNewRequest(created)

	return created, nil
}

// GetRequest retrieves a request by ID
func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (Request, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == ErrRequestNotFound {
			return Request{}, errors.NotFound("upgrade request", id.String())
		}
		return Request{}, errors.InternalWrap(err, "failed to get upgrade request")
	}
	return req, nil
}

// ListRequests retrieves all requests for an account, newest first
func (s *Service) ListRequests(ctx context.Context, accountID uuid.UUID) ([]Request, error) {
	requests, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list upgrade requests")
	}
	return requests, nil
}

// Approve grants the requested role: the profile's roles list gains the role
// and the request transitions from pending to approved.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, decidedBy string) (Request, error) {
	req, err := s.GetRequest(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		return Request{}, errors.Newf(errors.ErrCodeConflict,
			"request already decided: %s", req.Status)
	}

	p, err := s.profileRepo.GetProfile(ctx, req.AccountID)
	if err != nil {
		return Request{}, errors.InternalWrap(err, "failed to get profile")
	}

	if !containsTag(p.Roles, string(req.RequestedRole)) {
		p.Roles = append(p.Roles, string(req.RequestedRole))
		if _, err := s.profileRepo.UpsertProfile(ctx, p); err != nil {
			return Request{}, errors.InternalWrap(err, "failed to grant role")
		}
	}

	now := time.Now().UTC()
	req.Status = StatusApproved
	req.DecidedAt = &now
	req.DecidedBy = decidedBy

	updated, err := s.repo.Update(ctx, req)
	if err != nil {
		return Request{}, errors.InternalWrap(err, "failed to update upgrade request")
	}

	slog.Info("Upgrade request approved",
		"request_id", id, "account_id", req.AccountID, "role", req.RequestedRole)

	return updated, nil
}

// Reject declines the request; the profile is untouched
func (s *Service) Reject(ctx context.Context, id uuid.UUID, decidedBy string) (Request, error) {
	req, err := s.GetRequest(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		return Request{}, errors.Newf(errors.ErrCodeConflict,
			"request already decided: %s", req.Status)
	}

	now := time.Now().UTC()
	req.Status = StatusRejected
	req.DecidedAt = &now
	req.DecidedBy = decidedBy

	updated, err := s.repo.Update(ctx, req)
	if err != nil {
		return Request{}, errors.InternalWrap(err, "failed to update upgrade request")
	}

	slog.Info("Upgrade request rejected",
		"request_id", id, "account_id", req.AccountID, "role", req.RequestedRole)

	return updated, nil
}

// notifyNewRequest emails operations about a freshly filed request. Delivery
// failure is logged, never surfaced: the request is already stored.
func (s *Service) notifyNewRequest(req Request) {
	if s.opsEmail == "" {
		return
	}

	err := s.notifier.Send(notification.NotificationData{
		To: s.opsEmail,
		Data: map[string]interface{}{
			"AccountID":     req.AccountID.String(),
			"RequestedRole": string(req.RequestedRole),
			"Reason":        req.Reason,
		},
	}, newRequestTemplate)
	if err != nil {
		slog.Warn("Failed to send upgrade request notice", "request_id", req.ID, "err", err)
	}
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
