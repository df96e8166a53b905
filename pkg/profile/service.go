package profile

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/errors"
)

// ProfileService provides profile-related operations
type ProfileService struct {
	repository ProfileRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(repository ProfileRepository) *ProfileService {
	return &ProfileService{
		repository: repository,
	}
}

// GetProfile retrieves the normalized profile for an account
func (s *ProfileService) GetProfile(ctx context.Context, accountID uuid.UUID) (Profile, error) {
	p, err := s.repository.GetProfile(ctx, accountID)
	if err != nil {
		if err == ErrProfileNotFound {
			return Profile{}, errors.NotFound("profile", accountID.String())
		}
		slog.Error("Failed to get profile", "account_id", accountID, "err", err)
		return Profile{}, errors.InternalWrap(err, "failed to get profile")
	}
	return p, nil
}

// IngestRaw normalizes a raw profile record and stores it. Format problems
// in optional fields are logged and reported back, but do not block the
// write; presence checks happen at role-switch time instead.
func (s *ProfileService) IngestRaw(ctx context.Context, raw RawProfile) (Profile, map[string]string, error) {
	p, err := Normalize(raw)
	if err != nil {
		return Profile{}, nil, err
	}

	problems := ValidateFormats(p)
	if len(problems) > 0 {
		slog.Warn("Profile has malformed optional fields", "account_id", p.AccountID, "fields", problems)
	}

	stored, err := s.repository.UpsertProfile(ctx, p)
	if err != nil {
		slog.Error("Failed to store profile", "account_id", p.AccountID, "err", err)
		return Profile{}, problems, errors.InternalWrap(err, "failed to store profile")
	}

	return stored, problems, nil
}

// UpdateProfile applies partial field updates to a stored profile
func (s *ProfileService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (Profile, error) {
	p, err := s.repository.GetProfile(ctx, params.AccountID)
	if err != nil {
		if err == ErrProfileNotFound {
			return Profile{}, errors.NotFound("profile", params.AccountID.String())
		}
		return Profile{}, errors.InternalWrap(err, "failed to get profile")
	}

	if params.FirstName != "" {
		p.FirstName = params.FirstName
	}
	if params.LastName != "" {
		p.LastName = params.LastName
	}
	if params.Email != "" {
		p.Email = params.Email
	}
	if params.Phone != "" {
		p.Phone = params.Phone
	}
	if params.Address != "" {
		p.Address = params.Address
	}
	if params.IDDocumentPath != "" {
		p.IDDocumentPath = params.IDDocumentPath
	}
	if params.RadiusKm > 0 {
		p.RadiusKm = params.RadiusKm
	}

	if problems := ValidateFormats(p); len(problems) > 0 {
		return Profile{}, errors.ValidationFailed(toDetails(problems))
	}

	stored, err := s.repository.UpsertProfile(ctx, p)
	if err != nil {
		slog.Error("Failed to update profile", "account_id", p.AccountID, "err", err)
		return Profile{}, errors.InternalWrap(err, "failed to update profile")
	}

	return stored, nil
}

// DeleteProfile soft-deletes the profile for an account
func (s *ProfileService) DeleteProfile(ctx context.Context, accountID uuid.UUID) error {
	if err := s.repository.DeleteProfile(ctx, accountID); err != nil {
		if err == ErrProfileNotFound {
			return errors.NotFound("profile", accountID.String())
		}
		return errors.InternalWrap(err, "failed to delete profile")
	}
	return nil
}

func toDetails(problems map[string]string) map[string]interface{} {
	details := make(map[string]interface{}, len(problems))
	for k, v := range problems {
		details[k] = v
	}
	return details
}
