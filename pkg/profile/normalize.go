package profile

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/errors"
)

// Recognized role tags. Tags outside this set are dropped during
// normalization; unknown tags are a sync artifact, not an error.
const (
	RoleTagClient  = "client"
	RoleTagFourmiz = "fourmiz"
)

// Normalize converts a raw profile record into a well-formed Profile.
//
// The raw record may come from a store whose roles column was written by
// older clients: absent, null, a non-array value, or an array containing
// unrecognized tags. All of those degrade to a smaller (possibly empty)
// roles list rather than an error. The only fatal condition is a missing or
// unparseable account ID.
func Normalize(raw RawProfile) (Profile, error) {
	accountID, err := uuid.Parse(strings.TrimSpace(raw.ID))
	if err != nil {
		return Profile{}, errors.InvalidInput("account id", "missing or malformed")
	}

	p := Profile{
		AccountID:         accountID,
		Roles:             normalizeRoles(raw.Roles),
		FirstName:         strings.TrimSpace(raw.FirstName),
		LastName:          strings.TrimSpace(raw.LastName),
		Email:             strings.TrimSpace(raw.Email),
		Phone:             strings.TrimSpace(raw.Phone),
		Address:           strings.TrimSpace(raw.Address),
		IDDocumentPath:    strings.TrimSpace(raw.IDDocumentPath),
		CriteriaCompleted: raw.CriteriaCompleted,
	}

	if raw.ProfileCompleted != nil {
		p.ProfileCompleted = *raw.ProfileCompleted
	}
	if raw.RadiusKm != nil && *raw.RadiusKm > 0 {
		p.RadiusKm = *raw.RadiusKm
	}
	if raw.CreatedAt != nil {
		p.CreatedAt = raw.CreatedAt.UTC()
	}

	return p, nil
}

// normalizeRoles parses the raw roles value into a deduplicated list of
// recognized tags. Malformed input yields an empty list.
func normalizeRoles(raw json.RawMessage) []string {
	roles := []string{}
	if len(raw) == 0 {
		return roles
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		// Some legacy rows carry a single tag as a bare string
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			slog.Debug("Ignoring malformed roles value", "raw", string(raw))
			return roles
		}
		tags = []string{single}
	}

	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != RoleTagClient && tag != RoleTagFourmiz {
			continue
		}
		if !seen[tag] {
			seen[tag] = true
			roles = append(roles, tag)
		}
	}

	return roles
}

// Touch stamps modification time on a profile, defaulting CreatedAt for
// records that never carried one.
func Touch(p *Profile, now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now.UTC()
	}
	p.LastModifiedAt = now.UTC()
}
