package profile

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RawProfile is the wire shape of a profile record as received from the
// account service. Every field except the account ID is optional and may be
// malformed; Normalize converts it into a well-formed Profile before any
// resolver logic runs.
type RawProfile struct {
	ID                string          `json:"id"`
	Roles             json.RawMessage `json:"roles,omitempty"`
	FirstName         string          `json:"firstname,omitempty"`
	LastName          string          `json:"lastname,omitempty"`
	Email             string          `json:"email,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	Address           string          `json:"address,omitempty"`
	IDDocumentPath    string          `json:"id_document_path,omitempty"`
	ProfileCompleted  *bool           `json:"profile_completed,omitempty"`
	CriteriaCompleted *bool           `json:"criteria_completed,omitempty"`
	RadiusKm          *float64        `json:"radius_km,omitempty"`
	CreatedAt         *time.Time      `json:"created_at,omitempty"`
}

// Profile is the normalized internal representation used by the resolver.
// Roles holds only recognized, deduplicated tags; CriteriaCompleted keeps its
// three states (absent, false, true) because "defined at all" is itself a
// provider-readiness signal.
type Profile struct {
	AccountID         uuid.UUID  `json:"account_id"`
	Roles             []string   `json:"roles"`
	FirstName         string     `json:"firstname,omitempty"`
	LastName          string     `json:"lastname,omitempty"`
	Email             string     `json:"email,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	Address           string     `json:"address,omitempty"`
	IDDocumentPath    string     `json:"id_document_path,omitempty"`
	ProfileCompleted  bool       `json:"profile_completed"`
	CriteriaCompleted *bool      `json:"criteria_completed,omitempty"`
	RadiusKm          float64    `json:"radius_km,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	LastModifiedAt    time.Time  `json:"last_modified_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

// HasIdentityDocument reports whether an identity document has been uploaded
func (p Profile) HasIdentityDocument() bool {
	return p.IDDocumentPath != ""
}

// Age returns how old the account is relative to now
func (p Profile) Age(now time.Time) time.Duration {
	if p.CreatedAt.IsZero() {
		return 0
	}
	return now.Sub(p.CreatedAt)
}

// UpdateProfileParams contains parameters for updating a stored profile
type UpdateProfileParams struct {
	AccountID      uuid.UUID `json:"account_id"`
	FirstName      string    `json:"firstname,omitempty"`
	LastName       string    `json:"lastname,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	IDDocumentPath string    `json:"id_document_path,omitempty"`
	RadiusKm       float64   `json:"radius_km,omitempty"`
}
