package upgrade

import (
	"time"

	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

// Status is the lifecycle state of a role upgrade request
type Status string

const (
	// StatusPending means the request awaits a decision
	StatusPending Status = "pending"
	// StatusApproved means the role was granted
	StatusApproved Status = "approved"
	// StatusRejected means the request was declined
	StatusRejected Status = "rejected"
)

// Request represents a pending ask to add a role the account does not
// currently hold
type Request struct {
	ID            uuid.UUID  `json:"id"`
	AccountID     uuid.UUID  `json:"account_id"`
	RequestedRole role.Role  `json:"requested_role"`
	Reason        string     `json:"reason,omitempty"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
	DecidedBy     string     `json:"decided_by,omitempty"`
}

// CreateRequestParams contains parameters for filing an upgrade request
type CreateRequestParams struct {
	AccountID     uuid.UUID `json:"account_id"`
	RequestedRole role.Role `json:"requested_role"`
	Reason        string    `json:"reason,omitempty"`
}
