package session

import (
	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/role"
)

// State is the lifecycle state of a role session
type State string

const (
	// StateUninitialized means no resolution has started yet
	StateUninitialized State = "uninitialized"
	// StateResolving means a resolution is in flight
	StateResolving State = "resolving"
	// StateReady means an active role has been selected
	StateReady State = "ready"
)

// Snapshot is the in-memory view of a session consumed by the UI layer
type Snapshot struct {
	AccountID      uuid.UUID   `json:"account_id"`
	State          State       `json:"state"`
	ActiveRole     role.Role   `json:"active_role,omitempty"`
	AvailableRoles []role.Role `json:"available_roles"`
	IsInitialized  bool        `json:"is_initialized"`
}

// SwitchResult reports the outcome of a successful role switch
type SwitchResult struct {
	ActiveRole role.Role `json:"active_role"`
	// Changed is false for a same-role no-op switch
	Changed bool `json:"changed"`
	// Persisted is false when the preference store write failed; the switch
	// itself still took effect and the write is retried on the next commit
	Persisted bool `json:"persisted"`
}
