package role

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/fourmiz/fourmiz-idm/pkg/profile"
)

// Role identifies which side of the marketplace an account is acting on
type Role string

const (
	// RoleClient is a service requester
	RoleClient Role = "client"
	// RoleFourmiz is a service provider
	RoleFourmiz Role = "fourmiz"
)

// ParseRole converts a raw tag into a Role. The boolean reports whether the
// tag was recognized.
func ParseRole(tag string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(tag))) {
	case RoleClient:
		return RoleClient, true
	case RoleFourmiz:
		return RoleFourmiz, true
	default:
		return "", false
	}
}

// Valid reports whether the role is a recognized tag
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleFourmiz
}

func (r Role) String() string {
	return string(r)
}

// RoleSet is the set of roles available to an account. Semantically a set:
// membership matters, order does not.
type RoleSet map[Role]struct{}

// NewRoleSet creates a role set from the given roles
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s.Add(r)
	}
	return s
}

// Add inserts a role; unrecognized roles are ignored
func (s RoleSet) Add(r Role) {
	if r.Valid() {
		s[r] = struct{}{}
	}
}

// Has reports whether the set contains the role
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Len returns the number of roles in the set
func (s RoleSet) Len() int {
	return len(s)
}

// Roles returns the members in a stable sorted order, for responses and logs
func (s RoleSet) Roles() []Role {
	roles := make([]Role, 0, len(s))
	for r := range s {
		roles = append(roles, r)
	}
	slices.Sort(roles)
	return roles
}

// Strings returns the members as sorted plain strings
func (s RoleSet) Strings() []string {
	roles := s.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// FromProfileTags builds a role set from a normalized profile's role tags
func FromProfileTags(p profile.Profile) RoleSet {
	s := NewRoleSet()
	for _, tag := range p.Roles {
		if r, ok := ParseRole(tag); ok {
			s.Add(r)
		}
	}
	return s
}
