package role

import (
	"time"

	"github.com/fourmiz/fourmiz-idm/pkg/profile"
)

// PersistedRoleMinAge is how old an account must be before a persisted role
// preference is trusted during initial resolution. Immediately after signup
// a stale preference left over from a previous account on a shared device
// must not override the freshly computed default.
const PersistedRoleMinAge = 5 * time.Minute

// ResolveAvailableRoles computes the validated, non-empty set of roles an
// account can act under.
//
// Recognized tags from the profile's roles list are taken as-is. An account
// whose list normalizes to empty can always act as a requester, so client is
// inserted as the safe default. Fourmiz is additionally inferred when any
// provider-readiness signal is present: the criteria flag being defined at
// all, or an uploaded identity document. The inference covers accounts whose
// roles list has not yet been synchronized with their actual capabilities.
func ResolveAvailableRoles(p profile.Profile) RoleSet {
	available := FromProfileTags(p)

	if available.Len() == 0 {
		available.Add(RoleClient)
	}

	if p.CriteriaCompleted != nil || p.HasIdentityDocument() {
		available.Add(RoleFourmiz)
	}

	return available
}

// StrongProviderReadiness reports whether the account shows strong signals
// of provider intent: an uploaded identity document, completed provider
// criteria, a filled address, or a configured service radius.
func StrongProviderReadiness(p profile.Profile) bool {
	if p.HasIdentityDocument() {
		return true
	}
	if p.CriteriaCompleted != nil && *p.CriteriaCompleted {
		return true
	}
	if p.Address != "" {
		return true
	}
	return p.RadiusKm > 0
}

// ResolveInitialRole picks the role the UI should render first. Pure and
// deterministic; now is passed in so account-age checks do not depend on the
// wall clock.
//
// Preference order, first match wins:
//
//  1. Strong provider readiness with fourmiz available: a provider who went
//     through onboarding lands on the provider side.
//  2. A persisted preference for an account older than PersistedRoleMinAge,
//     provided the preference is still a member of the available set. The
//     persisted value is re-validated here rather than trusted blindly,
//     because the available set may have shrunk since it was written.
//  3. Fourmiz available: the provider role wins ties for accounts with no
//     usable preference.
//  4. Client.
//
// Note the persisted preference deliberately outranks the soft fourmiz tie
// break: a returning dual-role user who last acted as a client stays a
// client.
func ResolveInitialRole(p profile.Profile, persisted Role, now time.Time) Role {
	available := ResolveAvailableRoles(p)

	if StrongProviderReadiness(p) && available.Has(RoleFourmiz) {
		return RoleFourmiz
	}

	if persisted.Valid() && available.Has(persisted) && p.Age(now) > PersistedRoleMinAge {
		return persisted
	}

	if available.Has(RoleFourmiz) {
		return RoleFourmiz
	}

	return RoleClient
}
