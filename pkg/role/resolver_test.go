package role

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourmiz/fourmiz-idm/pkg/profile"
)

var resolverNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// oldProfile returns a profile whose account is comfortably older than
// PersistedRoleMinAge
func oldProfile() profile.Profile {
	return profile.Profile{
		AccountID: uuid.New(),
		Roles:     []string{},
		CreatedAt: resolverNow.Add(-24 * time.Hour),
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func TestResolveAvailableRoles(t *testing.T) {
	t.Run("EmptyRolesDefaultsToClient", func(t *testing.T) {
		p := oldProfile()

		available := ResolveAvailableRoles(p)
		assert.Equal(t, []Role{RoleClient}, available.Roles())
	})

	t.Run("TaggedRolesKept", func(t *testing.T) {
		p := oldProfile()
		p.Roles = []string{"client", "fourmiz"}

		available := ResolveAvailableRoles(p)
		assert.True(t, available.Has(RoleClient))
		assert.True(t, available.Has(RoleFourmiz))
		assert.Equal(t, 2, available.Len())
	})

	t.Run("CriteriaDefinedInfersFourmiz", func(t *testing.T) {
		// Even criteria_completed=false means the account started provider
		// onboarding
		p := oldProfile()
		p.Roles = []string{"client"}
		p.CriteriaCompleted = boolPtr(false)

		available := ResolveAvailableRoles(p)
		assert.True(t, available.Has(RoleFourmiz))
	})

	t.Run("IdentityDocumentInfersFourmiz", func(t *testing.T) {
		p := oldProfile()
		p.IDDocumentPath = "/docs/id-card.pdf"

		available := ResolveAvailableRoles(p)
		assert.True(t, available.Has(RoleClient))
		assert.True(t, available.Has(RoleFourmiz))
	})

	t.Run("NoSignalsNoFourmiz", func(t *testing.T) {
		p := oldProfile()
		p.Roles = []string{"client"}

		available := ResolveAvailableRoles(p)
		assert.False(t, available.Has(RoleFourmiz))
	})

	t.Run("NeverEmpty", func(t *testing.T) {
		available := ResolveAvailableRoles(profile.Profile{})
		require.NotZero(t, available.Len())
		assert.True(t, available.Has(RoleClient))
	})
}

func TestStrongProviderReadiness(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*profile.Profile)
		want   bool
	}{
		{"Empty", func(p *profile.Profile) {}, false},
		{"IdentityDocument", func(p *profile.Profile) { p.IDDocumentPath = "/docs/id.pdf" }, true},
		{"CriteriaTrue", func(p *profile.Profile) { p.CriteriaCompleted = boolPtr(true) }, true},
		{"CriteriaFalse", func(p *profile.Profile) { p.CriteriaCompleted = boolPtr(false) }, false},
		{"Address", func(p *profile.Profile) { p.Address = "12 rue de la Paix, Paris" }, true},
		{"Radius", func(p *profile.Profile) { p.RadiusKm = 15 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := oldProfile()
			tt.mutate(&p)
			assert.Equal(t, tt.want, StrongProviderReadiness(p))
		})
	}
}

func TestResolveInitialRole(t *testing.T) {
	t.Run("NewClientLandsOnClient", func(t *testing.T) {
		p := oldProfile()
		p.Roles = []string{"client"}

		assert.Equal(t, RoleClient, ResolveInitialRole(p, "", resolverNow))
	})

	t.Run("StrongReadinessWinsOverPersistedClient", func(t *testing.T) {
		p := oldProfile()
		p.Roles = []string{"client", "fourmiz"}
		p.IDDocumentPath = "/docs/id.pdf"
		p.Address = "3 avenue des Champs"

		// Completed provider onboarding outranks the stored preference
		assert.Equal(t, RoleFourmiz, ResolveInitialRole(p, RoleClient, resolverNow))
	})

	t.Run("PersistedPreferenceHonoredForOldAccount", func(t *testing.T) {
		p := oldProfile()
		p.Roles = []string{"client"}
		p.CriteriaCompleted = boolPtr(false)

		// Both roles available, no strong readiness: the returning user's
		// last choice wins over the fourmiz tie break
		assert.Equal(t, RoleClient, ResolveInitialRole(p, RoleClient, resolverNow))
	})

	t.Run("PersistedPreferenceIgnoredForFreshAccount", func(t *testing.T) {
		p := oldProfile()
		p.Roles = []string{"client"}
		p.CriteriaCompleted = boolPtr(false)
		p.CreatedAt = resolverNow.Add(-time.Minute)

		// A minute-old account cannot have a trustworthy stored preference;
		// the fourmiz tie break applies instead
		assert.Equal(t, RoleFourmiz, ResolveInitialRole(p, RoleClient, resolverNow))
	})

	t.Run("PersistedRoleNoLongerAvailable", func(t *testing.T) {
		p := oldProfile()
		p.Roles = []string{"client"}

		// fourmiz was stored but the account lost every provider signal
		assert.Equal(t, RoleClient, ResolveInitialRole(p, RoleFourmiz, resolverNow))
	})

	t.Run("FourmizTieBreakWithoutPreference", func(t *testing.T) {
		p := oldProfile()
		p.Roles = []string{"client", "fourmiz"}

		assert.Equal(t, RoleFourmiz, ResolveInitialRole(p, "", resolverNow))
	})

	t.Run("GarbagePersistedValueIgnored", func(t *testing.T) {
		p := oldProfile()
		p.Roles = []string{"client"}

		assert.Equal(t, RoleClient, ResolveInitialRole(p, Role("admin"), resolverNow))
	})

	t.Run("Deterministic", func(t *testing.T) {
		p := oldProfile()
		p.Roles = []string{"fourmiz", "client"}
		p.CriteriaCompleted = boolPtr(true)

		first := ResolveInitialRole(p, RoleClient, resolverNow)
		for i := 0; i < 100; i++ {
			assert.Equal(t, first, ResolveInitialRole(p, RoleClient, resolverNow))
		}
	})

	t.Run("NeverReturnsUnavailableRole", func(t *testing.T) {
		profiles := []profile.Profile{
			{},
			oldProfile(),
			{AccountID: uuid.New(), Roles: []string{"client"}},
			{AccountID: uuid.New(), Roles: []string{"fourmiz"}, IDDocumentPath: "/d.pdf"},
		}
		persisted := []Role{"", RoleClient, RoleFourmiz, Role("bogus")}

		for _, p := range profiles {
			for _, pref := range persisted {
				chosen := ResolveInitialRole(p, pref, resolverNow)
				assert.True(t, ResolveAvailableRoles(p).Has(chosen),
					"chose %s which is not available for %+v", chosen, p)
			}
		}
	})
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		tag  string
		want Role
		ok   bool
	}{
		{"client", RoleClient, true},
		{"fourmiz", RoleFourmiz, true},
		{" Fourmiz ", RoleFourmiz, true},
		{"CLIENT", RoleClient, true},
		{"admin", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.tag)
		assert.Equal(t, tt.ok, ok, "tag %q", tt.tag)
		assert.Equal(t, tt.want, got, "tag %q", tt.tag)
	}
}

func TestRoleSet(t *testing.T) {
	s := NewRoleSet(RoleFourmiz, RoleClient, Role("junk"))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []Role{RoleClient, RoleFourmiz}, s.Roles())
	assert.Equal(t, []string{"client", "fourmiz"}, s.Strings())
	assert.False(t, s.Has(Role("junk")))
}
