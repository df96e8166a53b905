package profile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourmiz/fourmiz-idm/pkg/errors"
)

func TestNormalize(t *testing.T) {
	accountID := uuid.New()

	t.Run("FullRecord", func(t *testing.T) {
		created := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
		completed := true
		radius := 25.0

		raw := RawProfile{
			ID:                accountID.String(),
			Roles:             json.RawMessage(`["client","fourmiz"]`),
			FirstName:         "  Marie ",
			LastName:          "Dubois",
			Email:             "marie@example.com",
			Phone:             "+33612345678",
			Address:           "8 rue Oberkampf, Paris",
			IDDocumentPath:    "/docs/id.pdf",
			ProfileCompleted:  &completed,
			CriteriaCompleted: &completed,
			RadiusKm:          &radius,
			CreatedAt:         &created,
		}

		p, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, accountID, p.AccountID)
		assert.Equal(t, []string{"client", "fourmiz"}, p.Roles)
		assert.Equal(t, "Marie", p.FirstName)
		assert.True(t, p.ProfileCompleted)
		require.NotNil(t, p.CriteriaCompleted)
		assert.True(t, *p.CriteriaCompleted)
		assert.Equal(t, 25.0, p.RadiusKm)
		assert.Equal(t, created, p.CreatedAt)
	})

	t.Run("MissingAccountID", func(t *testing.T) {
		_, err := Normalize(RawProfile{})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
	})

	t.Run("MalformedAccountID", func(t *testing.T) {
		_, err := Normalize(RawProfile{ID: "not-a-uuid"})
		assert.Error(t, err)
	})

	t.Run("AbsentCriteriaStaysNil", func(t *testing.T) {
		p, err := Normalize(RawProfile{ID: accountID.String()})
		require.NoError(t, err)
		assert.Nil(t, p.CriteriaCompleted)
	})

	t.Run("NegativeRadiusDropped", func(t *testing.T) {
		radius := -3.0
		p, err := Normalize(RawProfile{ID: accountID.String(), RadiusKm: &radius})
		require.NoError(t, err)
		assert.Zero(t, p.RadiusKm)
	})
}

func TestNormalizeRoles(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"Absent", "", []string{}},
		{"Null", "null", []string{}},
		{"EmptyArray", "[]", []string{}},
		{"Recognized", `["client","fourmiz"]`, []string{"client", "fourmiz"}},
		{"MixedCaseAndSpace", `[" Client","FOURMIZ "]`, []string{"client", "fourmiz"}},
		{"UnknownDropped", `["client","admin","moderator"]`, []string{"client"}},
		{"Duplicates", `["fourmiz","fourmiz","client"]`, []string{"fourmiz", "client"}},
		{"BareString", `"fourmiz"`, []string{"fourmiz"}},
		{"NonArrayObject", `{"role":"client"}`, []string{}},
		{"Number", `42`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeRoles(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateFormats(t *testing.T) {
	t.Run("Clean", func(t *testing.T) {
		problems := ValidateFormats(Profile{
			Email: "marie@example.com",
			Phone: "+33612345678",
		})
		assert.Empty(t, problems)
	})

	t.Run("BadEmailAndPhone", func(t *testing.T) {
		problems := ValidateFormats(Profile{
			Email: "not-an-email",
			Phone: "06 12 34",
		})
		assert.Contains(t, problems, "email")
		assert.Contains(t, problems, "phone")
	})

	t.Run("EmptyFieldsSkipped", func(t *testing.T) {
		assert.Empty(t, ValidateFormats(Profile{}))
	})

	t.Run("RadiusOutOfRange", func(t *testing.T) {
		problems := ValidateFormats(Profile{RadiusKm: 1000})
		assert.Contains(t, problems, "radius_km")
	})
}
