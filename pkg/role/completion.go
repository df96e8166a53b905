package role

import (
	"math"

	"github.com/fourmiz/fourmiz-idm/pkg/profile"
)

// Field names reported in CompletionStatus.MissingFields
const (
	FieldFirstName           = "firstname"
	FieldLastName            = "lastname"
	FieldEmail               = "email"
	FieldPhone               = "phone"
	FieldAddress             = "address"
	FieldHasIdentityDocument = "has_identity_document"
)

// CompletionStatus reports how complete a profile is for a target role
type CompletionStatus struct {
	IsComplete           bool     `json:"is_complete"`
	MissingFields        []string `json:"missing_fields"`
	CompletionPercentage int      `json:"completion_percentage"`
}

// requiredFields returns the required-field table for a role. The client
// side only needs identity basics; providers additionally need contact and
// verification data before they can take orders.
func requiredFields(target Role) []string {
	base := []string{FieldFirstName, FieldLastName, FieldEmail}
	if target == RoleFourmiz {
		return append(base, FieldPhone, FieldAddress, FieldHasIdentityDocument)
	}
	return base
}

// CheckProfileCompletion evaluates the required-field table for the target
// role against a normalized profile. Pure: it always returns a result, even
// for an empty profile.
func CheckProfileCompletion(p profile.Profile, target Role) CompletionStatus {
	required := requiredFields(target)

	missing := []string{}
	for _, field := range required {
		if !fieldPresent(p, field) {
			missing = append(missing, field)
		}
	}

	total := len(required)
	percentage := int(math.Round(100 * float64(total-len(missing)) / float64(total)))

	return CompletionStatus{
		IsComplete:           len(missing) == 0,
		MissingFields:        missing,
		CompletionPercentage: percentage,
	}
}

func fieldPresent(p profile.Profile, field string) bool {
	switch field {
	case FieldFirstName:
		return p.FirstName != ""
	case FieldLastName:
		return p.LastName != ""
	case FieldEmail:
		return p.Email != ""
	case FieldPhone:
		return p.Phone != ""
	case FieldAddress:
		return p.Address != ""
	case FieldHasIdentityDocument:
		return p.HasIdentityDocument()
	default:
		return false
	}
}
