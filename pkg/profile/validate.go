package profile

import (
	"github.com/go-playground/validator/v10"
)

// fieldRules mirrors the optional Profile fields that have a format worth
// checking. Presence is the resolver's concern (see role.CheckProfileCompletion);
// this only rejects values that are present but unusable.
type fieldRules struct {
	Email    string  `validate:"omitempty,email"`
	Phone    string  `validate:"omitempty,e164"`
	RadiusKm float64 `validate:"gte=0,lte=500"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateFormats checks the format of the optional profile fields and
// returns a field -> reason map. An empty map means every present field is
// well-formed. Format problems never fail normalization; callers decide
// whether to surface them.
func ValidateFormats(p Profile) map[string]string {
	problems := make(map[string]string)

	rules := fieldRules{
		Email:    p.Email,
		Phone:    p.Phone,
		RadiusKm: p.RadiusKm,
	}

	err := validate.Struct(rules)
	if err == nil {
		return problems
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		problems["profile"] = err.Error()
		return problems
	}

	for _, fieldErr := range validationErrors {
		switch fieldErr.Field() {
		case "Email":
			problems["email"] = "not a valid email address"
		case "Phone":
			problems["phone"] = "not a valid E.164 phone number"
		case "RadiusKm":
			problems["radius_km"] = "service radius out of range"
		}
	}

	return problems
}
