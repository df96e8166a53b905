package auth

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/errors"
)

// AccountIDFromRequest extracts the authenticated account ID from the JWT
// claims the jwtauth verifier put on the request context. The subject claim
// carries the account UUID; account_id is accepted as a fallback for tokens
// minted by older clients.
func AccountIDFromRequest(r *http.Request) (uuid.UUID, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return uuid.Nil, errors.Unauthorized("missing or invalid token")
	}

	tag := ""
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		tag = sub
	} else if accountID, ok := claims["account_id"].(string); ok && accountID != "" {
		tag = accountID
	}

	if tag == "" {
		return uuid.Nil, errors.Unauthorized("token carries no account id")
	}

	accountID, err := uuid.Parse(tag)
	if err != nil {
		return uuid.Nil, errors.Unauthorized("token account id is not a UUID")
	}

	return accountID, nil
}
