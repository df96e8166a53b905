// Package errors provides structured error handling with error codes for fourmiz-idm.
//
// This package standardizes error handling across all packages with typed error
// codes, structured error details, and automatic HTTP status code mapping.
//
// # Basic Usage
//
// Creating errors with codes:
//
//	import "github.com/fourmiz/fourmiz-idm/pkg/errors"
//
//	// Create a simple error
//	err := errors.New(errors.ErrCodeInvalidRole, "unrecognized role")
//
//	// Wrap an existing error
//	err := errors.Wrap(storeErr, errors.ErrCodePersistenceUnavailable, "failed to read preference")
//
//	// Use convenience constructors
//	err := errors.RoleNotAvailable("fourmiz")
//	err := errors.ProfileIncomplete([]string{"phone", "address"})
//
// # Role Selection Errors
//
// The role-switch state machine surfaces its guard failures through dedicated
// codes, all of them non-fatal to the hosting application:
//
//   - ErrCodeInvalidRole - caller asked for an unrecognized role tag
//   - ErrCodeRoleNotAvailable - the account does not hold the requested role
//   - ErrCodeProfileIncomplete - switch blocked pending profile data entry;
//     the missing field names are attached under the "missing_fields" detail
//   - ErrCodeSwitchInProgress - a concurrent switch was rejected
//   - ErrCodePersistenceUnavailable - the preference store failed; resolution
//     proceeds with the computed default
//
// # HTTP Integration
//
// Handlers map errors to responses with HTTPStatusCode:
//
//	if err != nil {
//		var domainErr *errors.Error
//		if stderrors.As(err, &domainErr) {
//			render.Status(r, domainErr.HTTPStatusCode())
//			render.JSON(w, r, domainErr)
//			return
//		}
//	}
package errors
