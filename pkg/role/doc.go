// Package role implements role resolution for fourmiz-idm.
//
// A marketplace account can act as a client (service requester), a fourmiz
// (service provider), or both. This package holds the pure functions that
// decide which roles an account has and which one its session should start
// in; the stateful switch machinery lives in pkg/session.
//
// # Resolution
//
// ResolveAvailableRoles validates a normalized profile's role tags and
// always yields a non-empty set:
//
//	available := role.ResolveAvailableRoles(p)
//	if available.Has(role.RoleFourmiz) {
//		// provider UI is reachable
//	}
//
// ResolveInitialRole then picks the starting role, honoring a persisted
// per-account preference for accounts old enough for it to be trusted:
//
//	initial := role.ResolveInitialRole(p, persisted, time.Now())
//
// Both functions are pure and deterministic, so callers needing a bounded
// resolution time only have to bound the read of the persisted preference.
//
// # Profile completeness
//
// CheckProfileCompletion evaluates the required-field table for a target
// role and reports the missing field names plus a completion percentage.
// Switching to the fourmiz role is gated on IsComplete.
package role
