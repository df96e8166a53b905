// Package session implements the stateful role-switch machinery for
// fourmiz-idm.
//
// A Session wraps the pure resolver in pkg/role with the per-account state
// the UI needs: the lifecycle (Uninitialized -> Resolving -> Ready), the
// active role, the available set, and a guarded SwitchRole operation backed
// by the durable preference store in pkg/rolepref.
//
// # Lifecycle
//
// One session exists per authenticated account, created at login and
// discarded at logout:
//
//	manager := session.NewManager(store)
//	sess, err := manager.Attach(ctx, accountID)
//	snapshot, err := sess.Resolve(ctx, rawProfile)
//
// Attaching a different account discards the previous session and purges
// other accounts' persisted preferences from the device-scoped store.
//
// # Switching roles
//
// SwitchRole checks its guards in order and rejects without state change on
// the first failure:
//
//	result, err := sess.SwitchRole(ctx, role.RoleFourmiz)
//	if errors.IsCode(err, errors.ErrCodeProfileIncomplete) {
//		// route the user to the completion flow
//	}
//
// Only one switch may be in flight; a concurrent request fails with
// ErrCodeSwitchInProgress instead of interleaving with the pending
// preference write. A failed write never rolls back the in-memory switch:
// the store is advisory and is retried on the next commit.
package session
