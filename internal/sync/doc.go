// Package sync reconciles a source registry with the package manager's live
// source configuration.
//
// # Core Interfaces
//
//   - Manager: computes and applies the add/remove operations that bring the
//     live state in line with a sources.Registry
//
// # Reconciliation Rules
//
// Plan is a pure function of the registry and a live snapshot:
//
//   - every active source that is not live is added
//   - every inactive source that is live is removed
//   - active sources already live, and inactive sources already absent, are
//     left alone
//
// Live sources the registry does not know about are never touched, and an
// active source is never removed. Applying a plan and then planning again
// against the resulting live state yields an empty plan, so Sync can be run
// repeatedly as long as the registry is not changed in between.
//
// # Failure Handling
//
// Apply stops at the first live-state failure and returns an *Error naming
// the operation and the source. Operations applied before the failure stay
// applied and are reported in the Result returned alongside the error. There
// are no retries.
package sync
