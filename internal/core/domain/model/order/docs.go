// Package order provides the Order aggregate of the fulfillment pipeline together
// with its items, the status catalog and the status -> phase lookup table.
//
// The package includes:
//   - Order: the aggregate root holding status, priority, deadline, watched fields and items
//   - Item: an order line with its own sub-lifecycle (ItemStatus) and per-phase start stamps
//   - Status and Phase: the closed status catalog and the coarse board phases derived from it
//   - CompletionNote and Comment: the records required by the completion and exception gates
//
// Key business rules:
//   - The phase is never stored; PhaseOf(status) is the only way to obtain it
//   - Unknown statuses read from storage map to DefaultPhase instead of failing
//   - Items are added or removed only in order generation or purchasing, and never deleted
//   - Per-phase start stamps and the production release stamp are written at most once
package order
