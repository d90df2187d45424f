// Package editing keeps the in-memory state of an order that somebody is editing.
//
// An edit Session owns three collaborators:
//   - AutosaveFieldSync: debounced writes of watched text fields, skipping values
//     that equal the last persisted one
//   - services.ChangeTracker: unsaved item and header edits, checked before close
//   - Reconciler: change feed subscriptions for status history, item history and
//     item rows, with one single-use EchoFlag per stream
//
// Sessions are serialized by their own mutex, the way a UI event loop serializes
// handlers. Writes go through the command handlers; reloads fetch outside the lock
// and are dropped when the session closed in the meantime.
//
// Concurrent editors are not ordered: the last feed event observed wins, and a reload
// never overwrites item fields that are modified locally.
package editing
