// Package history holds the immutable records of the three append-only logs:
// order status history, item field history and the generic order change log.
package history
