// Package errs provides standardized error types for the fulfillment service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes error types for the failure classes of the order lifecycle:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: validation
//     failures, surfaced before any write is attempted
//   - ConflictError: an operation on the same order is already in flight
//   - PersistenceError: the primary write failed, nothing was applied
//   - PartialFailureError: the primary write succeeded but a dependent write failed
//   - ObjectNotFoundError: a row could not be found
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is works on the class
//
// No error in this package implies a retry. Every failure is terminal for the
// attempt that produced it.
package errs
