// Package services holds the domain services of the fulfillment pipeline: rules that
// read more than one aggregate or that must be shared by several use cases.
//
// The package includes:
//   - StatusPhaseMapper: the shared status -> phase entry point, warning on unknown statuses
//   - TransitionPolicy: target resolution, completion and exception gates, deadline derivation
//   - CascadeRules: order-level effects of item status changes
//   - ChangeTracker: unsaved-changes detection for an edit session
//   - SLAPolicy: delivery SLA per order type
package services
