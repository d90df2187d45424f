package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the fine-grained lifecycle value of an order and the single source of
// truth for where the order sits in the pipeline. The coarse Phase is always
// derived from it with PhaseOf.
//
// Status is a closed set: every declared value appears in phaseTable. Values read
// back from storage that are not declared are tolerated (PhaseOf falls back to
// DefaultPhase) but can never be the target of a transition.
type Status string

// Order generation.
const (
	StatusDraft            Status = "draft"
	StatusNew              Status = "new"
	StatusPendingReview    Status = "pending_review"
	StatusCostEstimate     Status = "cost_estimate"
	StatusOrderGeneration  Status = "order_generation"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusApproved         Status = "approved"
)

// Purchasing.
const (
	StatusPurchaseRequired  Status = "purchase_required"
	StatusPurchaseRequested Status = "purchase_requested"
	StatusPurchaseQuoted    Status = "purchase_quoted"
	StatusPurchaseOrdered   Status = "purchase_ordered"
	StatusAwaitingSupplier  Status = "awaiting_supplier"
	StatusPurchaseReceived  Status = "purchase_received"
)

// Production.
const (
	StatusAwaitingProduction  Status = "awaiting_production"
	StatusProductionScheduled Status = "production_scheduled"
	StatusInProduction        Status = "in_production"
	StatusProductionPaused    Status = "production_paused"
	StatusQualityCheck        Status = "quality_check"
	StatusProductionCompleted Status = "production_completed"
)

// Warehouse.
const (
	StatusSeparation     Status = "separation"
	StatusInSeparation   Status = "in_separation"
	StatusAwaitingStock  Status = "awaiting_stock"
	StatusPacking        Status = "packing"
	StatusPacked         Status = "packed"
	StatusReadyToInvoice Status = "ready_to_invoice"
)

// Invoicing.
const (
	StatusInvoiceRequested Status = "invoice_requested"
	StatusInvoiced         Status = "invoiced"
	StatusInvoiceRejected  Status = "invoice_rejected"
	StatusAwaitingPayment  Status = "awaiting_payment"
)

// Logistics.
const (
	StatusAwaitingPickup    Status = "awaiting_pickup"
	StatusDeliveryScheduled Status = "delivery_scheduled"
	StatusCollected         Status = "collected"
	StatusInTransit         Status = "in_transit"
	StatusOutForDelivery    Status = "out_for_delivery"
	StatusDeliveryFailed    Status = "delivery_failed"
	StatusReturned          Status = "returned"
)

// Terminal and side states.
const (
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
	StatusException Status = "exception"
	StatusOnHold    Status = "on_hold"
	StatusCancelled Status = "cancelled"
)

// IsDeclared reports whether s is one of the declared statuses.
func (s Status) IsDeclared() bool {
	_, ok := phaseTable[s]
	return ok
}

// Validate rejects statuses that are not declared.
func (s Status) Validate() error {
	if !s.IsDeclared() {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a declared status", string(s)))
	}
	return nil
}

func (s Status) String() string {
	return string(s)
}

// RequiresCompletionGate reports whether entering s must pass the pending-items check.
func (s Status) RequiresCompletionGate() bool {
	return s == StatusCompleted
}

// RequiresExceptionGate reports whether entering s needs a comment and a responsible party.
func (s Status) RequiresExceptionGate() bool {
	return s == StatusException
}

// ParseStatus converts external input into a declared Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Statuses returns every declared status in pipeline order.
func Statuses() []Status {
	out := make([]Status, 0, len(phaseTable))
	for _, p := range phaseOrder {
		out = append(out, p.Statuses()...)
	}
	return out
}
