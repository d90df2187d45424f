package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// ItemStatus is the sub-lifecycle of a single item. It is independent of the
// order status, but cascade rules read it:
//
//	pending -> in_stock | awaiting_production | purchase_required -> completed
type ItemStatus string

const (
	ItemPending            ItemStatus = "pending"
	ItemInStock            ItemStatus = "in_stock"
	ItemAwaitingProduction ItemStatus = "awaiting_production"
	ItemPurchaseRequired   ItemStatus = "purchase_required"
	ItemCompleted          ItemStatus = "completed"
)

var itemStatusPhases = map[ItemStatus]Phase{
	ItemPending:            PhaseOrderGeneration,
	ItemPurchaseRequired:   PhasePurchasing,
	ItemAwaitingProduction: PhaseProduction,
	ItemInStock:            PhaseWarehouse,
	ItemCompleted:          PhaseCompleted,
}

func (s ItemStatus) Validate() error {
	if _, ok := itemStatusPhases[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("item status", fmt.Errorf("%q is not a declared item status", string(s)))
	}
	return nil
}

// Phase is the pipeline phase an item in this status belongs to.
func (s ItemStatus) Phase() Phase {
	return itemStatusPhases[s]
}

// CanMoveTo reports whether the item lifecycle allows s -> next. Staying in the
// same status is always allowed; callers treat it as a no-op.
func (s ItemStatus) CanMoveTo(next ItemStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case ItemPending:
		return next != ItemCompleted
	case ItemInStock, ItemAwaitingProduction, ItemPurchaseRequired:
		return next != ItemPending
	default:
		return false
	}
}

func (s ItemStatus) String() string {
	return string(s)
}

// ParseItemStatus converts external input into a declared ItemStatus.
func ParseItemStatus(raw string) (ItemStatus, error) {
	s := ItemStatus(raw)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}
