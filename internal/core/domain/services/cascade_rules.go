package services

import (
	"time"

	"fulfillment/internal/core/domain/model/order"
)

// ItemChange describes what an item status change did and what it requires from
// the order.
type ItemChange struct {
	Changed bool
	From    order.ItemStatus
	To      order.ItemStatus

	// PhaseStamped is set when the item received its first stamp for its new phase.
	PhaseStamped bool

	// ProductionReleased is set when the order got its one-time production release stamp.
	ProductionReleased bool

	// OrderTarget is the order status the cascade asks for, nil when the order stays.
	OrderTarget *order.Status
}

// CascadeRules applies item status changes and derives their order-level effects.
//
// Rules:
//   - re-entering the current item status does nothing
//   - purchase_required moves the order to purchase_required unless it is already in purchasing
//   - awaiting_production stamps the production phase on the item and, once per order,
//     productionReleasedAt on the order
type CascadeRules struct{}

func NewCascadeRules() CascadeRules {
	return CascadeRules{}
}

// Apply mutates item and o in memory. Callers pass clones and only adopt them after
// the item write succeeded.
func (CascadeRules) Apply(o *order.Order, item *order.Item, next order.ItemStatus, at time.Time) (ItemChange, error) {
	change := ItemChange{From: item.Status(), To: next}

	changed, err := item.ChangeStatus(next)
	if err != nil {
		return ItemChange{}, err
	}
	if !changed {
		return change, nil
	}
	change.Changed = true
	change.PhaseStamped = item.StampPhase(next.Phase(), at)

	switch next {
	case order.ItemPurchaseRequired:
		if o.Phase() != order.PhasePurchasing {
			target := order.StatusPurchaseRequired
			change.OrderTarget = &target
		}
	case order.ItemAwaitingProduction:
		change.ProductionReleased = o.MarkProductionReleased(at)
	}

	return change, nil
}
