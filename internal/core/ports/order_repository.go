// Package ports defines the contracts between the fulfillment core and the outside
// world: the row store, the change feed, notifications, authorization and the
// transition gate.
package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository persists order rows. Every method is a single independent write or
// read; callers that need atomicity go through a UnitOfWork.
type OrderRepository interface {
	// Add inserts the order row. Items are stored through ItemRepository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get loads the order with all its items, removed ones included.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateStatus writes status and, when non-nil, the deadline in one row update.
	UpdateStatus(ctx context.Context, id kernel.UUID, status order.Status, deadline *time.Time) error

	// UpdateField writes one watched text field.
	UpdateField(ctx context.Context, id kernel.UUID, field order.Field, value string) error

	// UpdateHeader writes priority and deadline.
	UpdateHeader(ctx context.Context, aggregate *order.Order) error

	// MarkProductionReleased sets production_released_at unless it is already set.
	// It reports whether this call set it.
	MarkProductionReleased(ctx context.Context, id kernel.UUID, at time.Time) (bool, error)

	// ListByStatuses returns orders whose status is in statuses, without items,
	// oldest first.
	ListByStatuses(ctx context.Context, statuses []order.Status) ([]*order.Order, error)

	// ListOverdue returns orders whose deadline is before now, without items.
	ListOverdue(ctx context.Context, now time.Time) ([]*order.Order, error)
}

// ItemRepository persists item rows.
type ItemRepository interface {
	Add(ctx context.Context, item *order.Item) error

	// Update writes every column of the item, including status, phase stamps and removal.
	Update(ctx context.Context, item *order.Item) error

	Get(ctx context.Context, id kernel.UUID) (*order.Item, error)

	// ListByOrder returns the items of an order in creation order, removed ones included.
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*order.Item, error)
}
