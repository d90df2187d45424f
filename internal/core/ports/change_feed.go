package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// Table names a row store table that emits change events.
type Table string

const (
	TableOrders             Table = "orders"
	TableOrderItems         Table = "order_items"
	TableOrderStatusHistory Table = "order_status_history"
	TableOrderItemHistory   Table = "order_item_history"
	TableOrderChanges       Table = "order_changes"
	TableOrderComments      Table = "order_comments"
	TableCompletionNotes    Table = "order_completion_notes"
)

// Op is the kind of row change.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// ChangeEvent is a row change scoped to an order. Delivery is eventual and unordered.
type ChangeEvent struct {
	Table   Table
	Op      Op
	OrderID kernel.UUID
	RowID   kernel.UUID
	At      time.Time
}

// Subscription is a live stream of events for one table and one order.
type Subscription interface {
	Events() <-chan ChangeEvent
	Close() error
}

// ChangeFeed delivers change events filtered by table and order.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table Table, orderID kernel.UUID) (Subscription, error)
}

// ChangePublisher is the write side of the feed, used by the row store adapters.
type ChangePublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}
