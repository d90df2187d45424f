package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetOrderHistoryQueryIsNotConstructed = errors.New(
		"GetOrderHistoryQuery must be created via NewGetOrderHistoryQuery constructor",
	)
)

// GetOrderHistoryQuery reads one history stream of an order.
//
// Example:
//
//	query, err := NewGetOrderHistoryQuery(orderID, history.StreamStatus, ports.SortDescending)
//	if err != nil {
//	    return err
//	}
//	entries, err := handler.Handle(ctx, query)
type GetOrderHistoryQuery struct {
	orderID kernel.UUID
	stream  history.Stream
	sort    ports.SortOrder

	guard guard.ConstructorGuard
}

func NewGetOrderHistoryQuery(
	orderID kernel.UUID,
	stream history.Stream,
	sort ports.SortOrder,
) (GetOrderHistoryQuery, error) {
	if err := errors.Join(orderID.Validate(), stream.Validate(), sort.Validate()); err != nil {
		return GetOrderHistoryQuery{}, err
	}
	return GetOrderHistoryQuery{
		orderID: orderID,
		stream:  stream,
		sort:    sort,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderHistoryQueryIsNotConstructed)
}

func (q GetOrderHistoryQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetOrderHistoryQuery) Stream() history.Stream {
	return q.stream
}

func (q GetOrderHistoryQuery) Sort() ports.SortOrder {
	return q.sort
}

// GetOrderHistoryQueryResponse is one history entry. ItemID is set on the item stream only.
type GetOrderHistoryQueryResponse struct {
	ID       kernel.UUID
	ItemID   *kernel.UUID
	Field    string
	OldValue string
	NewValue string
	Actor    string
	At       time.Time
	Note     string
}
