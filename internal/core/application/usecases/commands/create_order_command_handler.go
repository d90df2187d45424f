package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// CreateOrderCommandHandler creates an order, its items and its first status record
// in one transaction. This is the only command that spans tables atomically.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      func() time.Time
}

func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, clock func() time.Time) CreateOrderCommandHandler {
	if clock == nil {
		clock = time.Now
	}
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle validates every item before opening the transaction.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := h.clock()
	aggregate, err := order.NewOrder(cmd.OrderID(), cmd.Number(), cmd.Type(), cmd.Priority(), now)
	if err != nil {
		return err
	}
	for _, spec := range cmd.Items() {
		item, err := order.NewItem(kernel.NewUUID(), aggregate.ID(), spec.Code, spec.Description, spec.Requested)
		if err != nil {
			return err
		}
		item.StampPhase(item.CurrentPhase(), now)
		if err = aggregate.AddItem(item); err != nil {
			return err
		}
	}
	record, err := history.NewRecord(history.Entry{
		Stream:   history.StreamStatus,
		OrderID:  aggregate.ID(),
		Field:    history.FieldStatus,
		NewValue: string(aggregate.Status()),
		Actor:    cmd.Actor(),
		At:       now,
	})
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	itemRepo := uow.ItemRepository()
	for _, item := range aggregate.Items() {
		if err = itemRepo.Add(ctx, item); err != nil {
			return err
		}
	}

	if err = uow.HistoryRepository().Append(ctx, record); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
