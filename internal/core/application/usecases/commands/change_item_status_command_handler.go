package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

// ItemStatusResult reports what an item status change did.
type ItemStatusResult struct {
	Order *order.Order
	Item  *order.Item

	Changed            bool
	ProductionReleased bool

	// Record is the appended item history record, nil when it could not be written.
	Record *history.Record

	// Cascade is set when the change moved the order.
	Cascade *TransitionResult

	// PartialErr is a PartialFailureError when the item row was written but a later
	// independent write (item history, order stamp, cascaded transition) was not.
	PartialErr error
}

// ChangeItemStatusCommandHandler applies item status changes and their cascades.
// It shares the per-order gate with TransitionOrderCommandHandler, so a cascade and a
// user transition never run at the same time for one order.
//
// The item row, the item history record and the order write are independent calls.
type ChangeItemStatusCommandHandler struct {
	transitioner
	rules services.CascadeRules
}

func NewChangeItemStatusCommandHandler(deps TransitionDeps, rules services.CascadeRules) ChangeItemStatusCommandHandler {
	return ChangeItemStatusCommandHandler{
		transitioner: newTransitioner(deps, "change_item_status_handler"),
		rules:        rules,
	}
}

func (h ChangeItemStatusCommandHandler) Handle(ctx context.Context, cmd ChangeItemStatusCommand) (ItemStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return ItemStatusResult{}, err
	}

	release, err := h.deps.Gate.TryAcquire(ctx, cmd.OrderID())
	if err != nil {
		return ItemStatusResult{}, err
	}
	defer release()

	loaded, err := h.deps.Store.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return ItemStatusResult{}, err
	}

	o := loaded.Clone()
	item, ok := o.Item(cmd.ItemID())
	if !ok {
		return ItemStatusResult{}, errs.NewObjectNotFoundError("item", cmd.ItemID())
	}

	now := h.deps.Clock()
	change, err := h.rules.Apply(o, item, cmd.Status(), now)
	if err != nil {
		return ItemStatusResult{}, err
	}
	if !change.Changed {
		return ItemStatusResult{Order: loaded, Item: item}, nil
	}

	if err = h.deps.Store.ItemRepository().Update(ctx, item); err != nil {
		return ItemStatusResult{}, errs.NewPersistenceError("update item status", err)
	}

	result := ItemStatusResult{Order: o, Item: item, Changed: true}
	var failures []error

	record, err := history.NewRecord(history.Entry{
		Stream:   history.StreamItemField,
		OrderID:  o.ID(),
		ItemID:   ptr(item.ID()),
		Field:    history.FieldStatus,
		OldValue: string(change.From),
		NewValue: string(change.To),
		Actor:    cmd.Actor(),
		At:       now,
	})
	if err == nil {
		err = h.deps.Store.HistoryRepository().Append(ctx, record)
	}
	if err != nil {
		failures = append(failures, fmt.Errorf("item history: %w", err))
	} else {
		result.Record = record
	}

	if change.ProductionReleased {
		stamped, err := h.deps.Store.OrderRepository().MarkProductionReleased(ctx, o.ID(), now)
		if err != nil {
			failures = append(failures, fmt.Errorf("production release stamp: %w", err))
		}
		result.ProductionReleased = stamped
	}

	if change.OrderTarget != nil {
		cascade, err := h.transition(ctx, o, services.TransitionRequest{
			Origin:       services.OriginCascade,
			TargetStatus: *change.OrderTarget,
			Actor:        cmd.Actor(),
		})
		if err != nil {
			failures = append(failures, fmt.Errorf("cascade to %s: %w", *change.OrderTarget, err))
		} else {
			result.Cascade = &cascade
		}
	}

	if len(failures) > 0 {
		result.PartialErr = errs.NewPartialFailureError("item status dependents", errors.Join(failures...))
		h.logger.Warn("item status written with missing dependents",
			zap.String("order_id", o.ID().String()),
			zap.String("item_id", item.ID().String()),
			zap.Error(result.PartialErr))
	}

	return result, nil
}

func ptr[T any](v T) *T {
	return &v
}
