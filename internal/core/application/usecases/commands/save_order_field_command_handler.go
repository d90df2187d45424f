package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

// SaveFieldResult reports an autosave write.
type SaveFieldResult struct {
	// HistoryErr is a PartialFailureError when the field was written but its
	// order_change record was not.
	HistoryErr error
}

// SaveOrderFieldCommandHandler writes a watched field and logs it to the order change
// stream. The length limit is checked before any repository call.
type SaveOrderFieldCommandHandler struct {
	store  Store
	limits order.FieldLimits
	clock  func() time.Time
	logger *zap.Logger
}

func NewSaveOrderFieldCommandHandler(
	store Store,
	limits order.FieldLimits,
	clock func() time.Time,
	logger *zap.Logger,
) SaveOrderFieldCommandHandler {
	if limits == nil {
		limits = order.DefaultFieldLimits()
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return SaveOrderFieldCommandHandler{
		store:  store,
		limits: limits,
		clock:  clock,
		logger: logger.With(zap.String("component", "save_order_field_handler")),
	}
}

// Limits exposes the configured field limits so that callers can validate early.
func (h SaveOrderFieldCommandHandler) Limits() order.FieldLimits {
	return h.limits
}

func (h SaveOrderFieldCommandHandler) Handle(ctx context.Context, cmd SaveOrderFieldCommand) (SaveFieldResult, error) {
	if err := cmd.Validate(); err != nil {
		return SaveFieldResult{}, err
	}
	if err := h.limits.Check(cmd.Field(), cmd.Value()); err != nil {
		return SaveFieldResult{}, err
	}

	if err := h.store.OrderRepository().UpdateField(ctx, cmd.OrderID(), cmd.Field(), cmd.Value()); err != nil {
		return SaveFieldResult{}, errs.NewPersistenceError("update order field "+string(cmd.Field()), err)
	}

	record, err := history.NewRecord(history.Entry{
		Stream:   history.StreamOrderChange,
		OrderID:  cmd.OrderID(),
		Field:    string(cmd.Field()),
		OldValue: cmd.Previous(),
		NewValue: cmd.Value(),
		Actor:    cmd.Actor(),
		At:       h.clock(),
	})
	if err == nil {
		err = h.store.HistoryRepository().Append(ctx, record)
	}
	if err != nil {
		partial := errs.NewPartialFailureError("append order change", err)
		h.logger.Warn("field saved without history",
			zap.String("order_id", cmd.OrderID().String()),
			zap.String("field", string(cmd.Field())),
			zap.Error(err))
		return SaveFieldResult{HistoryErr: partial}, nil
	}

	return SaveFieldResult{}, nil
}
