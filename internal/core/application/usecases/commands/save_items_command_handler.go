package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

const (
	itemHistoryFieldAdded   = "item_added"
	itemHistoryFieldRemoved = "item_removed"
)

// SaveItemsResult lists the items whose rows were written.
type SaveItemsResult struct {
	HeaderSaved bool
	Saved       []kernel.UUID
	Records     []*history.Record

	// HistoryErr is a PartialFailureError when rows were written without some of
	// their item history records.
	HistoryErr error
}

// SaveItemsCommandHandler writes item rows one by one, each followed by its history
// records. A failed row write stops the save; rows written before it stay written.
type SaveItemsCommandHandler struct {
	store  Store
	clock  func() time.Time
	logger *zap.Logger
}

func NewSaveItemsCommandHandler(store Store, clock func() time.Time, logger *zap.Logger) SaveItemsCommandHandler {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return SaveItemsCommandHandler{
		store:  store,
		clock:  clock,
		logger: logger.With(zap.String("component", "save_items_handler")),
	}
}

func (h SaveItemsCommandHandler) Handle(ctx context.Context, cmd SaveItemsCommand) (SaveItemsResult, error) {
	if err := cmd.Validate(); err != nil {
		return SaveItemsResult{}, err
	}

	var (
		result   SaveItemsResult
		failures []error
		now      = h.clock()
	)
	appendRecord := func(itemID kernel.UUID, field, oldValue, newValue string) {
		record, err := history.NewRecord(history.Entry{
			Stream:   history.StreamItemField,
			OrderID:  cmd.OrderID(),
			ItemID:   &itemID,
			Field:    field,
			OldValue: oldValue,
			NewValue: newValue,
			Actor:    cmd.Actor(),
			At:       now,
		})
		if err == nil {
			err = h.store.HistoryRepository().Append(ctx, record)
		}
		if err != nil {
			failures = append(failures, fmt.Errorf("item %s %s: %w", itemID, field, err))
			return
		}
		result.Records = append(result.Records, record)
	}
	finish := func(primary error) (SaveItemsResult, error) {
		if len(failures) > 0 {
			result.HistoryErr = errs.NewPartialFailureError("append item history", errors.Join(failures...))
			h.logger.Warn("items saved without history",
				zap.String("order_id", cmd.OrderID().String()),
				zap.Error(result.HistoryErr))
		}
		return result, primary
	}

	if header := cmd.Header(); header != nil {
		if err := h.store.OrderRepository().UpdateHeader(ctx, header); err != nil {
			return finish(errs.NewPersistenceError("update order header", err))
		}
		result.HeaderSaved = true
	}

	for _, it := range cmd.Added() {
		if err := h.store.ItemRepository().Add(ctx, it); err != nil {
			return finish(errs.NewPersistenceError("add item "+it.Code(), err))
		}
		result.Saved = append(result.Saved, it.ID())
		appendRecord(it.ID(), itemHistoryFieldAdded, "", it.Code())
	}

	for _, it := range cmd.Removed() {
		if err := h.store.ItemRepository().Update(ctx, it); err != nil {
			return finish(errs.NewPersistenceError("remove item "+it.Code(), err))
		}
		result.Saved = append(result.Saved, it.ID())
		appendRecord(it.ID(), itemHistoryFieldRemoved, it.Code(), "")
	}

	for _, edit := range cmd.Edited() {
		if err := h.store.ItemRepository().Update(ctx, edit.Item); err != nil {
			return finish(errs.NewPersistenceError("update item "+edit.Item.Code(), err))
		}
		result.Saved = append(result.Saved, edit.Item.ID())
		for _, ch := range edit.Changes {
			appendRecord(edit.Item.ID(), string(ch.Field), ch.Old, ch.New)
		}
	}

	return finish(nil)
}
