package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrSaveItemsCommandIsNotConstructed = errors.New(
		"SaveItemsCommand must be created via NewSaveItemsCommand constructor",
	)
	ErrNothingToSave = errors.New("nothing to save")
)

// FieldChange is one tracked item field that differs from the clean snapshot.
type FieldChange struct {
	Field order.ItemField
	Old   string
	New   string
}

// ItemEdit is an existing item with its changed fields.
type ItemEdit struct {
	Item    *order.Item
	Changes []FieldChange
}

// SaveItemsCommand persists the unsaved item edits of an edit session: new items,
// soft removals, field edits and, when Header is set, the order priority and deadline.
type SaveItemsCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   string

	added   []*order.Item
	removed []*order.Item
	edited  []ItemEdit
	header  *order.Order

	guard guard.ConstructorGuard
}

func NewSaveItemsCommand(
	orderID kernel.UUID,
	actor string,
	added, removed []*order.Item,
	edited []ItemEdit,
	header *order.Order,
) (SaveItemsCommand, error) {
	var actorErr error
	if strings.TrimSpace(actor) == "" {
		actorErr = errs.NewValueIsRequiredError("actor")
	}
	if err := errors.Join(orderID.Validate(), actorErr); err != nil {
		return SaveItemsCommand{}, err
	}
	if len(added) == 0 && len(removed) == 0 && len(edited) == 0 && header == nil {
		return SaveItemsCommand{}, ErrNothingToSave
	}
	for _, it := range append(append([]*order.Item{}, added...), removed...) {
		if !it.OrderID().IsEqual(orderID) {
			return SaveItemsCommand{}, errs.NewValueIsInvalidError("item of another order")
		}
	}

	return SaveItemsCommand{
		orderID: orderID,
		actor:   strings.TrimSpace(actor),
		added:   added,
		removed: removed,
		edited:  edited,
		header:  header,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c SaveItemsCommand) Validate() error {
	return c.guard.Validate(ErrSaveItemsCommandIsNotConstructed)
}

func (c SaveItemsCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c SaveItemsCommand) Actor() string {
	return c.actor
}

func (c SaveItemsCommand) Added() []*order.Item {
	return c.added
}

func (c SaveItemsCommand) Removed() []*order.Item {
	return c.removed
}

func (c SaveItemsCommand) Edited() []ItemEdit {
	return c.edited
}

func (c SaveItemsCommand) Header() *order.Order {
	return c.header
}

// TouchesItems reports whether any item row is written.
func (c SaveItemsCommand) TouchesItems() bool {
	return len(c.added)+len(c.removed)+len(c.edited) > 0
}
