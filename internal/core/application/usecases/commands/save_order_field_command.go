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
	ErrSaveOrderFieldCommandIsNotConstructed = errors.New(
		"SaveOrderFieldCommand must be created via NewSaveOrderFieldCommand constructor",
	)
)

// SaveOrderFieldCommand persists one watched text field. Previous is the last value
// known to be persisted; it becomes the old value of the history record.
type SaveOrderFieldCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	field    order.Field
	value    string
	previous string
	actor    string

	guard guard.ConstructorGuard
}

func NewSaveOrderFieldCommand(
	orderID kernel.UUID,
	field order.Field,
	value, previous, actor string,
) (SaveOrderFieldCommand, error) {
	var actorErr error
	if strings.TrimSpace(actor) == "" {
		actorErr = errs.NewValueIsRequiredError("actor")
	}
	if err := errors.Join(orderID.Validate(), field.Validate(), actorErr); err != nil {
		return SaveOrderFieldCommand{}, err
	}

	return SaveOrderFieldCommand{
		orderID:  orderID,
		field:    field,
		value:    value,
		previous: previous,
		actor:    strings.TrimSpace(actor),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c SaveOrderFieldCommand) Validate() error {
	return c.guard.Validate(ErrSaveOrderFieldCommandIsNotConstructed)
}

func (c SaveOrderFieldCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c SaveOrderFieldCommand) Field() order.Field {
	return c.field
}

func (c SaveOrderFieldCommand) Value() string {
	return c.value
}

func (c SaveOrderFieldCommand) Previous() string {
	return c.previous
}

func (c SaveOrderFieldCommand) Actor() string {
	return c.actor
}
