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
	ErrChangeItemStatusCommandIsNotConstructed = errors.New(
		"ChangeItemStatusCommand must be created via NewChangeItemStatusCommand constructor",
	)
)

// ChangeItemStatusCommand moves an item along its sub-lifecycle and lets the cascade
// rules update the order.
type ChangeItemStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	itemID  kernel.UUID
	status  order.ItemStatus
	actor   string

	guard guard.ConstructorGuard
}

func NewChangeItemStatusCommand(
	orderID, itemID kernel.UUID,
	status order.ItemStatus,
	actor string,
) (ChangeItemStatusCommand, error) {
	cmd := ChangeItemStatusCommand{guard: guard.NewConstructorGuard()}

	var actorErr error
	if strings.TrimSpace(actor) == "" {
		actorErr = errs.NewValueIsRequiredError("actor")
	}
	if err := errors.Join(orderID.Validate(), itemID.Validate(), status.Validate(), actorErr); err != nil {
		return ChangeItemStatusCommand{}, err
	}

	cmd.orderID = orderID
	cmd.itemID = itemID
	cmd.status = status
	cmd.actor = strings.TrimSpace(actor)
	return cmd, nil
}

func (c ChangeItemStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeItemStatusCommandIsNotConstructed)
}

func (c ChangeItemStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ChangeItemStatusCommand) ItemID() kernel.UUID {
	return c.itemID
}

func (c ChangeItemStatusCommand) Status() order.ItemStatus {
	return c.status
}

func (c ChangeItemStatusCommand) Actor() string {
	return c.actor
}
