package commands

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrNumberIsRequired = errors.New("order number is required")
	ErrItemsAreRequired = errors.New("at least one item is required")
)

// NewItemSpec describes an item to create together with its order.
type NewItemSpec struct {
	Code        string
	Description string
	Requested   decimal.Decimal
}

// CreateOrderCommand registers a new order with its items.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), "PO-1042", order.TypeExpress, order.PriorityHigh, "ana",
//	    []NewItemSpec{{Code: "SKU-1", Requested: decimal.NewFromInt(4)}})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	number    string
	orderType order.Type
	priority  order.Priority
	actor     string
	items     []NewItemSpec

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	orderID kernel.UUID,
	number string,
	orderType order.Type,
	priority order.Priority,
	actor string,
	items []NewItemSpec,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		orderType: orderType,
		priority:  priority,
		actor:     strings.TrimSpace(actor),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setNumber(number),
		orderType.Validate(),
		priority.Validate(),
		cmd.setItems(items),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) Number() string {
	return c.number
}

func (c CreateOrderCommand) Type() order.Type {
	return c.orderType
}

func (c CreateOrderCommand) Priority() order.Priority {
	return c.priority
}

func (c CreateOrderCommand) Actor() string {
	return c.actor
}

func (c CreateOrderCommand) Items() []NewItemSpec {
	out := make([]NewItemSpec, len(c.items))
	copy(out, c.items)
	return out
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return ErrNumberIsRequired
	}

	c.number = number
	return nil
}

func (c *CreateOrderCommand) setItems(items []NewItemSpec) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	for i, it := range items {
		if strings.TrimSpace(it.Code) == "" {
			return errs.NewValueIsRequiredError(fmt.Sprintf("items[%d].code", i))
		}
		if !it.Requested.IsPositive() {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d].requested", i),
				fmt.Errorf("%s is not greater than 0", it.Requested))
		}
	}

	c.items = make([]NewItemSpec, len(items))
	copy(c.items, items)
	return nil
}
