package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrTransitionOrderCommandIsNotConstructed = errors.New(
		"TransitionOrderCommand must be created via NewStatusTransitionCommand or NewPhaseDropCommand",
	)
)

// TransitionOrderCommand asks to move an order to a status (explicit origin) or to a
// board phase (phase-drop origin). Gate inputs are optional and only read when the
// target needs them.
//
// Example:
//
//	cmd, err := NewPhaseDropCommand(orderID, order.PhaseLogistics, "ana")
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrConflict) {
//	    // another transition is running, ask the user to retry
//	}
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	origin  services.Origin

	targetStatus order.Status
	targetPhase  order.Phase

	actor         string
	justification string
	comment       string
	responsible   string

	guard guard.ConstructorGuard
}

// TransitionOption sets an optional gate input.
type TransitionOption func(*TransitionOrderCommand)

// WithJustification supplies the completion justification for orders with pending items.
func WithJustification(note string) TransitionOption {
	return func(c *TransitionOrderCommand) { c.justification = note }
}

// WithExceptionComment supplies the comment and responsible party required by the exception gate.
func WithExceptionComment(comment, responsible string) TransitionOption {
	return func(c *TransitionOrderCommand) {
		c.comment = comment
		c.responsible = responsible
	}
}

// NewStatusTransitionCommand creates an explicit transition to status.
func NewStatusTransitionCommand(
	orderID kernel.UUID,
	status order.Status,
	actor string,
	opts ...TransitionOption,
) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{origin: services.OriginExplicit, guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		status.Validate(),
		cmd.setActor(actor),
	); err != nil {
		return TransitionOrderCommand{}, err
	}
	cmd.targetStatus = status

	for _, opt := range opts {
		opt(&cmd)
	}
	return cmd, nil
}

// NewPhaseDropCommand creates a transition to the default status of phase.
func NewPhaseDropCommand(
	orderID kernel.UUID,
	phase order.Phase,
	actor string,
	opts ...TransitionOption,
) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{origin: services.OriginPhaseDrop, guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		phase.Validate(),
		cmd.setActor(actor),
	); err != nil {
		return TransitionOrderCommand{}, err
	}
	cmd.targetPhase = phase

	for _, opt := range opts {
		opt(&cmd)
	}
	return cmd, nil
}

// Validate ensures the command was created through a constructor.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c TransitionOrderCommand) Origin() services.Origin {
	return c.origin
}

func (c TransitionOrderCommand) TargetStatus() order.Status {
	return c.targetStatus
}

func (c TransitionOrderCommand) TargetPhase() order.Phase {
	return c.targetPhase
}

func (c TransitionOrderCommand) Actor() string {
	return c.actor
}

func (c TransitionOrderCommand) Justification() string {
	return c.justification
}

func (c TransitionOrderCommand) Comment() string {
	return c.comment
}

func (c TransitionOrderCommand) Responsible() string {
	return c.responsible
}

func (c TransitionOrderCommand) request() services.TransitionRequest {
	return services.TransitionRequest{
		Origin:        c.origin,
		TargetStatus:  c.targetStatus,
		TargetPhase:   c.targetPhase,
		Justification: c.justification,
		Comment:       c.comment,
		Responsible:   c.responsible,
		Actor:         c.actor,
	}
}

func (c *TransitionOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *TransitionOrderCommand) setActor(actor string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return errs.NewValueIsRequiredError("actor")
	}
	c.actor = actor
	return nil
}
