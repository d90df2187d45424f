package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrCompletionBlocked is returned when completing an order with pending items and
	// no justification. Callers should prompt for a justification.
	ErrCompletionBlocked = errors.New("order has pending items")

	// ErrExceptionBlocked is returned when an exception is requested without a comment
	// and a responsible party.
	ErrExceptionBlocked = errors.New("exception needs a comment and a responsible party")
)

// Origin tells how a transition was requested.
type Origin string

const (
	// OriginExplicit is a status picked by a user.
	OriginExplicit Origin = "explicit"
	// OriginPhaseDrop is a card dropped on a board column; it names a phase.
	OriginPhaseDrop Origin = "phase_drop"
	// OriginCascade is issued by item rules and is not subject to phase authorization.
	OriginCascade Origin = "cascade"
)

func (o Origin) Validate() error {
	switch o {
	case OriginExplicit, OriginPhaseDrop, OriginCascade:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("origin", fmt.Errorf("%q is not a transition origin", string(o)))
}

// NeedsAuthorization reports whether the phase authorizer must be consulted.
func (o Origin) NeedsAuthorization() bool {
	return o != OriginCascade
}

// TransitionRequest is what a caller asks the policy to plan.
type TransitionRequest struct {
	Origin Origin

	// TargetStatus is used by explicit and cascade origins.
	TargetStatus order.Status

	// TargetPhase is used by the phase-drop origin.
	TargetPhase order.Phase

	Justification string
	Comment       string
	Responsible   string
	Actor         string
}

// TransitionPlan is the validated outcome of a request. Nothing in it has been
// persisted or applied to the order yet.
type TransitionPlan struct {
	From      order.Status
	To        order.Status
	FromPhase order.Phase
	ToPhase   order.Phase

	// Noop is set when the request resolves to the current status or phase.
	Noop bool

	// Deadline is the new delivery deadline to write together with the status.
	Deadline *time.Time

	CompletionNote *order.CompletionNote
	Comment        *order.Comment
}

// LeavesPhase reports whether the plan moves the order to another phase.
func (p TransitionPlan) LeavesPhase() bool {
	return p.FromPhase != p.ToPhase
}

// TransitionPolicy validates transitions. All checks run before the caller touches
// storage, so a rejected request never produces a partial write.
type TransitionPolicy struct {
	sla   SLAPolicy
	clock func() time.Time
}

// NewTransitionPolicy creates a policy. A nil clock uses time.Now.
func NewTransitionPolicy(sla SLAPolicy, clock func() time.Time) TransitionPolicy {
	if clock == nil {
		clock = time.Now
	}
	return TransitionPolicy{sla: sla, clock: clock}
}

// Plan resolves the target of req against o and runs the completion gate, the
// exception gate and the deadline derivation.
func (p TransitionPolicy) Plan(o *order.Order, req TransitionRequest) (TransitionPlan, error) {
	if err := o.Validate(); err != nil {
		return TransitionPlan{}, err
	}
	if err := req.Origin.Validate(); err != nil {
		return TransitionPlan{}, err
	}

	plan := TransitionPlan{From: o.Status(), FromPhase: o.Phase()}

	target, noop, err := p.resolve(o, req)
	if err != nil {
		return TransitionPlan{}, err
	}
	plan.To = target
	plan.ToPhase = order.PhaseOf(target)
	if noop {
		plan.Noop = true
		return plan, nil
	}

	now := p.clock()

	if target.RequiresCompletionGate() {
		note, err := p.completionGate(o, req, now)
		if err != nil {
			return TransitionPlan{}, err
		}
		plan.CompletionNote = note
	}

	if target.RequiresExceptionGate() {
		comment, err := order.NewExceptionComment(o.ID(), req.Comment, req.Responsible, req.Actor, now)
		if err != nil {
			return TransitionPlan{}, fmt.Errorf("%w: %w", ErrExceptionBlocked, err)
		}
		plan.Comment = comment
	}

	if plan.ToPhase.IsTimeSensitive() && (plan.LeavesPhase() || o.Deadline() == nil) {
		deadline := p.sla.DeadlineFrom(now, o.Type())
		plan.Deadline = &deadline
	}

	return plan, nil
}

func (p TransitionPolicy) resolve(o *order.Order, req TransitionRequest) (order.Status, bool, error) {
	if req.Origin == OriginPhaseDrop {
		if err := req.TargetPhase.Validate(); err != nil {
			return "", false, err
		}
		if req.TargetPhase == o.Phase() {
			return o.Status(), true, nil
		}
		return req.TargetPhase.DefaultStatus(), false, nil
	}

	if err := req.TargetStatus.Validate(); err != nil {
		return "", false, err
	}
	return req.TargetStatus, req.TargetStatus == o.Status(), nil
}

func (p TransitionPolicy) completionGate(o *order.Order, req TransitionRequest, now time.Time) (*order.CompletionNote, error) {
	pending := o.PendingItems()
	if len(pending) == 0 {
		return nil, nil
	}
	if strings.TrimSpace(req.Justification) == "" {
		return nil, fmt.Errorf("%w: %w", ErrCompletionBlocked,
			errs.NewValueIsRequiredErrorWithCause("completion justification",
				fmt.Errorf("%d items are not fully delivered", len(pending))))
	}
	return order.NewCompletionNote(o.ID(), req.Justification, req.Actor, pending, now)
}
