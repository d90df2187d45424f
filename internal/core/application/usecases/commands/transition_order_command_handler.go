package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

// ErrPhaseNotAuthorized is returned when the actor may not move orders into the target phase.
var ErrPhaseNotAuthorized = errors.New("not authorized to edit phase")

// TransitionResult reports what a transition did.
type TransitionResult struct {
	// Order is the order after the transition. When Changed is false it is the
	// order as loaded.
	Order *order.Order

	From    order.Status
	To      order.Status
	Changed bool

	// Deadline is set when the transition derived a new delivery deadline.
	Deadline *time.Time

	// Record, Note and Comment are the dependents that were appended.
	Record  *history.Record
	Note    *order.CompletionNote
	Comment *order.Comment

	// HistoryErr is a PartialFailureError when the status was written but a history
	// record, completion note or comment was not. The status is kept.
	HistoryErr error
}

// TransitionDeps groups the collaborators shared by the transition handlers.
type TransitionDeps struct {
	Store      Store
	Gate       ports.TransitionGate
	Authorizer ports.PhaseAuthorizer
	Notifier   ports.Notifier
	Policy     services.TransitionPolicy
	Logger     *zap.Logger
	Clock      func() time.Time
}

// transitioner runs a planned transition once the gate is held.
type transitioner struct {
	deps   TransitionDeps
	logger *zap.Logger
}

func newTransitioner(deps TransitionDeps, component string) transitioner {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return transitioner{deps: deps, logger: deps.Logger.With(zap.String("component", component))}
}

// TransitionOrderCommandHandler is the transition engine for explicit and drop
// transitions.
//
// Order of operations:
//   - acquire the per-order gate, or fail with a ConflictError
//   - load the order and plan the transition (all validation happens here)
//   - ask the authorizer when the target phase differs from the current one
//   - write status and deadline in one row update; on failure nothing is applied
//   - append history, completion note and comment; failures are reported, not retried
type TransitionOrderCommandHandler struct {
	transitioner
}

// NewTransitionOrderCommandHandler creates the handler.
func NewTransitionOrderCommandHandler(deps TransitionDeps) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{transitioner: newTransitioner(deps, "transition_order_handler")}
}

// Handle runs the transition described by cmd.
func (h TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	release, err := h.deps.Gate.TryAcquire(ctx, cmd.OrderID())
	if err != nil {
		return TransitionResult{}, err
	}
	defer release()

	o, err := h.deps.Store.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return TransitionResult{}, err
	}

	return h.transition(ctx, o, cmd.request())
}

// transition must be called with the gate held. o is not modified unless the status
// write succeeds.
func (t transitioner) transition(ctx context.Context, o *order.Order, req services.TransitionRequest) (TransitionResult, error) {
	plan, err := t.deps.Policy.Plan(o, req)
	if err != nil {
		return TransitionResult{}, err
	}

	result := TransitionResult{Order: o, From: plan.From, To: plan.To}
	if plan.Noop {
		return result, nil
	}

	// Explicit and drop moves need the target phase granted. Within a phase the
	// target is the current phase.
	if req.Origin.NeedsAuthorization() {
		allowed, err := t.deps.Authorizer.CanEditPhase(ctx, req.Actor, plan.ToPhase)
		if err != nil {
			return TransitionResult{}, err
		}
		if !allowed {
			return TransitionResult{}, fmt.Errorf("%w: %s", ErrPhaseNotAuthorized, plan.ToPhase)
		}
	}

	if err = t.deps.Store.OrderRepository().UpdateStatus(ctx, o.ID(), plan.To, plan.Deadline); err != nil {
		perr := errs.NewPersistenceError("update order status", err)
		t.notify(ctx, ports.Notification{
			Level:   ports.LevelError,
			OrderID: o.ID(),
			Actor:   req.Actor,
			Message: fmt.Sprintf("Could not change status to %s", plan.To),
		})
		return TransitionResult{}, perr
	}

	if err = o.ChangeStatus(plan.To, plan.Deadline); err != nil {
		return TransitionResult{}, err
	}
	result.Changed = true
	result.Deadline = plan.Deadline

	result.HistoryErr = t.appendDependents(ctx, o, plan, req, &result)
	if result.HistoryErr != nil {
		t.logger.Warn("status written without its history",
			zap.String("order_id", o.ID().String()),
			zap.String("status", string(plan.To)),
			zap.Error(result.HistoryErr))
		t.notify(ctx, ports.Notification{
			Level:   ports.LevelWarning,
			OrderID: o.ID(),
			Actor:   req.Actor,
			Message: fmt.Sprintf("Status changed to %s, but its history could not be saved", plan.To),
		})
		return result, nil
	}

	t.notify(ctx, ports.Notification{
		Level:   ports.LevelSuccess,
		OrderID: o.ID(),
		Actor:   req.Actor,
		Message: fmt.Sprintf("Status changed to %s", plan.To),
	})
	return result, nil
}

func (t transitioner) appendDependents(
	ctx context.Context,
	o *order.Order,
	plan services.TransitionPlan,
	req services.TransitionRequest,
	result *TransitionResult,
) error {
	var failures []error

	note := req.Justification
	if plan.Comment != nil {
		note = plan.Comment.Body()
	}
	record, err := history.NewRecord(history.Entry{
		Stream:   history.StreamStatus,
		OrderID:  o.ID(),
		Field:    history.FieldStatus,
		OldValue: string(plan.From),
		NewValue: string(plan.To),
		Actor:    req.Actor,
		At:       t.deps.Clock(),
		Note:     note,
	})
	if err == nil {
		err = t.deps.Store.HistoryRepository().Append(ctx, record)
	}
	if err != nil {
		failures = append(failures, fmt.Errorf("status history: %w", err))
	} else {
		result.Record = record
	}

	if plan.CompletionNote != nil {
		if err = t.deps.Store.NoteRepository().AddCompletionNote(ctx, plan.CompletionNote); err != nil {
			failures = append(failures, fmt.Errorf("completion note: %w", err))
		} else {
			result.Note = plan.CompletionNote
		}
	}

	if plan.Comment != nil {
		if err = t.deps.Store.NoteRepository().AddComment(ctx, plan.Comment); err != nil {
			failures = append(failures, fmt.Errorf("exception comment: %w", err))
		} else {
			result.Comment = plan.Comment
		}
	}

	if len(failures) == 0 {
		return nil
	}
	return errs.NewPartialFailureError("append transition records", errors.Join(failures...))
}

func (t transitioner) notify(ctx context.Context, n ports.Notification) {
	if t.deps.Notifier == nil {
		return
	}
	if err := t.deps.Notifier.Notify(ctx, n); err != nil {
		t.logger.Warn("notification failed", zap.String("level", string(n.Level)), zap.Error(err))
	}
}
