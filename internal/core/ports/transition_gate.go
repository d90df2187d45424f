package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// ReleaseFunc releases a gate slot. It is safe to call more than once.
type ReleaseFunc func()

// TransitionGate admits at most one transition per order at a time. When the order
// is busy TryAcquire fails immediately with an errs.ConflictError; it never waits.
type TransitionGate interface {
	TryAcquire(ctx context.Context, orderID kernel.UUID) (ReleaseFunc, error)
}
