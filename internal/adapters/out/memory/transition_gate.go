package memory

import (
	"context"
	"sync"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

var _ ports.TransitionGate = (*TransitionGate)(nil)

// TransitionGate keeps the set of orders with a transition in flight.
type TransitionGate struct {
	mu   sync.Mutex
	busy map[kernel.UUID]struct{}
}

func NewTransitionGate() *TransitionGate {
	return &TransitionGate{busy: make(map[kernel.UUID]struct{})}
}

func (g *TransitionGate) TryAcquire(ctx context.Context, orderID kernel.UUID) (ports.ReleaseFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[orderID]; ok {
		return nil, errs.NewTransitionInFlightError(orderID)
	}
	g.busy[orderID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, orderID)
			g.mu.Unlock()
		})
	}, nil
}
