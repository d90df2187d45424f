package commands_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// newOrder builds an express order in status with one item per {requested, delivered} pair.
func newOrder(t *testing.T, status order.Status, quantities ...[2]int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), "PO-9", order.TypeExpress, order.PriorityHigh, fixedNow)
	require.NoError(t, err)
	for _, q := range quantities {
		it, err := order.NewItem(kernel.NewUUID(), o.ID(), "SKU", "part", decimal.NewFromInt(q[0]))
		require.NoError(t, err)
		require.NoError(t, it.SetDelivered(decimal.NewFromInt(q[1])))
		require.NoError(t, o.AddItem(it))
	}
	require.NoError(t, o.ChangeStatus(status, nil))
	return o
}

type fixture struct {
	store      *stubStore
	gate       *MockGate
	authorizer *MockAuthorizer
	notifier   *MockNotifier
	released   int
}

func newFixture() *fixture {
	return &fixture{
		store:      newStubStore(),
		gate:       new(MockGate),
		authorizer: new(MockAuthorizer),
		notifier:   new(MockNotifier),
	}
}

func (f *fixture) deps() commands.TransitionDeps {
	return commands.TransitionDeps{
		Store:      f.store,
		Gate:       f.gate,
		Authorizer: f.authorizer,
		Notifier:   f.notifier,
		Policy:     services.NewTransitionPolicy(services.NewSLAPolicy(nil), fixedClock),
		Clock:      fixedClock,
	}
}

// admit lets one transition for orderID through the gate.
func (f *fixture) admit(orderID kernel.UUID) {
	release := ports.ReleaseFunc(func() { f.released++ })
	f.gate.On("TryAcquire", mock.Anything, orderID).Return(release, nil).Once()
}

// grant lets actor edit phase once.
func (f *fixture) grant(actor string, phase order.Phase) {
	f.authorizer.On("CanEditPhase", mock.Anything, actor, phase).Return(true, nil).Once()
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.store.AssertExpectations(t)
	f.gate.AssertExpectations(t)
	f.authorizer.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}
