package commands_test

import (
	"context"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id kernel.UUID, status order.Status, deadline *time.Time) error {
	args := m.Called(ctx, id, status, deadline)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateField(ctx context.Context, id kernel.UUID, field order.Field, value string) error {
	args := m.Called(ctx, id, field, value)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateHeader(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkProductionReleased(ctx context.Context, id kernel.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ListByStatuses(ctx context.Context, statuses []order.Status) ([]*order.Order, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOverdue(ctx context.Context, now time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockItemRepository struct{ mock.Mock }

func (m *MockItemRepository) Add(ctx context.Context, item *order.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Update(ctx context.Context, item *order.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Get(ctx context.Context, id kernel.UUID) (*order.Item, error) {
	args := m.Called(ctx, id)
	if it, ok := args.Get(0).(*order.Item); ok {
		return it, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockItemRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*order.Item, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*order.Item), args.Error(1)
}

type MockHistoryRepository struct{ mock.Mock }

func (m *MockHistoryRepository) Append(ctx context.Context, record *history.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHistoryRepository) List(
	ctx context.Context,
	orderID kernel.UUID,
	stream history.Stream,
	sort ports.SortOrder,
) ([]*history.Record, error) {
	args := m.Called(ctx, orderID, stream, sort)
	return args.Get(0).([]*history.Record), args.Error(1)
}

type MockNoteRepository struct{ mock.Mock }

func (m *MockNoteRepository) AddCompletionNote(ctx context.Context, note *order.CompletionNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) ListCompletionNotes(ctx context.Context, orderID kernel.UUID) ([]*order.CompletionNote, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*order.CompletionNote), args.Error(1)
}

func (m *MockNoteRepository) AddComment(ctx context.Context, comment *order.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockNoteRepository) ListComments(ctx context.Context, orderID kernel.UUID) ([]*order.Comment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*order.Comment), args.Error(1)
}

// stubStore hands out the same mocks on every call.
type stubStore struct {
	orders  *MockOrderRepository
	items   *MockItemRepository
	history *MockHistoryRepository
	notes   *MockNoteRepository
}

func newStubStore() *stubStore {
	return &stubStore{
		orders:  new(MockOrderRepository),
		items:   new(MockItemRepository),
		history: new(MockHistoryRepository),
		notes:   new(MockNoteRepository),
	}
}

func (s *stubStore) OrderRepository() ports.OrderRepository     { return s.orders }
func (s *stubStore) ItemRepository() ports.ItemRepository       { return s.items }
func (s *stubStore) HistoryRepository() ports.HistoryRepository { return s.history }
func (s *stubStore) NoteRepository() ports.NoteRepository       { return s.notes }

func (s *stubStore) AssertExpectations(t mock.TestingT) {
	s.orders.AssertExpectations(t)
	s.items.AssertExpectations(t)
	s.history.AssertExpectations(t)
	s.notes.AssertExpectations(t)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockOrderUoW) ItemRepository() ports.ItemRepository {
	args := m.Called()
	return args.Get(0).(ports.ItemRepository)
}

func (m *MockOrderUoW) HistoryRepository() ports.HistoryRepository {
	args := m.Called()
	return args.Get(0).(ports.HistoryRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockGate struct{ mock.Mock }

func (m *MockGate) TryAcquire(ctx context.Context, orderID kernel.UUID) (ports.ReleaseFunc, error) {
	args := m.Called(ctx, orderID)
	if release, ok := args.Get(0).(ports.ReleaseFunc); ok {
		return release, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAuthorizer struct{ mock.Mock }

func (m *MockAuthorizer) CanEditPhase(ctx context.Context, actor string, phase order.Phase) (bool, error) {
	args := m.Called(ctx, actor, phase)
	return args.Bool(0), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// levelIs matches a notification by level.
func levelIs(level ports.Level) any {
	return mock.MatchedBy(func(n ports.Notification) bool { return n.Level == level })
}
