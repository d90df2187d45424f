package editing_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"fulfillment/internal/core/application/editing"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockFieldSaver struct{ mock.Mock }

func (m *MockFieldSaver) Handle(ctx context.Context, cmd commands.SaveOrderFieldCommand) (commands.SaveFieldResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.SaveFieldResult), args.Error(1)
}

type MockTransitioner struct{ mock.Mock }

func (m *MockTransitioner) Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (commands.TransitionResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}

type MockItemStatusChanger struct{ mock.Mock }

func (m *MockItemStatusChanger) Handle(ctx context.Context, cmd commands.ChangeItemStatusCommand) (commands.ItemStatusResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.ItemStatusResult), args.Error(1)
}

type MockItemsSaver struct{ mock.Mock }

func (m *MockItemsSaver) Handle(ctx context.Context, cmd commands.SaveItemsCommand) (commands.SaveItemsResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.SaveItemsResult), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockOrderRepository struct {
	mock.Mock
	ports.OrderRepository
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockItemRepository struct {
	mock.Mock
	ports.ItemRepository
}

func (m *MockItemRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*order.Item, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*order.Item), args.Error(1)
}

type MockHistoryRepository struct {
	mock.Mock
	ports.HistoryRepository
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

type MockNoteRepository struct {
	mock.Mock
	ports.NoteRepository
}

func (m *MockNoteRepository) ListCompletionNotes(ctx context.Context, orderID kernel.UUID) ([]*order.CompletionNote, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*order.CompletionNote), args.Error(1)
}

func (m *MockNoteRepository) ListComments(ctx context.Context, orderID kernel.UUID) ([]*order.Comment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*order.Comment), args.Error(1)
}

// stubStore only implements the reads a session does; writes go through the handler mocks.
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

// fakeScheduler collects AfterFunc callbacks and runs them when told to.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	mu      sync.Mutex
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) editing.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// FireAll runs every timer that is neither stopped nor fired, in scheduling order.
func (s *fakeScheduler) FireAll() int {
	s.mu.Lock()
	timers := append([]*fakeTimer(nil), s.timers...)
	s.mu.Unlock()

	n := 0
	for _, t := range timers {
		t.mu.Lock()
		due := !t.stopped && !t.fired
		t.fired = t.fired || due
		t.mu.Unlock()
		if due {
			t.f()
			n++
		}
	}
	return n
}

// Active counts timers still waiting to fire.
func (s *fakeScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		t.mu.Lock()
		if !t.stopped && !t.fired {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

// staleCallback hands out the callback of the first timer even after it was stopped,
// the way a time.Timer behaves when Stop loses the race with its goroutine.
func (s *fakeScheduler) staleCallback() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[0].f
}

// fakeFeed is an in-process ChangeFeed with one subscription per table.
type fakeFeed struct {
	mu     sync.Mutex
	subs   map[ports.Table]*fakeSubscription
	failOn ports.Table
}

type fakeSubscription struct {
	events chan ports.ChangeEvent
	once   sync.Once
	closed bool
}

func (s *fakeSubscription) Events() <-chan ports.ChangeEvent { return s.events }

func (s *fakeSubscription) Close() error {
	s.once.Do(func() {
		s.closed = true
		close(s.events)
	})
	return nil
}

var errSubscribe = errors.New("subscribe failed")

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subs: make(map[ports.Table]*fakeSubscription)}
}

func (f *fakeFeed) Subscribe(_ context.Context, table ports.Table, _ kernel.UUID) (ports.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if table == f.failOn {
		return nil, errSubscribe
	}
	sub := &fakeSubscription{events: make(chan ports.ChangeEvent, 16)}
	f.subs[table] = sub
	return sub, nil
}

func (f *fakeFeed) emit(table ports.Table, orderID kernel.UUID) {
	f.mu.Lock()
	sub := f.subs[table]
	f.mu.Unlock()
	sub.events <- ports.ChangeEvent{Table: table, Op: ports.OpUpdate, OrderID: orderID, RowID: kernel.NewUUID()}
}

func (f *fakeFeed) subscription(table ports.Table) *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[table]
}

// recordingTarget reports every reload on calls.
type recordingTarget struct {
	calls chan ports.Table
	err   error
}

func newRecordingTarget() *recordingTarget {
	return &recordingTarget{calls: make(chan ports.Table, 16)}
}

func (r *recordingTarget) ReloadStatus(context.Context) error {
	r.calls <- ports.TableOrderStatusHistory
	return r.err
}

func (r *recordingTarget) ReloadItemHistory(context.Context) error {
	r.calls <- ports.TableOrderItemHistory
	return r.err
}

func (r *recordingTarget) ReloadItems(context.Context) error {
	r.calls <- ports.TableOrderItems
	return r.err
}
