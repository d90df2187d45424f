package memory

import (
	"context"
	"sync"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"go.uber.org/zap"
)

const DefaultBuffer = 64

var (
	_ ports.ChangeFeed      = (*ChangeFeed)(nil)
	_ ports.ChangePublisher = (*ChangeFeed)(nil)
)

type topic struct {
	table   ports.Table
	orderID kernel.UUID
}

// ChangeFeed fans published events out to the subscriptions of their table and order.
// Publish never blocks: an event for a subscription whose buffer is full is dropped
// and logged.
type ChangeFeed struct {
	buffer int
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[topic]map[*subscription]struct{}
}

func NewChangeFeed(buffer int, logger *zap.Logger) *ChangeFeed {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeFeed{
		buffer: buffer,
		logger: logger.With(zap.String("component", "memory_change_feed")),
		subs:   make(map[topic]map[*subscription]struct{}),
	}
}

func (f *ChangeFeed) Subscribe(ctx context.Context, table ports.Table, orderID kernel.UUID) (ports.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	t := topic{table: table, orderID: orderID}
	sub := &subscription{feed: f, topic: t, events: make(chan ports.ChangeEvent, f.buffer)}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[t] == nil {
		f.subs[t] = make(map[*subscription]struct{})
	}
	f.subs[t][sub] = struct{}{}
	return sub, nil
}

func (f *ChangeFeed) Publish(_ context.Context, event ports.ChangeEvent) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subs[topic{table: event.Table, orderID: event.OrderID}] {
		select {
		case sub.events <- event:
		default:
			f.logger.Warn("subscriber buffer full, event dropped",
				zap.String("table", string(event.Table)),
				zap.String("order_id", event.OrderID.String()))
		}
	}
	return nil
}

// Subscribers counts the open subscriptions of table and order.
func (f *ChangeFeed) Subscribers(table ports.Table, orderID kernel.UUID) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[topic{table: table, orderID: orderID}])
}

func (f *ChangeFeed) remove(sub *subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs, ok := f.subs[sub.topic]
	if !ok {
		return
	}
	if _, ok = subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(f.subs, sub.topic)
	}
	// Publish holds the read lock while sending, so nothing sends after this.
	close(sub.events)
}

type subscription struct {
	feed   *ChangeFeed
	topic  topic
	events chan ports.ChangeEvent
	once   sync.Once
}

func (s *subscription) Events() <-chan ports.ChangeEvent { return s.events }

func (s *subscription) Close() error {
	s.once.Do(func() { s.feed.remove(s) })
	return nil
}
