// Package redis carries the change feed over Redis pub/sub and serializes transitions
// across nodes with redislock.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultChannelPrefix = "fulfillment:changes"
	DefaultBuffer        = 64
)

var (
	_ ports.ChangeFeed      = (*ChangeFeed)(nil)
	_ ports.ChangePublisher = (*ChangeFeed)(nil)
)

// message is the JSON payload published on a channel.
type message struct {
	Table   string    `json:"table"`
	Op      string    `json:"op"`
	OrderID string    `json:"order_id"`
	RowID   string    `json:"row_id"`
	At      time.Time `json:"at"`
}

// ChangeFeed publishes every event on the channel "<prefix>:<table>:<order id>", so
// a subscription only receives the rows of one table and one order.
type ChangeFeed struct {
	client redis.UniversalClient
	prefix string
	buffer int
	logger *zap.Logger
}

func NewChangeFeed(client redis.UniversalClient, prefix string, logger *zap.Logger) *ChangeFeed {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeFeed{
		client: client,
		prefix: prefix,
		buffer: DefaultBuffer,
		logger: logger.With(zap.String("component", "redis_change_feed")),
	}
}

func (f *ChangeFeed) Channel(table ports.Table, orderID kernel.UUID) string {
	return fmt.Sprintf("%s:%s:%s", f.prefix, table, orderID)
}

func (f *ChangeFeed) Publish(ctx context.Context, event ports.ChangeEvent) error {
	body, err := json.Marshal(message{
		Table:   string(event.Table),
		Op:      string(event.Op),
		OrderID: event.OrderID.String(),
		RowID:   event.RowID.String(),
		At:      event.At,
	})
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	if err = f.client.Publish(ctx, f.Channel(event.Table, event.OrderID), body).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

// Subscribe returns once Redis confirmed the subscription, so no event published
// afterwards is missed.
func (f *ChangeFeed) Subscribe(ctx context.Context, table ports.Table, orderID kernel.UUID) (ports.Subscription, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	channel := f.Channel(table, orderID)
	pubsub := f.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	sub := &subscription{
		pubsub:  pubsub,
		events:  make(chan ports.ChangeEvent, f.buffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  f.logger.With(zap.String("channel", channel)),
	}
	go sub.run()
	return sub, nil
}

type subscription struct {
	pubsub  *redis.PubSub
	events  chan ports.ChangeEvent
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

func (s *subscription) Events() <-chan ports.ChangeEvent { return s.events }

// Close unsubscribes and waits until the events channel is closed.
func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
		<-s.stopped
	})
	return err
}

func (s *subscription) run() {
	defer close(s.stopped)
	defer close(s.events)

	ch := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			event, err := decode(msg.Payload)
			if err != nil {
				s.logger.Warn("malformed change event", zap.Error(err))
				continue
			}
			select {
			case s.events <- event:
			case <-s.done:
				return
			}
		}
	}
}

func decode(payload string) (ports.ChangeEvent, error) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return ports.ChangeEvent{}, err
	}
	orderID, err := kernel.UUIDFromString(m.OrderID)
	if err != nil {
		return ports.ChangeEvent{}, err
	}
	rowID, err := kernel.UUIDFromString(m.RowID)
	if err != nil {
		return ports.ChangeEvent{}, err
	}
	return ports.ChangeEvent{
		Table:   ports.Table(m.Table),
		Op:      ports.Op(m.Op),
		OrderID: orderID,
		RowID:   rowID,
		At:      m.At,
	}, nil
}
