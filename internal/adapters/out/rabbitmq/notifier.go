package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fulfillment/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "fulfillment.notifications"

var _ ports.Notifier = (*Notifier)(nil)

type notificationMessage struct {
	Level   string    `json:"level"`
	OrderID string    `json:"order_id"`
	Actor   string    `json:"actor"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier publishes notifications as JSON. An AMQP channel must not be shared
// between goroutines, so publishes are serialized.
type Notifier struct {
	exchange string
	clock    func() time.Time

	mu sync.Mutex
	ch Channel
}

// NewNotifier declares the durable fanout exchange.
func NewNotifier(ch Channel, exchange string, clock func() time.Time) (*Notifier, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if clock == nil {
		clock = time.Now
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &Notifier{exchange: exchange, clock: clock, ch: ch}, nil
}

func (n *Notifier) Notify(ctx context.Context, notification ports.Notification) error {
	body, err := json.Marshal(notificationMessage{
		Level:   string(notification.Level),
		OrderID: notification.OrderID.String(),
		Actor:   notification.Actor,
		Message: notification.Message,
		At:      n.clock(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	err = n.ch.PublishWithContext(ctx, n.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   n.clock(),
		Type:        string(notification.Level),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch.Close()
}
