package commands

import (
	"context"
	"fmt"
	"time"

	"fulfillment/internal/core/ports"

	"go.uber.org/zap"
)

// SystemActor signs notifications raised by background jobs.
const SystemActor = "system"

// WarnOverdueOrdersCommandHandler raises one warning per overdue order. A failed
// notification is logged and does not stop the others.
type WarnOverdueOrdersCommandHandler struct {
	store    Store
	notifier ports.Notifier
	logger   *zap.Logger
}

func NewWarnOverdueOrdersCommandHandler(
	store Store,
	notifier ports.Notifier,
	logger *zap.Logger,
) WarnOverdueOrdersCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return WarnOverdueOrdersCommandHandler{
		store:    store,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "warn_overdue_orders_handler")),
	}
}

// Handle returns how many orders were found overdue.
func (h WarnOverdueOrdersCommandHandler) Handle(ctx context.Context, cmd WarnOverdueOrdersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	overdue, err := h.store.OrderRepository().ListOverdue(ctx, cmd.Now())
	if err != nil {
		return 0, err
	}

	for _, o := range overdue {
		if o.Deadline() == nil {
			continue
		}
		late := cmd.Now().Sub(*o.Deadline()).Truncate(time.Minute)
		err = h.notifier.Notify(ctx, ports.Notification{
			Level:   ports.LevelWarning,
			OrderID: o.ID(),
			Actor:   SystemActor,
			Message: fmt.Sprintf("Order %s is %s past its deadline (%s)", o.Number(), late, o.Status()),
		})
		if err != nil {
			h.logger.Warn("overdue notification failed",
				zap.String("order_id", o.ID().String()),
				zap.Error(err))
		}
	}
	return len(overdue), nil
}
