// Package lognotifier writes user notifications to the service log. It is the
// notifier of a single-node deployment without a message broker.
package lognotifier

import (
	"context"

	"fulfillment/internal/core/ports"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ ports.Notifier = (*Notifier)(nil)

type Notifier struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{logger: logger.With(zap.String("component", "notifier"))}
}

func (n *Notifier) Notify(_ context.Context, notification ports.Notification) error {
	n.logger.Log(levelOf(notification.Level), notification.Message,
		zap.String("order_id", notification.OrderID.String()),
		zap.String("actor", notification.Actor))
	return nil
}

func levelOf(level ports.Level) zapcore.Level {
	switch level {
	case ports.LevelError:
		return zapcore.ErrorLevel
	case ports.LevelWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
