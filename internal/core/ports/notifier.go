package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// Level is the severity of a user-facing notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a message for the user. The core never renders it.
type Notification struct {
	Level   Level
	OrderID kernel.UUID
	Actor   string
	Message string
}

// Notifier is the side channel for success, warning and error messages.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
