// Package commands contains the operations that change orders: transitions, item
// status cascades, field autosaves, item saves and order creation.
// Every command follows the same pattern: a constructor-validated command value and a
// handler that checks it, then talks to the ports.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces give handlers access to repositories. Transitions and
// autosaves use Store: each repository call is its own write and there is no
// cross-table transaction. Order creation uses OrderUoW.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	ItemRepoFactory interface {
		ItemRepository() ports.ItemRepository
	}

	HistoryRepoFactory interface {
		HistoryRepository() ports.HistoryRepository
	}

	NoteRepoFactory interface {
		NoteRepository() ports.NoteRepository
	}

	// Store exposes untransacted repositories.
	Store interface {
		OrderRepoFactory
		ItemRepoFactory
		HistoryRepoFactory
		NoteRepoFactory
	}

	// OrderUoW manages a transaction spanning the order, its items and its first
	// history record.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   _ = uow.OrderRepository().Add(ctx, o)
	//   _ = uow.ItemRepository().Add(ctx, item)
	//
	//   err = uow.Commit(ctx)
	OrderUoW interface {
		TxManager
		OrderRepoFactory
		ItemRepoFactory
		HistoryRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}
)
