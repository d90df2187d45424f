package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a transaction boundary over the row store. Repositories obtained
// before Begin, or after Commit/Rollback, write directly without a transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	ItemRepository() ItemRepository
	HistoryRepository() HistoryRepository
	NoteRepository() NoteRepository
}
