// Package postgres provides the GORM-based Unit of Work, the untransacted Store, the
// schema migration and the change feed plugin.
//
// Only order creation needs a transaction. Every other command writes through Store,
// where each repository call is its own statement. Change events of a unit of work
// are published after its commit.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, plugin)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	if err := uow.OrderRepository().Add(ctx, o); err != nil {
//	    return err
//	}
//	for _, it := range o.Items() {
//	    if err := uow.ItemRepository().Add(ctx, it); err != nil {
//	        return err
//	    }
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides isolated transactions
//   - Multiple goroutines should use separate UnitOfWork instances
//   - Store is stateless and safe for concurrent use
package postgres

import (
	"context"

	"fulfillment/internal/adapters/out/postgres/historyrepo"
	"fulfillment/internal/adapters/out/postgres/noterepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
type GormUnitOfWorkFactory struct {
	db   *gorm.DB
	feed *ChangeFeedPlugin
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
// feed is the plugin installed on db, or nil when db publishes no change events.
func NewGormUnitOfWorkFactory(db *gorm.DB, feed *ChangeFeedPlugin) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, feed: feed}
}

// Create produces a new UnitOfWork with its own transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db, feed: f.feed}
}

// GormUnitOfWork coordinates a database transaction. The change events of its writes
// wait for the commit.
type GormUnitOfWork struct {
	db   *gorm.DB
	feed *ChangeFeedPlugin
	tx   *gorm.DB
}

// Begin starts a transaction. Calling it twice does not nest.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	if uow.feed != nil {
		uow.feed.hold(uow.tx.Statement.ConnPool)
	}
	return nil
}

// Commit finalizes the transaction and publishes its change events. It fails when no
// transaction is active.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	pool := uow.tx.Statement.ConnPool
	err := uow.tx.Commit().Error
	uow.tx = nil
	if uow.feed != nil {
		uow.feed.release(ctx, pool, err == nil)
	}
	return err
}

// Rollback discards the transaction. After a successful Commit it returns
// gorm.ErrInvalidTransaction, which deferred callers ignore.
func (uow *GormUnitOfWork) Rollback(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	pool := uow.tx.Statement.ConnPool
	err := uow.tx.Rollback().Error
	uow.tx = nil
	if uow.feed != nil {
		uow.feed.release(ctx, pool, false)
	}
	return err
}

// OrderRepository runs on the active transaction, or on the main connection when
// there is none.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn())
}

func (uow *GormUnitOfWork) ItemRepository() ports.ItemRepository {
	return orderrepo.NewGormItemRepository(uow.conn())
}

func (uow *GormUnitOfWork) HistoryRepository() ports.HistoryRepository {
	return historyrepo.NewGormHistoryRepository(uow.conn())
}

func (uow *GormUnitOfWork) NoteRepository() ports.NoteRepository {
	return noterepo.NewGormNoteRepository(uow.conn())
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
