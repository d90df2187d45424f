package postgres

import (
	"context"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// changeRow is implemented by every DTO whose writes feed the change stream.
type changeRow interface {
	ChangeOrderID() uuid.UUID
	ChangeRowID() uuid.UUID
}

// ChangeFeedPlugin is a gorm.Plugin that publishes a ports.ChangeEvent after each
// successful create, update or delete of a change-tracked row.
//
// Writes on a transaction held by a unit of work are buffered and published when it
// commits. A rollback drops them.
//
// Example:
//
//	db, _ := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err := db.Use(NewChangeFeedPlugin(publisher, logger)); err != nil {
//	    return err
//	}
type ChangeFeedPlugin struct {
	publisher ports.ChangePublisher
	logger    *zap.Logger
	clock     func() time.Time

	// held maps a transaction's gorm.ConnPool to its *heldEvents.
	held sync.Map
}

type heldEvents struct {
	mu     sync.Mutex
	events []ports.ChangeEvent
}

func (h *heldEvents) add(event ports.ChangeEvent) {
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
}

func NewChangeFeedPlugin(publisher ports.ChangePublisher, logger *zap.Logger) *ChangeFeedPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeFeedPlugin{
		publisher: publisher,
		logger:    logger.With(zap.String("component", "change_feed_plugin")),
		clock:     time.Now,
	}
}

func (p *ChangeFeedPlugin) Name() string {
	return "fulfillment:change_feed"
}

func (p *ChangeFeedPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().After("gorm:create").
		Register("fulfillment:publish_create", p.publish(ports.OpInsert)); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").
		Register("fulfillment:publish_update", p.publish(ports.OpUpdate)); err != nil {
		return err
	}
	return db.Callback().Delete().After("gorm:delete").
		Register("fulfillment:publish_delete", p.publish(ports.OpDelete))
}

func (p *ChangeFeedPlugin) publish(op ports.Op) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil || db.RowsAffected == 0 {
			return
		}

		row, ok := rowOf(db.Statement)
		if !ok {
			return
		}
		rawOrderID, rawRowID := row.ChangeOrderID(), row.ChangeRowID()
		orderID, err := kernel.UUIDFromBytes(rawOrderID[:])
		if err != nil {
			return
		}
		rowID, err := kernel.UUIDFromBytes(rawRowID[:])
		if err != nil {
			return
		}

		event := ports.ChangeEvent{
			Table:   ports.Table(db.Statement.Table),
			Op:      op,
			OrderID: orderID,
			RowID:   rowID,
			At:      p.clock(),
		}
		if _, inTx := db.Statement.ConnPool.(gorm.TxCommitter); inTx {
			if h, ok := p.held.Load(db.Statement.ConnPool); ok {
				h.(*heldEvents).add(event)
				return
			}
		}
		p.send(db.Statement.Context, event)
	}
}

// hold buffers the events of writes on pool until release.
func (p *ChangeFeedPlugin) hold(pool gorm.ConnPool) {
	p.held.Store(pool, &heldEvents{})
}

// release forgets pool and publishes its buffered events when publish is set.
func (p *ChangeFeedPlugin) release(ctx context.Context, pool gorm.ConnPool, publish bool) {
	h, ok := p.held.LoadAndDelete(pool)
	if !ok || !publish {
		return
	}
	held := h.(*heldEvents)
	held.mu.Lock()
	events := held.events
	held.mu.Unlock()
	for _, event := range events {
		p.send(ctx, event)
	}
}

func (p *ChangeFeedPlugin) send(ctx context.Context, event ports.ChangeEvent) {
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("change event not published",
			zap.String("table", string(event.Table)),
			zap.String("order_id", event.OrderID.String()),
			zap.Error(err))
	}
}

func rowOf(stmt *gorm.Statement) (changeRow, bool) {
	for _, candidate := range []any{stmt.Model, stmt.Dest} {
		if row, ok := candidate.(changeRow); ok {
			return row, true
		}
	}
	return nil, false
}
