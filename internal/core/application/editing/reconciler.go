package editing

import (
	"context"
	"errors"
	"sync"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"go.uber.org/zap"
)

// ReloadTarget refreshes one slice of the local state from storage.
type ReloadTarget interface {
	ReloadStatus(ctx context.Context) error
	ReloadItemHistory(ctx context.Context) error
	ReloadItems(ctx context.Context) error
}

// ReconciledTables are the streams a Reconciler subscribes to, in subscription order.
var ReconciledTables = []ports.Table{
	ports.TableOrderStatusHistory,
	ports.TableOrderItemHistory,
	ports.TableOrderItems,
}

type stream struct {
	table  ports.Table
	flag   *EchoFlag
	reload func(ctx context.Context) error
}

// Reconciler applies change feed events of one order to a ReloadTarget. Every stream
// has its own EchoFlag: an armed flag swallows the next event of its stream, any
// other event reloads the slice. Events are not ordered across streams.
type Reconciler struct {
	feed    ports.ChangeFeed
	orderID kernel.UUID
	streams map[ports.Table]*stream
	logger  *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	subs    []ports.Subscription
	wg      sync.WaitGroup
	stopped bool
}

func NewReconciler(feed ports.ChangeFeed, orderID kernel.UUID, target ReloadTarget, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	reloads := map[ports.Table]func(context.Context) error{
		ports.TableOrderStatusHistory: target.ReloadStatus,
		ports.TableOrderItemHistory:   target.ReloadItemHistory,
		ports.TableOrderItems:         target.ReloadItems,
	}
	streams := make(map[ports.Table]*stream, len(reloads))
	for table, reload := range reloads {
		streams[table] = &stream{table: table, flag: &EchoFlag{}, reload: reload}
	}
	return &Reconciler{
		feed:    feed,
		orderID: orderID,
		streams: streams,
		logger: logger.With(
			zap.String("component", "reconciler"),
			zap.String("order_id", orderID.String())),
	}
}

// Flag returns the echo flag of table, nil for tables that are not reconciled.
func (r *Reconciler) Flag(table ports.Table) *EchoFlag {
	s, ok := r.streams[table]
	if !ok {
		return nil
	}
	return s.flag
}

// Start subscribes to every stream. When a subscription fails the ones already open
// are closed.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil || r.stopped {
		return errors.New("reconciler already started")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	subs := make([]ports.Subscription, 0, len(ReconciledTables))
	for _, table := range ReconciledTables {
		sub, err := r.feed.Subscribe(ctx, table, r.orderID)
		if err != nil {
			cancel()
			for _, s := range subs {
				_ = s.Close()
			}
			return err
		}
		subs = append(subs, sub)
	}

	r.cancel = cancel
	r.subs = subs
	for i, table := range ReconciledTables {
		r.wg.Add(1)
		go r.run(runCtx, r.streams[table], subs[i])
	}
	return nil
}

// Stop closes the subscriptions and waits for in-flight handlers.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	cancel, subs := r.cancel, r.subs
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	for _, s := range subs {
		if err := s.Close(); err != nil {
			r.logger.Warn("close subscription", zap.Error(err))
		}
	}
	r.wg.Wait()
}

func (r *Reconciler) run(ctx context.Context, s *stream, sub ports.Subscription) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			r.handle(ctx, s, event)
		}
	}
}

func (r *Reconciler) handle(ctx context.Context, s *stream, event ports.ChangeEvent) {
	if s.flag.Consume() {
		r.logger.Debug("echo suppressed", zap.String("table", string(s.table)), zap.String("op", string(event.Op)))
		return
	}
	if err := s.reload(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, ErrSessionClosed) {
			return
		}
		r.logger.Warn("reload failed", zap.String("table", string(s.table)), zap.Error(err))
	}
}
