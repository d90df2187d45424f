package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/bsm/redislock"
	"go.uber.org/zap"
)

const (
	DefaultLockPrefix = "fulfillment:transition"
	DefaultLockTTL    = 30 * time.Second

	releaseTimeout = 5 * time.Second
)

var _ ports.TransitionGate = (*TransitionGate)(nil)

// TransitionGate holds one Redis lock per order while a transition runs. The holder
// refreshes the lock every half TTL until it releases it or its context ends, so a
// lock outlives slow writes but expires after one TTL once its holder is gone.
type TransitionGate struct {
	locker *redislock.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewTransitionGate(client redislock.RedisClient, prefix string, ttl time.Duration, logger *zap.Logger) *TransitionGate {
	if prefix == "" {
		prefix = DefaultLockPrefix
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransitionGate{
		locker: redislock.New(client),
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "redis_transition_gate")),
	}
}

func (g *TransitionGate) TryAcquire(ctx context.Context, orderID kernel.UUID) (ports.ReleaseFunc, error) {
	key := fmt.Sprintf("%s:%s", g.prefix, orderID)

	lock, err := g.locker.Obtain(ctx, key, g.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, errs.NewTransitionInFlightError(orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain transition lock: %w", err)
	}

	stop := make(chan struct{})
	refreshed := make(chan struct{})
	go g.keepAlive(ctx, lock, stop, refreshed)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-refreshed
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer cancel()
			if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				g.logger.Warn("release transition lock", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

// keepAlive extends lock until stop is closed or ctx ends, then closes done.
func (g *TransitionGate) keepAlive(ctx context.Context, lock *redislock.Lock, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(g.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := lock.Refresh(ctx, g.ttl, nil); err != nil {
				if !errors.Is(err, context.Canceled) {
					g.logger.Warn("refresh transition lock", zap.String("key", lock.Key()), zap.Error(err))
				}
				return
			}
		}
	}
}
