package editing

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"go.uber.org/zap"
)

const (
	DefaultQuietWindow  = 800 * time.Millisecond
	DefaultWriteTimeout = 10 * time.Second
)

// FieldSaver persists one watched field.
type FieldSaver interface {
	Handle(ctx context.Context, cmd commands.SaveOrderFieldCommand) (commands.SaveFieldResult, error)
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// AutosaveConfig describes the fields of one order.
type AutosaveConfig struct {
	OrderID kernel.UUID
	Actor   string

	// Persisted seeds the last-persisted cache, usually with the fields of the loaded order.
	Persisted map[order.Field]string

	Limits       order.FieldLimits
	Quiet        time.Duration
	WriteTimeout time.Duration
}

type pendingWrite struct {
	value string
	gen   uint64
	timer Timer
}

// AutosaveFieldSync debounces watched field edits. Each field owns one timer that is
// reset on every change; when it fires the latest value is written, unless it equals
// the last persisted value. Writes of one sync are serialized.
type AutosaveFieldSync struct {
	orderID      kernel.UUID
	actor        string
	limits       order.FieldLimits
	quiet        time.Duration
	writeTimeout time.Duration

	saver     FieldSaver
	notifier  ports.Notifier
	afterFunc AfterFunc
	logger    *zap.Logger

	writeMu sync.Mutex

	mu        sync.Mutex
	closed    bool
	gen       uint64
	persisted map[order.Field]string
	pending   map[order.Field]*pendingWrite
}

func NewAutosaveFieldSync(
	cfg AutosaveConfig,
	saver FieldSaver,
	notifier ports.Notifier,
	afterFunc AfterFunc,
	logger *zap.Logger,
) *AutosaveFieldSync {
	if cfg.Limits == nil {
		cfg.Limits = order.DefaultFieldLimits()
	}
	if cfg.Quiet <= 0 {
		cfg.Quiet = DefaultQuietWindow
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if afterFunc == nil {
		afterFunc = systemAfterFunc
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	persisted := make(map[order.Field]string, len(cfg.Persisted))
	for f, v := range cfg.Persisted {
		persisted[f] = v
	}

	return &AutosaveFieldSync{
		orderID:      cfg.OrderID,
		actor:        cfg.Actor,
		limits:       cfg.Limits,
		quiet:        cfg.Quiet,
		writeTimeout: cfg.WriteTimeout,
		saver:        saver,
		notifier:     notifier,
		afterFunc:    afterFunc,
		logger: logger.With(
			zap.String("component", "autosave"),
			zap.String("order_id", cfg.OrderID.String())),
		persisted: persisted,
		pending:   make(map[order.Field]*pendingWrite),
	}
}

// OnFieldChange records a new value for field and restarts its quiet window. Values
// over the length limit are rejected here, before anything is scheduled.
func (a *AutosaveFieldSync) OnFieldChange(field order.Field, value string) error {
	if err := field.Validate(); err != nil {
		return err
	}
	if err := a.limits.Check(field, value); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrSessionClosed
	}

	if p, ok := a.pending[field]; ok {
		p.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.pending[field] = &pendingWrite{
		value: value,
		gen:   gen,
		timer: a.afterFunc(a.quiet, func() { a.fire(field, gen) }),
	}
	return nil
}

// Flush writes every pending field now, used by save-and-close.
func (a *AutosaveFieldSync) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrSessionClosed
	}
	fields := make([]order.Field, 0, len(a.pending))
	values := make(map[order.Field]string, len(a.pending))
	for f, p := range a.pending {
		p.timer.Stop()
		fields = append(fields, f)
		values[f] = p.value
	}
	clear(a.pending)
	a.mu.Unlock()

	slices.Sort(fields)
	var errList []error
	for _, f := range fields {
		if err := a.write(ctx, f, values[f]); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

// Close cancels every pending timer. Nothing is written afterwards, but a write that
// already started is allowed to finish.
func (a *AutosaveFieldSync) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	for _, p := range a.pending {
		p.timer.Stop()
	}
	clear(a.pending)
}

// Persisted returns the last value of field known to be stored.
func (a *AutosaveFieldSync) Persisted(field order.Field) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.persisted[field]
}

// HasPending reports whether a field is waiting for its quiet window.
func (a *AutosaveFieldSync) HasPending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending) > 0
}

// fire ignores callbacks of replaced timers: Stop cannot recall a callback that was
// already started.
func (a *AutosaveFieldSync) fire(field order.Field, gen uint64) {
	a.mu.Lock()
	p, ok := a.pending[field]
	if a.closed || !ok || p.gen != gen {
		a.mu.Unlock()
		return
	}
	delete(a.pending, field)
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.writeTimeout)
	defer cancel()
	_ = a.write(ctx, field, p.value)
}

func (a *AutosaveFieldSync) write(ctx context.Context, field order.Field, value string) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	previous := a.Persisted(field)
	if value == previous {
		a.logger.Debug("skip unchanged field", zap.String("field", string(field)))
		return nil
	}

	cmd, err := commands.NewSaveOrderFieldCommand(a.orderID, field, value, previous, a.actor)
	if err != nil {
		return err
	}
	result, err := a.saver.Handle(ctx, cmd)
	if err != nil {
		a.logger.Error("autosave failed", zap.String("field", string(field)), zap.Error(err))
		a.notify(ctx, ports.LevelError, "Could not save "+field.String())
		return err
	}

	a.mu.Lock()
	a.persisted[field] = value
	a.mu.Unlock()

	if result.HistoryErr != nil {
		a.notify(ctx, ports.LevelWarning, field.String()+" saved, but its history could not be recorded")
	}
	return nil
}

func (a *AutosaveFieldSync) notify(ctx context.Context, level ports.Level, message string) {
	if a.notifier == nil {
		return
	}
	err := a.notifier.Notify(ctx, ports.Notification{
		Level:   level,
		OrderID: a.orderID,
		Actor:   a.actor,
		Message: message,
	})
	if err != nil {
		a.logger.Warn("notification failed", zap.Error(err))
	}
}
