package editing_test

import (
	"errors"
	"testing"

	"fulfillment/internal/core/application/editing"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fieldWrite(f order.Field, value, previous string) any {
	return mock.MatchedBy(func(c commands.SaveOrderFieldCommand) bool {
		return c.Field() == f && c.Value() == value && c.Previous() == previous && c.Actor() == "ana"
	})
}

type autosaveFixture struct {
	saver     *MockFieldSaver
	notifier  *MockNotifier
	scheduler *fakeScheduler
	sync      *editing.AutosaveFieldSync
}

func newAutosaveFixture(persisted map[order.Field]string) *autosaveFixture {
	f := &autosaveFixture{
		saver:     new(MockFieldSaver),
		notifier:  new(MockNotifier),
		scheduler: &fakeScheduler{},
	}
	f.sync = editing.NewAutosaveFieldSync(editing.AutosaveConfig{
		OrderID:   kernel.NewUUID(),
		Actor:     "ana",
		Persisted: persisted,
		Limits:    order.FieldLimits{order.FieldInvoiceNumber: 8},
	}, f.saver, f.notifier, f.scheduler.AfterFunc, nil)
	return f
}

func TestAutosaveFieldSync_OnFieldChange(t *testing.T) {
	t.Run("should write only the last value of a burst", func(t *testing.T) {
		// Given
		f := newAutosaveFixture(map[order.Field]string{order.FieldTrackingCode: "BR1"})
		f.saver.On("Handle", mock.Anything, fieldWrite(order.FieldTrackingCode, "BR123", "BR1")).
			Return(commands.SaveFieldResult{}, nil).Once()

		// When
		require.NoError(t, f.sync.OnFieldChange(order.FieldTrackingCode, "BR12"))
		require.NoError(t, f.sync.OnFieldChange(order.FieldTrackingCode, "BR123"))

		// Then
		assert.Equal(t, 1, f.scheduler.Active())
		assert.Equal(t, 1, f.scheduler.FireAll())
		assert.Equal(t, "BR123", f.sync.Persisted(order.FieldTrackingCode))
		assert.False(t, f.sync.HasPending())
		f.saver.AssertExpectations(t)
	})

	t.Run("should keep one timer per field", func(t *testing.T) {
		// Given
		f := newAutosaveFixture(nil)
		f.saver.On("Handle", mock.Anything, fieldWrite(order.FieldNotes, "call first", "")).
			Return(commands.SaveFieldResult{}, nil).Once()
		f.saver.On("Handle", mock.Anything, fieldWrite(order.FieldTrackingCode, "BR9", "")).
			Return(commands.SaveFieldResult{}, nil).Once()

		// When
		require.NoError(t, f.sync.OnFieldChange(order.FieldNotes, "call first"))
		require.NoError(t, f.sync.OnFieldChange(order.FieldTrackingCode, "BR9"))

		// Then
		assert.Equal(t, 2, f.scheduler.FireAll())
		f.saver.AssertExpectations(t)
	})

	t.Run("should skip a value equal to the persisted one", func(t *testing.T) {
		// Given
		f := newAutosaveFixture(map[order.Field]string{order.FieldNotes: "same"})

		// When
		require.NoError(t, f.sync.OnFieldChange(order.FieldNotes, "same"))
		f.scheduler.FireAll()

		// Then
		f.saver.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("should reject a value over the limit without scheduling", func(t *testing.T) {
		// Given
		f := newAutosaveFixture(nil)

		// When
		err := f.sync.OnFieldChange(order.FieldInvoiceNumber, "NF-0000001")

		// Then
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Zero(t, f.scheduler.Active())
	})

	t.Run("should ignore the callback of a replaced timer", func(t *testing.T) {
		// Given
		f := newAutosaveFixture(nil)
		require.NoError(t, f.sync.OnFieldChange(order.FieldNotes, "old"))
		stale := f.scheduler.staleCallback()
		require.NoError(t, f.sync.OnFieldChange(order.FieldNotes, "new"))

		// When
		stale()

		// Then
		f.saver.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		assert.True(t, f.sync.HasPending())
	})

	t.Run("should notify and keep the persisted value when the write fails", func(t *testing.T) {
		// Given
		f := newAutosaveFixture(map[order.Field]string{order.FieldNotes: "before"})
		f.saver.On("Handle", mock.Anything, mock.Anything).
			Return(commands.SaveFieldResult{}, errors.New("db down")).Once()
		f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n ports.Notification) bool {
			return n.Level == ports.LevelError
		})).Return(nil).Once()

		// When
		require.NoError(t, f.sync.OnFieldChange(order.FieldNotes, "after"))
		f.scheduler.FireAll()

		// Then
		assert.Equal(t, "before", f.sync.Persisted(order.FieldNotes))
		f.notifier.AssertExpectations(t)
	})

	t.Run("should warn when the field was saved without its history", func(t *testing.T) {
		// Given
		f := newAutosaveFixture(nil)
		f.saver.On("Handle", mock.Anything, mock.Anything).
			Return(commands.SaveFieldResult{HistoryErr: errs.NewPartialFailureError("append", errors.New("x"))}, nil).Once()
		f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n ports.Notification) bool {
			return n.Level == ports.LevelWarning
		})).Return(nil).Once()

		// When
		require.NoError(t, f.sync.OnFieldChange(order.FieldNotes, "after"))
		f.scheduler.FireAll()

		// Then
		assert.Equal(t, "after", f.sync.Persisted(order.FieldNotes))
		f.notifier.AssertExpectations(t)
	})
}

func TestAutosaveFieldSync_FlushAndClose(t *testing.T) {
	t.Run("should write pending fields immediately on flush", func(t *testing.T) {
		// Given
		ctx := t.Context()
		f := newAutosaveFixture(nil)
		mock.InOrder(
			f.saver.On("Handle", mock.Anything, fieldWrite(order.FieldInvoiceNumber, "NF-1", "")).
				Return(commands.SaveFieldResult{}, nil).Once(),
			f.saver.On("Handle", mock.Anything, fieldWrite(order.FieldNotes, "done", "")).
				Return(commands.SaveFieldResult{}, nil).Once(),
		)
		require.NoError(t, f.sync.OnFieldChange(order.FieldNotes, "done"))
		require.NoError(t, f.sync.OnFieldChange(order.FieldInvoiceNumber, "NF-1"))

		// When
		err := f.sync.Flush(ctx)

		// Then
		require.NoError(t, err)
		assert.Zero(t, f.scheduler.Active())
		f.saver.AssertExpectations(t)
	})

	t.Run("should cancel pending writes on close", func(t *testing.T) {
		// Given
		f := newAutosaveFixture(nil)
		require.NoError(t, f.sync.OnFieldChange(order.FieldNotes, "draft"))

		// When
		f.sync.Close()

		// Then
		assert.Zero(t, f.scheduler.FireAll())
		f.saver.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		require.ErrorIs(t, f.sync.OnFieldChange(order.FieldNotes, "late"), editing.ErrSessionClosed)
		require.ErrorIs(t, f.sync.Flush(t.Context()), editing.ErrSessionClosed)
	})
}
