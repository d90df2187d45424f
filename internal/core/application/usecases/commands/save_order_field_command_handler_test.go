package commands_test

import (
	"errors"
	"strings"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSaveOrderFieldCommandHandler_Handle(t *testing.T) {
	t.Run("should write the field and its order change record", func(t *testing.T) {
		// Given
		ctx := t.Context()
		store := newStubStore()
		orderID := kernel.NewUUID()
		cmd, err := commands.NewSaveOrderFieldCommand(orderID, order.FieldTrackingCode, "BR123", "BR12", "ana")
		require.NoError(t, err)

		mock.InOrder(
			store.orders.On("UpdateField", mock.Anything, orderID, order.FieldTrackingCode, "BR123").Return(nil).Once(),
			store.history.On("Append", mock.Anything, mock.MatchedBy(func(r *history.Record) bool {
				return r.Stream() == history.StreamOrderChange &&
					r.Field() == string(order.FieldTrackingCode) &&
					r.OldValue() == "BR12" &&
					r.NewValue() == "BR123" &&
					r.At().Equal(fixedNow)
			})).Return(nil).Once(),
		)

		// When
		result, err := commands.NewSaveOrderFieldCommandHandler(store, nil, fixedClock, nil).Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.NoError(t, result.HistoryErr)
		store.AssertExpectations(t)
	})

	t.Run("should reject values over the limit before any write", func(t *testing.T) {
		// Given
		ctx := t.Context()
		store := newStubStore()
		limits := order.FieldLimits{order.FieldInvoiceNumber: 5}
		cmd, err := commands.NewSaveOrderFieldCommand(kernel.NewUUID(), order.FieldInvoiceNumber, "NF-000123", "", "ana")
		require.NoError(t, err)

		// When
		_, err = commands.NewSaveOrderFieldCommandHandler(store, limits, fixedClock, nil).Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		store.orders.AssertNotCalled(t, "UpdateField", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		store.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("should use the default limits when none are configured", func(t *testing.T) {
		// Given
		ctx := t.Context()
		store := newStubStore()
		cmd, err := commands.NewSaveOrderFieldCommand(kernel.NewUUID(), order.FieldNotes, strings.Repeat("a", 2001), "", "ana")
		require.NoError(t, err)

		// When
		_, err = commands.NewSaveOrderFieldCommandHandler(store, nil, fixedClock, nil).Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should surface a failed write as a persistence error", func(t *testing.T) {
		// Given
		ctx := t.Context()
		store := newStubStore()
		orderID := kernel.NewUUID()
		cmd, err := commands.NewSaveOrderFieldCommand(orderID, order.FieldNotes, "call first", "", "ana")
		require.NoError(t, err)
		store.orders.On("UpdateField", mock.Anything, orderID, order.FieldNotes, "call first").
			Return(errors.New("offline")).Once()

		// When
		_, err = commands.NewSaveOrderFieldCommandHandler(store, nil, fixedClock, nil).Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, errs.ErrPersistence)
		store.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("should keep the field when its history fails", func(t *testing.T) {
		// Given
		ctx := t.Context()
		store := newStubStore()
		orderID := kernel.NewUUID()
		cmd, err := commands.NewSaveOrderFieldCommand(orderID, order.FieldNotes, "call first", "", "ana")
		require.NoError(t, err)
		store.orders.On("UpdateField", mock.Anything, orderID, order.FieldNotes, "call first").Return(nil).Once()
		store.history.On("Append", mock.Anything, mock.AnythingOfType("*history.Record")).
			Return(errors.New("insert failed")).Once()

		// When
		result, err := commands.NewSaveOrderFieldCommandHandler(store, nil, fixedClock, nil).Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		require.ErrorIs(t, result.HistoryErr, errs.ErrPartialFailure)
		store.AssertExpectations(t)
	})
}

func TestNewSaveOrderFieldCommand_Invalid(t *testing.T) {
	_, err := commands.NewSaveOrderFieldCommand(kernel.NewUUID(), "color", "red", "", "ana")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = commands.NewSaveOrderFieldCommand(kernel.NewUUID(), order.FieldNotes, "x", "", " ")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
