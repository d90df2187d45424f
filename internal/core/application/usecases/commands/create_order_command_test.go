package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpecs() []commands.NewItemSpec {
	return []commands.NewItemSpec{
		{Code: "SKU-1", Description: "bolt", Requested: decimal.NewFromInt(4)},
		{Code: "SKU-2", Requested: decimal.RequireFromString("2.5")},
	}
}

func TestNewCreateOrderCommand_ValidInput(t *testing.T) {
	id := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(id, " PO-1 ", order.TypeExpress, order.PriorityHigh, "ana", validSpecs())
	require.NoError(t, err)
	assert.Equal(t, id, cmd.OrderID())
	assert.Equal(t, "PO-1", cmd.Number())
	assert.Equal(t, order.TypeExpress, cmd.Type())
	assert.Equal(t, order.PriorityHigh, cmd.Priority())
	assert.Len(t, cmd.Items(), 2)
	require.NoError(t, cmd.Validate())
}

func TestNewCreateOrderCommand_InvalidOrderID(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.UUID{}, "PO-1", order.TypeStandard, order.PriorityLow, "ana", validSpecs())
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestNewCreateOrderCommand_EmptyNumber(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), "  ", order.TypeStandard, order.PriorityLow, "ana", validSpecs())
	assert.ErrorIs(t, err, commands.ErrNumberIsRequired)
}

func TestNewCreateOrderCommand_NoItems(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), "PO-1", order.TypeStandard, order.PriorityLow, "ana", nil)
	assert.ErrorIs(t, err, commands.ErrItemsAreRequired)
}

func TestNewCreateOrderCommand_InvalidItem(t *testing.T) {
	specs := []commands.NewItemSpec{{Code: "SKU-1", Requested: decimal.Zero}}
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), "PO-1", order.TypeStandard, order.PriorityLow, "ana", specs)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestNewCreateOrderCommand_UnknownType(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), "PO-1", "rocket", order.PriorityLow, "ana", validSpecs())
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
