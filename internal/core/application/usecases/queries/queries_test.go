package queries_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetPhaseBoardQuery_Valid(t *testing.T) {
	query := queries.NewGetPhaseBoardQuery()

	require.NoError(t, query.Validate())
	assert.Empty(t, query.Phase())
}

func TestNewGetPhaseColumnQuery(t *testing.T) {
	t.Run("declared phase", func(t *testing.T) {
		query, err := queries.NewGetPhaseColumnQuery(order.PhaseWarehouse)

		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.Equal(t, order.PhaseWarehouse, query.Phase())
	})

	t.Run("unknown phase", func(t *testing.T) {
		_, err := queries.NewGetPhaseColumnQuery(order.Phase("shipping"))

		require.Error(t, err)
	})
}

func TestGetPhaseBoardQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetPhaseBoardQuery{}

	err := query.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetPhaseBoardQueryIsNotConstructed)
}

func TestNewGetOrderHistoryQuery(t *testing.T) {
	orderID := kernel.NewUUID()

	t.Run("valid", func(t *testing.T) {
		query, err := queries.NewGetOrderHistoryQuery(orderID, history.StreamItemField, ports.SortDescending)

		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.Equal(t, orderID, query.OrderID())
		assert.Equal(t, history.StreamItemField, query.Stream())
		assert.Equal(t, ports.SortDescending, query.Sort())
	})

	t.Run("joins every invalid argument", func(t *testing.T) {
		_, err := queries.NewGetOrderHistoryQuery(kernel.UUID{}, history.Stream("audit"), ports.SortOrder("random"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "audit")
		assert.Contains(t, err.Error(), "random")
	})
}

func TestGetOrderHistoryQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetOrderHistoryQuery{}

	err := query.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetOrderHistoryQueryIsNotConstructed)
}
