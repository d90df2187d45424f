package queries_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/pgtest"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type GetPhaseBoardQueryHandlerTestSuite struct {
	suite.Suite
	database *pgtest.Database
	handler  queries.GetPhaseBoardQueryHandler
	logs     *observer.ObservedLogs
	orders   *orderrepo.GormOrderRepository
	items    *orderrepo.GormItemRepository
	created  time.Time
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
	suite.orders = orderrepo.NewGormOrderRepository(database.DB)
	suite.items = orderrepo.NewGormItemRepository(database.DB)
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Reset())

	core, logs := observer.New(zapcore.WarnLevel)
	suite.logs = logs
	suite.handler = queries.NewGetPhaseBoardQueryHandler(suite.database.DB, services.NewStatusPhaseMapper(zap.New(core)))
	suite.created = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEveryEmptyColumn() {
	board, err := suite.handler.Handle(context.Background(), queries.NewGetPhaseBoardQuery())

	suite.Require().NoError(err)
	suite.Require().Len(board.Columns, len(order.Phases()))
	for i, column := range board.Columns {
		suite.Equal(order.Phases()[i], column.Phase)
		suite.NotNil(column.Orders)
		suite.Empty(column.Orders)
	}
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) TestHandle_GroupsOrdersByStatusPhase() {
	packed := suite.seed("PO-1", order.StatusPacked)
	inTransit := suite.seed("PO-2", order.StatusInTransit)
	separation := suite.seed("PO-3", order.StatusSeparation)

	board, err := suite.handler.Handle(context.Background(), queries.NewGetPhaseBoardQuery())

	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{packed.ID(), separation.ID()}, cardIDs(suite.column(board, order.PhaseWarehouse)))
	suite.Equal([]kernel.UUID{inTransit.ID()}, cardIDs(suite.column(board, order.PhaseLogistics)))
	suite.Empty(suite.column(board, order.PhaseInvoicing).Orders)
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) TestHandle_SinglePhase_ReturnsOnlyThatColumn() {
	suite.seed("PO-1", order.StatusPacked)
	exception := suite.seed("PO-2", order.StatusException)
	query, err := queries.NewGetPhaseColumnQuery(order.PhaseException)
	suite.Require().NoError(err)

	board, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(board.Columns, 1)
	suite.Equal(order.PhaseException, board.Columns[0].Phase)
	suite.Equal([]kernel.UUID{exception.ID()}, cardIDs(board.Columns[0]))
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) TestHandle_UnknownStoredStatus_FallsBackWithWarning() {
	legacy := suite.seed("PO-1", order.StatusNew)
	suite.Require().NoError(suite.database.DB.Exec(
		"UPDATE orders SET status = 'legacy_status' WHERE id = ?", legacy.ID().Bytes()).Error)

	board, err := suite.handler.Handle(context.Background(), queries.NewGetPhaseBoardQuery())

	suite.Require().NoError(err)
	column := suite.column(board, order.DefaultPhase)
	suite.Require().Len(column.Orders, 1)
	suite.Equal(order.Status("legacy_status"), column.Orders[0].Status)
	suite.Equal(1, suite.logs.FilterField(zap.String("status", "legacy_status")).Len())
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) TestHandle_CountsPendingActiveItems() {
	ctx := context.Background()
	o := suite.seed("PO-1", order.StatusNew)
	suite.addItem(o, "10", "10", false)
	suite.addItem(o, "10", "4", false)
	suite.addItem(o, "5", "0", true)

	board, err := suite.handler.Handle(ctx, queries.NewGetPhaseBoardQuery())

	suite.Require().NoError(err)
	column := suite.column(board, order.PhaseOrderGeneration)
	suite.Require().Len(column.Orders, 1)
	suite.Equal(1, column.Orders[0].PendingItems)
	suite.Equal("PO-1", column.Orders[0].Number)
	suite.Equal(order.TypeStandard, column.Orders[0].Type)
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) TestHandle_MapsDeadline() {
	deadline := suite.created.AddDate(0, 0, 2)
	o := suite.newOrder("PO-1", order.StatusOrderGeneration)
	o.SetDeadline(&deadline)
	suite.Require().NoError(suite.orders.Add(context.Background(), o))

	board, err := suite.handler.Handle(context.Background(), queries.NewGetPhaseBoardQuery())

	suite.Require().NoError(err)
	card := suite.column(board, order.PhaseOrderGeneration).Orders[0]
	suite.Require().NotNil(card.Deadline)
	suite.True(card.Deadline.Equal(deadline))
	suite.True(card.Overdue(deadline.Add(time.Minute)))
	suite.False(card.Overdue(deadline.Add(-time.Minute)))
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	_, err := suite.handler.Handle(context.Background(), queries.GetPhaseBoardQuery{})

	suite.Require().ErrorIs(err, queries.ErrGetPhaseBoardQueryIsNotConstructed)
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) TestHandle_ContextCancellation_ReturnsError() {
	suite.seed("PO-1", order.StatusNew)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.handler.Handle(ctx, queries.NewGetPhaseBoardQuery())

	suite.Require().Error(err)
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) newOrder(number string, status order.Status) *order.Order {
	suite.created = suite.created.Add(time.Minute)
	o, err := order.NewOrder(kernel.NewUUID(), number, order.TypeStandard, order.PriorityMedium, suite.created)
	suite.Require().NoError(err)
	suite.Require().NoError(o.ChangeStatus(status, nil))
	return o
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) seed(number string, status order.Status) *order.Order {
	o := suite.newOrder(number, status)
	suite.Require().NoError(suite.orders.Add(context.Background(), o))
	return o
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) addItem(o *order.Order, requested, delivered string, removed bool) {
	item, err := order.NewItem(kernel.NewUUID(), o.ID(), "SKU", "", decimal.RequireFromString(requested))
	suite.Require().NoError(err)
	suite.Require().NoError(item.SetDelivered(decimal.RequireFromString(delivered)))
	if removed {
		item.Remove(suite.created)
	}
	suite.Require().NoError(suite.items.Add(context.Background(), item))
}

func (suite *GetPhaseBoardQueryHandlerTestSuite) column(
	board queries.GetPhaseBoardQueryResponse,
	phase order.Phase,
) queries.PhaseColumn {
	for _, c := range board.Columns {
		if c.Phase == phase {
			return c
		}
	}
	suite.FailNow("column not found", string(phase))
	return queries.PhaseColumn{}
}

func cardIDs(column queries.PhaseColumn) []kernel.UUID {
	ids := make([]kernel.UUID, len(column.Orders))
	for i, c := range column.Orders {
		ids[i] = c.ID
	}
	return ids
}

func TestGetPhaseBoardQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetPhaseBoardQueryHandlerTestSuite))
}
