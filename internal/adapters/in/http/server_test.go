package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	api "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/core/application/editing"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

type MockOrderCreator struct{ mock.Mock }

func (m *MockOrderCreator) Handle(ctx context.Context, cmd commands.CreateOrderCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockTransitioner struct{ mock.Mock }

func (m *MockTransitioner) Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (commands.TransitionResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}

type MockItemStatusChanger struct{ mock.Mock }

func (m *MockItemStatusChanger) Handle(ctx context.Context, cmd commands.ChangeItemStatusCommand) (commands.ItemStatusResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.ItemStatusResult), args.Error(1)
}

type MockBoardReader struct{ mock.Mock }

func (m *MockBoardReader) Handle(ctx context.Context, q queries.GetPhaseBoardQuery) (queries.GetPhaseBoardQueryResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(queries.GetPhaseBoardQueryResponse), args.Error(1)
}

type MockHistoryReader struct{ mock.Mock }

func (m *MockHistoryReader) Handle(
	ctx context.Context,
	q queries.GetOrderHistoryQuery,
) ([]queries.GetOrderHistoryQueryResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]queries.GetOrderHistoryQueryResponse), args.Error(1)
}

type MockSessions struct{ mock.Mock }

func (m *MockSessions) Open(ctx context.Context, params editing.OpenParams) (*editing.Session, error) {
	args := m.Called(ctx, params)
	s, _ := args.Get(0).(*editing.Session)
	return s, args.Error(1)
}

func (m *MockSessions) Get(id kernel.UUID) (*editing.Session, error) {
	args := m.Called(id)
	s, _ := args.Get(0).(*editing.Session)
	return s, args.Error(1)
}

func (m *MockSessions) Close(id kernel.UUID, force bool) error {
	return m.Called(id, force).Error(0)
}

func (m *MockSessions) SaveAndClose(ctx context.Context, id kernel.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type serverFixture struct {
	e           *echo.Echo
	creator     *MockOrderCreator
	transition  *MockTransitioner
	itemStatus  *MockItemStatusChanger
	board       *MockBoardReader
	historyRead *MockHistoryReader
	sessions    *MockSessions
}

func newServerFixture() serverFixture {
	f := serverFixture{
		e:           echo.New(),
		creator:     new(MockOrderCreator),
		transition:  new(MockTransitioner),
		itemStatus:  new(MockItemStatusChanger),
		board:       new(MockBoardReader),
		historyRead: new(MockHistoryReader),
		sessions:    new(MockSessions),
	}
	server := api.NewServer(api.Handlers{
		CreateOrder:      f.creator,
		Transition:       f.transition,
		ChangeItemStatus: f.itemStatus,
		Board:            f.board,
		History:          f.historyRead,
		Sessions:         f.sessions,
	}, func() time.Time { return fixedNow }, nil)
	server.Register(f.e)
	return f
}

func (f serverFixture) do(method, path, actor, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if actor != "" {
		req.Header.Set(api.ActorHeader, actor)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateOrder(t *testing.T) {
	t.Run("should create the order with its items", func(t *testing.T) {
		// Given
		f := newServerFixture()
		var got commands.CreateOrderCommand
		f.creator.On("Handle", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { got = args.Get(1).(commands.CreateOrderCommand) }).
			Return(nil).Once()

		// When
		rec := f.do(http.MethodPost, "/api/v1/orders", "ana",
			`{"number":"PO-1042","type":"express","priority":"high","items":[{"code":"SKU-1","requested":"4"}]}`)

		// Then
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "PO-1042", got.Number())
		assert.Equal(t, order.TypeExpress, got.Type())
		assert.Equal(t, "ana", got.Actor())
		require.Len(t, got.Items(), 1)
		assert.Equal(t, "4", got.Items()[0].Requested.String())
		f.creator.AssertExpectations(t)
	})

	t.Run("should reject a request without an actor", func(t *testing.T) {
		f := newServerFixture()

		rec := f.do(http.MethodPost, "/api/v1/orders", "",
			`{"number":"PO-1","type":"express","priority":"high","items":[{"code":"A","requested":"1"}]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.creator.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("should reject an order without items", func(t *testing.T) {
		f := newServerFixture()

		rec := f.do(http.MethodPost, "/api/v1/orders", "ana",
			`{"number":"PO-1","type":"express","priority":"high","items":[]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should reject a negative quantity", func(t *testing.T) {
		f := newServerFixture()

		rec := f.do(http.MethodPost, "/api/v1/orders", "ana",
			`{"number":"PO-1","type":"express","priority":"high","items":[{"code":"A","requested":"-1"}]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should reject an unknown order type", func(t *testing.T) {
		f := newServerFixture()

		rec := f.do(http.MethodPost, "/api/v1/orders", "ana",
			`{"number":"PO-1","type":"rocket","priority":"high","items":[{"code":"A","requested":"1"}]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTransitionOrder(t *testing.T) {
	orderID := kernel.NewUUID()
	path := fmt.Sprintf("/api/v1/orders/%s/transitions", orderID)

	t.Run("should run an explicit transition with its gate inputs", func(t *testing.T) {
		// Given
		f := newServerFixture()
		var got commands.TransitionOrderCommand
		f.transition.On("Handle", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { got = args.Get(1).(commands.TransitionOrderCommand) }).
			Return(commands.TransitionResult{From: order.StatusInProduction, To: order.StatusQualityCheck, Changed: true}, nil).
			Once()

		// When
		rec := f.do(http.MethodPost, path, "ana", `{"status":"quality_check","justification":"partial"}`)

		// Then
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, services.OriginExplicit, got.Origin())
		assert.Equal(t, order.StatusQualityCheck, got.TargetStatus())
		assert.Equal(t, "partial", got.Justification())
		assert.True(t, orderID.IsEqual(got.OrderID()))

		var resp api.TransitionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Changed)
		assert.Equal(t, "quality_check", resp.To)
		assert.Empty(t, resp.Warning)
	})

	t.Run("should report a partial failure as a warning", func(t *testing.T) {
		f := newServerFixture()
		f.transition.On("Handle", mock.Anything, mock.Anything).
			Return(commands.TransitionResult{
				To:         order.StatusQualityCheck,
				Changed:    true,
				HistoryErr: errs.NewPartialFailureError("append transition records", errors.New("db down")),
			}, nil).Once()

		rec := f.do(http.MethodPost, path, "ana", `{"status":"quality_check"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.TransitionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Warning)
	})

	t.Run("should reject a body naming both a status and a phase", func(t *testing.T) {
		f := newServerFixture()

		rec := f.do(http.MethodPost, path, "ana", `{"status":"quality_check","phase":"logistics"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.transition.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("should reject an invalid order id", func(t *testing.T) {
		f := newServerFixture()

		rec := f.do(http.MethodPost, "/api/v1/orders/not-a-uuid/transitions", "ana", `{"status":"new"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	errorCases := []struct {
		name string
		err  error
		want int
	}{
		{"transition in flight", errs.NewTransitionInFlightError(orderID), http.StatusConflict},
		{"phase not authorized", fmt.Errorf("%w: logistics", commands.ErrPhaseNotAuthorized), http.StatusForbidden},
		{"pending items", services.ErrCompletionBlocked, http.StatusUnprocessableEntity},
		{"missing exception comment", services.ErrExceptionBlocked, http.StatusUnprocessableEntity},
		{"order not found", errs.NewObjectNotFoundError("order", orderID), http.StatusNotFound},
		{"status write failed", errs.NewPersistenceError("update order status", errors.New("timeout")), http.StatusServiceUnavailable},
		{"unexpected failure", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		t.Run("should map "+tc.name, func(t *testing.T) {
			f := newServerFixture()
			f.transition.On("Handle", mock.Anything, mock.Anything).
				Return(commands.TransitionResult{}, tc.err).Once()

			rec := f.do(http.MethodPost, path, "ana", `{"status":"completed"}`)

			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, tc.want, decodeError(t, rec).Code)
		})
	}

	t.Run("should not leak internal error details", func(t *testing.T) {
		f := newServerFixture()
		f.transition.On("Handle", mock.Anything, mock.Anything).
			Return(commands.TransitionResult{}, errors.New("pq: password authentication failed")).Once()

		rec := f.do(http.MethodPost, path, "ana", `{"status":"completed"}`)

		assert.NotContains(t, decodeError(t, rec).Message, "password")
	})
}

func TestDropOrder(t *testing.T) {
	t.Run("should drop the order on a phase", func(t *testing.T) {
		// Given
		f := newServerFixture()
		orderID := kernel.NewUUID()
		var got commands.TransitionOrderCommand
		f.transition.On("Handle", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { got = args.Get(1).(commands.TransitionOrderCommand) }).
			Return(commands.TransitionResult{To: order.StatusSeparation, Changed: true}, nil).Once()

		// When
		rec := f.do(http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/drop", orderID), "ana",
			`{"phase":"warehouse"}`)

		// Then
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, services.OriginPhaseDrop, got.Origin())
		assert.Equal(t, order.PhaseWarehouse, got.TargetPhase())
	})

	t.Run("should pass the exception comment and responsible party", func(t *testing.T) {
		f := newServerFixture()
		var got commands.TransitionOrderCommand
		f.transition.On("Handle", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { got = args.Get(1).(commands.TransitionOrderCommand) }).
			Return(commands.TransitionResult{}, nil).Once()

		rec := f.do(http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/drop", kernel.NewUUID()), "ana",
			`{"phase":"exception","comment":"supplier failed","responsible":"purchasing"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "supplier failed", got.Comment())
		assert.Equal(t, "purchasing", got.Responsible())
	})

	t.Run("should reject an unknown phase", func(t *testing.T) {
		f := newServerFixture()

		rec := f.do(http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/drop", kernel.NewUUID()), "ana",
			`{"phase":"moon"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChangeItemStatus(t *testing.T) {
	t.Run("should report the cascade", func(t *testing.T) {
		// Given
		f := newServerFixture()
		orderID, itemID := kernel.NewUUID(), kernel.NewUUID()
		var got commands.ChangeItemStatusCommand
		f.itemStatus.On("Handle", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { got = args.Get(1).(commands.ChangeItemStatusCommand) }).
			Return(commands.ItemStatusResult{
				Changed: true,
				Cascade: &commands.TransitionResult{To: order.StatusPurchaseRequired, Changed: true},
			}, nil).Once()

		// When
		rec := f.do(http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/items/%s/status", orderID, itemID), "ana",
			`{"status":"purchase_required"}`)

		// Then
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, order.ItemPurchaseRequired, got.Status())
		assert.True(t, itemID.IsEqual(got.ItemID()))
		var resp api.ItemStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Cascade)
		assert.Equal(t, "purchase_required", resp.Cascade.To)
	})

	t.Run("should map locked items to conflict", func(t *testing.T) {
		f := newServerFixture()
		f.itemStatus.On("Handle", mock.Anything, mock.Anything).
			Return(commands.ItemStatusResult{}, order.ErrItemsAreLocked).Once()

		rec := f.do(http.MethodPost,
			fmt.Sprintf("/api/v1/orders/%s/items/%s/status", kernel.NewUUID(), kernel.NewUUID()), "ana",
			`{"status":"in_stock"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestGetBoard(t *testing.T) {
	t.Run("should return every column and flag overdue cards", func(t *testing.T) {
		// Given
		f := newServerFixture()
		past := fixedNow.Add(-time.Hour)
		f.board.On("Handle", mock.Anything, mock.Anything).
			Return(queries.GetPhaseBoardQueryResponse{Columns: []queries.PhaseColumn{
				{Phase: order.PhaseProduction, Orders: []queries.BoardCard{
					{ID: kernel.NewUUID(), Number: "PO-1", Status: order.StatusInProduction, Deadline: &past},
				}},
				{Phase: order.PhaseWarehouse},
			}}, nil).Once()

		// When
		rec := f.do(http.MethodGet, "/api/v1/board", "", "")

		// Then
		require.Equal(t, http.StatusOK, rec.Code)
		var resp []api.BoardColumnResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		require.Len(t, resp[0].Orders, 1)
		assert.True(t, resp[0].Orders[0].Overdue)
		assert.Empty(t, resp[1].Orders)
	})

	t.Run("should query one column when a phase is given", func(t *testing.T) {
		f := newServerFixture()
		var got queries.GetPhaseBoardQuery
		f.board.On("Handle", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { got = args.Get(1).(queries.GetPhaseBoardQuery) }).
			Return(queries.GetPhaseBoardQueryResponse{}, nil).Once()

		rec := f.do(http.MethodGet, "/api/v1/board?phase=logistics", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, order.PhaseLogistics, got.Phase())
	})
}

func TestGetOrderHistory(t *testing.T) {
	t.Run("should pass stream and sort to the query", func(t *testing.T) {
		// Given
		f := newServerFixture()
		orderID := kernel.NewUUID()
		var got queries.GetOrderHistoryQuery
		f.historyRead.On("Handle", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { got = args.Get(1).(queries.GetOrderHistoryQuery) }).
			Return([]queries.GetOrderHistoryQueryResponse{
				{ID: kernel.NewUUID(), Field: "status", OldValue: "new", NewValue: "approved", Actor: "ana", At: fixedNow},
			}, nil).Once()

		// When
		rec := f.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%s/history?stream=item_field&sort=desc", orderID), "", "")

		// Then
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, history.StreamItemField, got.Stream())
		assert.Equal(t, ports.SortDescending, got.Sort())
		var resp []api.HistoryEntryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "approved", resp[0].NewValue)
	})

	t.Run("should reject an unknown stream", func(t *testing.T) {
		f := newServerFixture()

		rec := f.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%s/history?stream=gossip", kernel.NewUUID()), "", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSessions(t *testing.T) {
	t.Run("should return not found for an unknown session", func(t *testing.T) {
		f := newServerFixture()
		id := kernel.NewUUID()
		f.sessions.On("Get", id).Return(nil, errs.NewObjectNotFoundError("edit session", id)).Once()

		rec := f.do(http.MethodGet, "/api/v1/sessions/"+id.String(), "", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("should refuse to close a session with unsaved changes", func(t *testing.T) {
		f := newServerFixture()
		id := kernel.NewUUID()
		f.sessions.On("Close", id, false).Return(editing.ErrUnsavedChanges).Once()

		rec := f.do(http.MethodDelete, "/api/v1/sessions/"+id.String(), "", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		f.sessions.AssertExpectations(t)
	})

	t.Run("should force close when asked", func(t *testing.T) {
		f := newServerFixture()
		id := kernel.NewUUID()
		f.sessions.On("Close", id, true).Return(nil).Once()

		rec := f.do(http.MethodDelete, "/api/v1/sessions/"+id.String()+"?force=true", "", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		f.sessions.AssertExpectations(t)
	})

	t.Run("should save and close", func(t *testing.T) {
		f := newServerFixture()
		id := kernel.NewUUID()
		f.sessions.On("SaveAndClose", mock.Anything, id).Return(nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/sessions/"+id.String()+"/close", "", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("should map a closed session to gone", func(t *testing.T) {
		f := newServerFixture()
		id := kernel.NewUUID()
		f.sessions.On("SaveAndClose", mock.Anything, id).Return(editing.ErrSessionClosed).Once()

		rec := f.do(http.MethodPost, "/api/v1/sessions/"+id.String()+"/close", "", "")

		assert.Equal(t, http.StatusGone, rec.Code)
	})

	t.Run("should open a session for the actor", func(t *testing.T) {
		f := newServerFixture()
		orderID := kernel.NewUUID()
		f.sessions.On("Open", mock.Anything, editing.OpenParams{
			OrderID: orderID,
			Actor:   "ana",
			Tab:     editing.TabItems,
		}).Return(nil, errs.NewObjectNotFoundError("order", orderID)).Once()

		rec := f.do(http.MethodPost, "/api/v1/sessions", "ana",
			fmt.Sprintf(`{"order_id":%q,"tab":"items"}`, orderID.String()))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		f.sessions.AssertExpectations(t)
	})

	t.Run("should reject an unknown tab", func(t *testing.T) {
		f := newServerFixture()

		rec := f.do(http.MethodPost, "/api/v1/sessions", "ana",
			fmt.Sprintf(`{"order_id":%q,"tab":"photos"}`, kernel.NewUUID().String()))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.sessions.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})
}
