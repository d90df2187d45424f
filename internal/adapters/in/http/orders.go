package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/labstack/echo/v4"
)

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req CreateOrderRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}

	orderType, err := order.ParseType(req.Type)
	if err != nil {
		return s.respondError(c, err)
	}
	priority, err := order.ParsePriority(req.Priority)
	if err != nil {
		return s.respondError(c, err)
	}
	specs := make([]commands.NewItemSpec, 0, len(req.Items))
	for _, it := range req.Items {
		specs = append(specs, commands.NewItemSpec{
			Code:        it.Code,
			Description: it.Description,
			Requested:   it.Requested,
		})
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, req.Number, orderType, priority, actor, specs)
	if err != nil {
		return s.respondError(c, err)
	}
	if err = s.createOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": orderID.String()})
}

// GetBoard handles GET /api/v1/board. The optional phase parameter limits the
// response to one column.
func (s *Server) GetBoard(c echo.Context) error {
	query := queries.NewGetPhaseBoardQuery()
	if raw := c.QueryParam("phase"); raw != "" {
		phase, err := order.ParsePhase(raw)
		if err != nil {
			return s.respondError(c, err)
		}
		if query, err = queries.NewGetPhaseColumnQuery(phase); err != nil {
			return s.respondError(c, err)
		}
	}

	board, err := s.board.Handle(c.Request().Context(), query)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toBoardResponse(board, s.clock()))
}

// GetOrderHistory handles GET /api/v1/orders/:id/history?stream=&sort=.
func (s *Server) GetOrderHistory(c echo.Context) error {
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	stream := history.StreamStatus
	if raw := c.QueryParam("stream"); raw != "" {
		stream = history.Stream(raw)
	}
	sort, err := ports.ParseSortOrder(c.QueryParam("sort"))
	if err != nil {
		return s.respondError(c, err)
	}
	query, err := queries.NewGetOrderHistoryQuery(orderID, stream, sort)
	if err != nil {
		return s.respondError(c, err)
	}

	entries, err := s.history.Handle(c.Request().Context(), query)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toHistoryResponses(entries))
}

// TransitionOrder handles POST /api/v1/orders/:id/transitions. The body names a
// status, or a phase to drop the order on.
func (s *Server) TransitionOrder(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return s.respondError(c, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	var req TransitionRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}

	cmd, err := transitionCommand(orderID, actor, req)
	if err != nil {
		return s.respondError(c, err)
	}
	result, err := s.transition.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTransitionResponse(result))
}

// DropOrder handles POST /api/v1/orders/:id/drop, the board drag-and-drop.
func (s *Server) DropOrder(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return s.respondError(c, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	var req DropRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}

	cmd, err := transitionCommand(orderID, actor, TransitionRequest{
		Phase:         req.Phase,
		Justification: req.Justification,
		Comment:       req.Comment,
		Responsible:   req.Responsible,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	result, err := s.transition.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTransitionResponse(result))
}

// ChangeItemStatus handles POST /api/v1/orders/:id/items/:itemId/status.
func (s *Server) ChangeItemStatus(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return s.respondError(c, err)
	}
	orderID, err := uuidParam(c, "id")
	if err != nil {
		return s.respondError(c, err)
	}
	itemID, err := uuidParam(c, "itemId")
	if err != nil {
		return s.respondError(c, err)
	}
	var req ItemStatusRequest
	if err = bindAndValidate(c, &req); err != nil {
		return s.respondError(c, err)
	}
	status, err := order.ParseItemStatus(req.Status)
	if err != nil {
		return s.respondError(c, err)
	}

	cmd, err := commands.NewChangeItemStatusCommand(orderID, itemID, status, actor)
	if err != nil {
		return s.respondError(c, err)
	}
	result, err := s.changeItemStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toItemStatusResponse(result))
}

func transitionOptions(req TransitionRequest) []commands.TransitionOption {
	var opts []commands.TransitionOption
	if req.Justification != "" {
		opts = append(opts, commands.WithJustification(req.Justification))
	}
	if req.Comment != "" || req.Responsible != "" {
		opts = append(opts, commands.WithExceptionComment(req.Comment, req.Responsible))
	}
	return opts
}

func transitionCommand(orderID kernel.UUID, actor string, req TransitionRequest) (commands.TransitionOrderCommand, error) {
	if req.Phase != "" {
		phase, err := order.ParsePhase(req.Phase)
		if err != nil {
			return commands.TransitionOrderCommand{}, err
		}
		return commands.NewPhaseDropCommand(orderID, phase, actor, transitionOptions(req)...)
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return commands.TransitionOrderCommand{}, err
	}
	return commands.NewStatusTransitionCommand(orderID, status, actor, transitionOptions(req)...)
}
