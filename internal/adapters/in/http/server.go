package http

import (
	"context"
	"strings"
	"time"

	"fulfillment/internal/core/application/editing"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ActorHeader carries the name of the user behind a request.
const ActorHeader = "X-Actor"

type (
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}

	BoardReader interface {
		Handle(ctx context.Context, query queries.GetPhaseBoardQuery) (queries.GetPhaseBoardQueryResponse, error)
	}

	HistoryReader interface {
		Handle(ctx context.Context, query queries.GetOrderHistoryQuery) ([]queries.GetOrderHistoryQueryResponse, error)
	}

	// SessionRegistry owns the open edit sessions.
	SessionRegistry interface {
		Open(ctx context.Context, params editing.OpenParams) (*editing.Session, error)
		Get(id kernel.UUID) (*editing.Session, error)
		Close(id kernel.UUID, force bool) error
		SaveAndClose(ctx context.Context, id kernel.UUID) error
	}
)

// Handlers groups what the server delegates to.
type Handlers struct {
	CreateOrder      OrderCreator
	Transition       editing.Transitioner
	ChangeItemStatus editing.ItemStatusChanger
	Board            BoardReader
	History          HistoryReader
	Sessions         SessionRegistry
}

// Server exposes the order commands, the board and the edit sessions over HTTP.
type Server struct {
	createOrder      OrderCreator
	transition       editing.Transitioner
	changeItemStatus editing.ItemStatusChanger
	board            BoardReader
	history          HistoryReader
	sessions         SessionRegistry

	clock  func() time.Time
	logger *zap.Logger
}

func NewServer(h Handlers, clock func() time.Time, logger *zap.Logger) *Server {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		createOrder:      h.CreateOrder,
		transition:       h.Transition,
		changeItemStatus: h.ChangeItemStatus,
		board:            h.Board,
		history:          h.History,
		sessions:         h.Sessions,
		clock:            clock,
		logger:           logger.With(zap.String("component", "http_server")),
	}
}

// Register mounts every route on e and installs the request validator.
func (s *Server) Register(e *echo.Echo) {
	e.Validator = NewValidator()

	e.GET("/health", s.Health)

	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/board", s.GetBoard)
	api.GET("/orders/:id/history", s.GetOrderHistory)
	api.POST("/orders/:id/transitions", s.TransitionOrder)
	api.POST("/orders/:id/drop", s.DropOrder)
	api.POST("/orders/:id/items/:itemId/status", s.ChangeItemStatus)

	api.POST("/sessions", s.OpenSession)
	api.GET("/sessions/:id", s.GetSession)
	api.PUT("/sessions/:id/tab", s.SetSessionTab)
	api.PUT("/sessions/:id/fields/:field", s.ChangeSessionField)
	api.POST("/sessions/:id/items", s.AddSessionItem)
	api.PATCH("/sessions/:id/items/:itemId", s.EditSessionItem)
	api.DELETE("/sessions/:id/items/:itemId", s.RemoveSessionItem)
	api.PUT("/sessions/:id/header", s.EditSessionHeader)
	api.POST("/sessions/:id/save", s.SaveSession)
	api.POST("/sessions/:id/transitions", s.TransitionSession)
	api.POST("/sessions/:id/items/:itemId/status", s.ChangeSessionItemStatus)
	api.POST("/sessions/:id/close", s.SaveAndCloseSession)
	api.DELETE("/sessions/:id", s.CloseSession)
}

func (s *Server) Health(c echo.Context) error {
	return c.String(200, "Healthy")
}

// bindAndValidate decodes the body into req and runs the struct rules.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body")
	}
	return c.Validate(req)
}

func actorOf(c echo.Context) (string, error) {
	actor := strings.TrimSpace(c.Request().Header.Get(ActorHeader))
	if actor == "" {
		return "", badRequest("missing " + ActorHeader + " header")
	}
	return actor, nil
}

func uuidParam(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}
