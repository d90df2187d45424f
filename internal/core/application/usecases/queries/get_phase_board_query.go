package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetPhaseBoardQueryIsNotConstructed = errors.New(
		"GetPhaseBoardQuery must be created via NewGetPhaseBoardQuery or NewGetPhaseColumnQuery",
	)
)

// GetPhaseBoardQuery reads the order board: one column per phase, each holding the
// orders whose status maps to it.
//
// Example:
//
//	query := NewGetPhaseBoardQuery()
//	board, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	for _, column := range board.Columns {
//	    fmt.Printf("%s: %d orders\n", column.Phase, len(column.Orders))
//	}
type GetPhaseBoardQuery struct {
	phase order.Phase
	guard guard.ConstructorGuard
}

// NewGetPhaseBoardQuery creates a query for every phase column.
func NewGetPhaseBoardQuery() GetPhaseBoardQuery {
	return GetPhaseBoardQuery{guard: guard.NewConstructorGuard()}
}

// NewGetPhaseColumnQuery creates a query for the single column of phase.
func NewGetPhaseColumnQuery(phase order.Phase) (GetPhaseBoardQuery, error) {
	if err := phase.Validate(); err != nil {
		return GetPhaseBoardQuery{}, err
	}
	return GetPhaseBoardQuery{phase: phase, guard: guard.NewConstructorGuard()}, nil
}

func (q GetPhaseBoardQuery) Validate() error {
	return q.guard.Validate(ErrGetPhaseBoardQueryIsNotConstructed)
}

// Phase is the requested column, empty for the whole board.
func (q GetPhaseBoardQuery) Phase() order.Phase {
	return q.phase
}

// GetPhaseBoardQueryResponse lists the columns in board order.
type GetPhaseBoardQueryResponse struct {
	Columns []PhaseColumn
}

type PhaseColumn struct {
	Phase  order.Phase
	Orders []BoardCard
}

// BoardCard is the board view of an order. Status is reported as stored, even when
// it is not a declared status.
type BoardCard struct {
	ID           kernel.UUID
	Number       string
	Type         order.Type
	Status       order.Status
	Priority     order.Priority
	Deadline     *time.Time
	PendingItems int
}

// Overdue reports whether the card is past its deadline at now.
func (c BoardCard) Overdue(now time.Time) bool {
	return c.Deadline != nil && c.Deadline.Before(now)
}
