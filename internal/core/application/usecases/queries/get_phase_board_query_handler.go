package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPhaseBoardQueryHandler builds the board from the orders table. Phases are never
// stored: each row goes through the StatusPhaseMapper, so an undeclared status lands
// in the default phase with a logged warning.
type GetPhaseBoardQueryHandler struct {
	db     *gorm.DB
	mapper services.StatusPhaseMapper
}

func NewGetPhaseBoardQueryHandler(db *gorm.DB, mapper services.StatusPhaseMapper) GetPhaseBoardQueryHandler {
	return GetPhaseBoardQueryHandler{db: db, mapper: mapper}
}

// Handle returns every column, or only the requested one. Cards keep creation order.
func (h GetPhaseBoardQueryHandler) Handle(
	ctx context.Context,
	query GetPhaseBoardQuery,
) (GetPhaseBoardQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetPhaseBoardQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.number,
			o.type,
			o.status,
			o.priority,
			o.deadline,
			(
				SELECT COUNT(*)
				FROM order_items i
				WHERE i.order_id = o.id
					AND i.removed_at IS NULL
					AND i.delivered < i.requested
			) AS pending_items
		FROM orders o
		ORDER BY o.created_at, o.id
	`).Rows()
	if err != nil {
		return GetPhaseBoardQueryResponse{}, err
	}
	defer rows.Close()

	byPhase := make(map[order.Phase][]BoardCard)
	for rows.Next() {
		var (
			id                            uuid.UUID
			number, typ, status, priority string
			deadline                      *time.Time
			pending                       int
		)
		if err = rows.Scan(&id, &number, &typ, &status, &priority, &deadline, &pending); err != nil {
			return GetPhaseBoardQueryResponse{}, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return GetPhaseBoardQueryResponse{}, idErr
		}

		card := BoardCard{
			ID:           orderID,
			Number:       number,
			Type:         order.Type(typ),
			Status:       order.Status(status),
			Priority:     order.Priority(priority),
			Deadline:     deadline,
			PendingItems: pending,
		}
		phase := h.mapper.PhaseOf(card.Status)
		if query.Phase() != "" && phase != query.Phase() {
			continue
		}
		byPhase[phase] = append(byPhase[phase], card)
	}
	if err = rows.Err(); err != nil {
		return GetPhaseBoardQueryResponse{}, err
	}

	phases := order.Phases()
	if query.Phase() != "" {
		phases = []order.Phase{query.Phase()}
	}

	response := GetPhaseBoardQueryResponse{Columns: make([]PhaseColumn, 0, len(phases))}
	for _, p := range phases {
		cards := byPhase[p]
		if cards == nil {
			cards = make([]BoardCard, 0)
		}
		response.Columns = append(response.Columns, PhaseColumn{Phase: p, Orders: cards})
	}
	return response, nil
}
