package queries

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var historyTables = map[history.Stream]ports.Table{
	history.StreamStatus:      ports.TableOrderStatusHistory,
	history.StreamItemField:   ports.TableOrderItemHistory,
	history.StreamOrderChange: ports.TableOrderChanges,
}

// GetOrderHistoryQueryHandler reads history tables directly.
type GetOrderHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderHistoryQueryHandler(db *gorm.DB) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{db: db}
}

// Handle returns the entries sorted by timestamp in the requested direction. Ties are
// broken by id in the same direction.
func (h GetOrderHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderHistoryQuery,
) ([]GetOrderHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	direction := "ASC"
	if query.Sort() == ports.SortDescending {
		direction = "DESC"
	}

	//nolint:gosec // table and direction come from closed sets
	sql := fmt.Sprintf(`
		SELECT
			id,
			item_id,
			field,
			old_value,
			new_value,
			actor,
			at,
			note
		FROM %s
		WHERE order_id = ?
		ORDER BY at %s, id %s
	`, historyTables[query.Stream()], direction, direction)

	rows, err := h.db.WithContext(ctx).Raw(sql, query.OrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]GetOrderHistoryQueryResponse, 0)
	for rows.Next() {
		var entry GetOrderHistoryQueryResponse
		var id uuid.UUID
		var itemID *uuid.UUID

		err = rows.Scan(
			&id,
			&itemID,
			&entry.Field,
			&entry.OldValue,
			&entry.NewValue,
			&entry.Actor,
			&entry.At,
			&entry.Note,
		)
		if err != nil {
			return nil, err
		}

		entryID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		entry.ID = entryID

		if itemID != nil {
			parsed, itemErr := kernel.UUIDFromBytes(itemID[:])
			if itemErr != nil {
				return nil, itemErr
			}
			entry.ItemID = &parsed
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
