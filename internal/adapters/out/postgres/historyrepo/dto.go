// Package historyrepo stores the three append-only history streams. Each stream has
// its own table with the same shape.
package historyrepo

import (
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
)

// RecordDTO is the shared shape of the history tables.
type RecordDTO struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID  uuid.UUID  `gorm:"type:uuid;index"`
	ItemID   *uuid.UUID `gorm:"type:uuid"`
	Field    string     `gorm:"size:64"`
	OldValue string     `gorm:"type:text"`
	NewValue string     `gorm:"type:text"`
	Actor    string     `gorm:"size:128"`
	At       time.Time  `gorm:"index"`
	Note     string     `gorm:"type:text"`
}

func (d *RecordDTO) ChangeOrderID() uuid.UUID { return d.OrderID }
func (d *RecordDTO) ChangeRowID() uuid.UUID   { return d.ID }

// One type per table keeps index names unique.
type (
	StatusRecordDTO struct{ RecordDTO }
	ItemRecordDTO   struct{ RecordDTO }
	ChangeRecordDTO struct{ RecordDTO }
)

func (StatusRecordDTO) TableName() string { return string(ports.TableOrderStatusHistory) }
func (ItemRecordDTO) TableName() string   { return string(ports.TableOrderItemHistory) }
func (ChangeRecordDTO) TableName() string { return string(ports.TableOrderChanges) }

// rowFor wraps dto in the table type of stream.
func rowFor(stream history.Stream, dto RecordDTO) (any, error) {
	switch stream {
	case history.StreamStatus:
		return &StatusRecordDTO{dto}, nil
	case history.StreamItemField:
		return &ItemRecordDTO{dto}, nil
	case history.StreamOrderChange:
		return &ChangeRecordDTO{dto}, nil
	}
	return nil, errs.NewValueIsInvalidErrorWithCause("stream", fmt.Errorf("%q has no table", string(stream)))
}

// Tables maps each stream to its table.
var Tables = map[history.Stream]ports.Table{
	history.StreamStatus:      ports.TableOrderStatusHistory,
	history.StreamItemField:   ports.TableOrderItemHistory,
	history.StreamOrderChange: ports.TableOrderChanges,
}

func fromDomain(r *history.Record) RecordDTO {
	dto := RecordDTO{
		ID:       r.ID().Bytes(),
		OrderID:  r.OrderID().Bytes(),
		Field:    r.Field(),
		OldValue: r.OldValue(),
		NewValue: r.NewValue(),
		Actor:    r.Actor(),
		At:       r.At(),
		Note:     r.Note(),
	}
	if itemID := r.ItemID(); itemID != nil {
		raw := itemID.Bytes()
		dto.ItemID = &raw
	}
	return dto
}

func toDomain(stream history.Stream, dto RecordDTO) (*history.Record, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	var itemID *kernel.UUID
	if dto.ItemID != nil {
		iID, itemErr := kernel.UUIDFromBytes((*dto.ItemID)[:])
		if itemErr != nil {
			return nil, itemErr
		}
		itemID = &iID
	}

	return history.Restore(id, history.Entry{
		Stream:   stream,
		OrderID:  orderID,
		ItemID:   itemID,
		Field:    dto.Field,
		OldValue: dto.OldValue,
		NewValue: dto.NewValue,
		Actor:    dto.Actor,
		At:       dto.At,
		Note:     dto.Note,
	}), nil
}
