// Package noterepo stores completion notes and exception comments.
package noterepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompletionNoteDTO is the order_completion_notes row. The pending item snapshot is
// kept as JSON; it is never queried.
type CompletionNoteDTO struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID         `gorm:"type:uuid;index"`
	Note         string            `gorm:"type:text"`
	Author       string            `gorm:"size:128"`
	PendingItems []PendingItemJSON `gorm:"type:jsonb;serializer:json"`
	CreatedAt    time.Time
}

func (CompletionNoteDTO) TableName() string {
	return string(ports.TableCompletionNotes)
}

func (d *CompletionNoteDTO) ChangeOrderID() uuid.UUID { return d.OrderID }
func (d *CompletionNoteDTO) ChangeRowID() uuid.UUID   { return d.ID }

type PendingItemJSON struct {
	ItemID      uuid.UUID       `json:"item_id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Requested   decimal.Decimal `json:"requested"`
	Delivered   decimal.Decimal `json:"delivered"`
}

// CommentDTO is the order_comments row.
type CommentDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;index"`
	Body        string    `gorm:"type:text"`
	Responsible string    `gorm:"size:128"`
	Author      string    `gorm:"size:128"`
	CreatedAt   time.Time
}

func (CommentDTO) TableName() string {
	return string(ports.TableOrderComments)
}

func (d *CommentDTO) ChangeOrderID() uuid.UUID { return d.OrderID }
func (d *CommentDTO) ChangeRowID() uuid.UUID   { return d.ID }

func noteFromDomain(n *order.CompletionNote) CompletionNoteDTO {
	pending := make([]PendingItemJSON, 0, len(n.PendingItems()))
	for _, p := range n.PendingItems() {
		pending = append(pending, PendingItemJSON{
			ItemID:      p.ItemID.Bytes(),
			Code:        p.Code,
			Description: p.Description,
			Requested:   p.Requested,
			Delivered:   p.Delivered,
		})
	}
	return CompletionNoteDTO{
		ID:           n.ID().Bytes(),
		OrderID:      n.OrderID().Bytes(),
		Note:         n.Note(),
		Author:       n.Author(),
		PendingItems: pending,
		CreatedAt:    n.CreatedAt(),
	}
}

func noteToDomain(dto CompletionNoteDTO) (*order.CompletionNote, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	pending := make([]order.PendingItemSnapshot, 0, len(dto.PendingItems))
	for _, p := range dto.PendingItems {
		itemID, itemErr := kernel.UUIDFromBytes(p.ItemID[:])
		if itemErr != nil {
			return nil, itemErr
		}
		pending = append(pending, order.PendingItemSnapshot{
			ItemID:      itemID,
			Code:        p.Code,
			Description: p.Description,
			Requested:   p.Requested,
			Delivered:   p.Delivered,
		})
	}

	return order.RestoreCompletionNote(id, orderID, dto.Note, dto.Author, pending, dto.CreatedAt), nil
}

func commentFromDomain(c *order.Comment) CommentDTO {
	return CommentDTO{
		ID:          c.ID().Bytes(),
		OrderID:     c.OrderID().Bytes(),
		Body:        c.Body(),
		Responsible: c.Responsible(),
		Author:      c.Author(),
		CreatedAt:   c.CreatedAt(),
	}
}

func commentToDomain(dto CommentDTO) (*order.Comment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	return order.RestoreComment(id, orderID, dto.Body, dto.Responsible, dto.Author, dto.CreatedAt), nil
}
