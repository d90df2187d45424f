// Package orderrepo maps order and item aggregates to the orders and order_items
// tables.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the orders row. Watched fields are plain columns named after order.Field.
type OrderDTO struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Number               string    `gorm:"size:64;uniqueIndex"`
	Type                 string    `gorm:"size:32"`
	Status               string    `gorm:"size:48;index"`
	Priority             string    `gorm:"size:16"`
	CreatedAt            time.Time
	Deadline             *time.Time `gorm:"index"`
	ProductionReleasedAt *time.Time
	Notes                string `gorm:"type:text"`
	InternalNotes        string `gorm:"type:text"`
	InvoiceNumber        string `gorm:"size:64"`
	PurchaseOrderNumber  string `gorm:"size:64"`
	TrackingCode         string `gorm:"size:96"`
}

func (OrderDTO) TableName() string {
	return string(ports.TableOrders)
}

// ChangeOrderID and ChangeRowID let the change feed plugin scope events.
func (d *OrderDTO) ChangeOrderID() uuid.UUID { return d.ID }
func (d *OrderDTO) ChangeRowID() uuid.UUID   { return d.ID }

// ItemDTO is the order_items row. Phase stamps are stored as a JSON object keyed by phase.
type ItemDTO struct {
	ID             uuid.UUID            `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID            `gorm:"type:uuid;index"`
	Code           string               `gorm:"size:64"`
	Description    string               `gorm:"type:text"`
	Requested      decimal.Decimal      `gorm:"type:numeric(14,3)"`
	Delivered      decimal.Decimal      `gorm:"type:numeric(14,3)"`
	Status         string               `gorm:"size:32"`
	CurrentPhase   string               `gorm:"size:32"`
	PhaseStartedAt map[string]time.Time `gorm:"type:jsonb;serializer:json"`
	RemovedAt      *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (ItemDTO) TableName() string {
	return string(ports.TableOrderItems)
}

func (d *ItemDTO) ChangeOrderID() uuid.UUID { return d.OrderID }
func (d *ItemDTO) ChangeRowID() uuid.UUID   { return d.ID }

// itemColumns are written by ItemRepository.Update; id, order_id and created_at never change.
var itemColumns = []string{
	"code", "description", "requested", "delivered", "status", "current_phase", "phase_started_at", "removed_at",
}

func fromDomain(o *order.Order) OrderDTO {
	return OrderDTO{
		ID:                   o.ID().Bytes(),
		Number:               o.Number(),
		Type:                 string(o.Type()),
		Status:               string(o.Status()),
		Priority:             string(o.Priority()),
		CreatedAt:            o.CreatedAt(),
		Deadline:             o.Deadline(),
		ProductionReleasedAt: o.ProductionReleasedAt(),
		Notes:                o.Field(order.FieldNotes),
		InternalNotes:        o.Field(order.FieldInternalNotes),
		InvoiceNumber:        o.Field(order.FieldInvoiceNumber),
		PurchaseOrderNumber:  o.Field(order.FieldPurchaseOrderNumber),
		TrackingCode:         o.Field(order.FieldTrackingCode),
	}
}

func toDomain(dto OrderDTO, items []*order.Item) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.RestoreOrderParams{
		ID:                   id,
		Number:               dto.Number,
		Type:                 order.Type(dto.Type),
		Status:               order.Status(dto.Status),
		Priority:             order.Priority(dto.Priority),
		CreatedAt:            dto.CreatedAt,
		Deadline:             dto.Deadline,
		ProductionReleasedAt: dto.ProductionReleasedAt,
		Fields: map[order.Field]string{
			order.FieldNotes:               dto.Notes,
			order.FieldInternalNotes:       dto.InternalNotes,
			order.FieldInvoiceNumber:       dto.InvoiceNumber,
			order.FieldPurchaseOrderNumber: dto.PurchaseOrderNumber,
			order.FieldTrackingCode:        dto.TrackingCode,
		},
		Items: items,
	}), nil
}

func itemFromDomain(it *order.Item) ItemDTO {
	stamps := make(map[string]time.Time)
	for p, at := range it.PhaseStamps() {
		stamps[string(p)] = at
	}
	return ItemDTO{
		ID:             it.ID().Bytes(),
		OrderID:        it.OrderID().Bytes(),
		Code:           it.Code(),
		Description:    it.Description(),
		Requested:      it.Requested(),
		Delivered:      it.Delivered(),
		Status:         string(it.Status()),
		CurrentPhase:   string(it.CurrentPhase()),
		PhaseStartedAt: stamps,
		RemovedAt:      it.RemovedAt(),
	}
}

func itemToDomain(dto ItemDTO) (*order.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	stamps := make(map[order.Phase]time.Time, len(dto.PhaseStartedAt))
	for p, at := range dto.PhaseStartedAt {
		stamps[order.Phase(p)] = at
	}

	return order.RestoreItem(order.RestoreItemParams{
		ID:             id,
		OrderID:        orderID,
		Code:           dto.Code,
		Description:    dto.Description,
		Requested:      dto.Requested,
		Delivered:      dto.Delivered,
		Status:         order.ItemStatus(dto.Status),
		CurrentPhase:   order.Phase(dto.CurrentPhase),
		PhaseStartedAt: stamps,
		RemovedAt:      dto.RemovedAt,
	}), nil
}
