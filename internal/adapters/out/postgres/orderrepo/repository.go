package orderrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository. Inside a unit of work db
// is the transaction.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order row. Items are written by GormItemRepository.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get retrieves an order by ID together with all of its items.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	items, err := listItems(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, items)
}

// UpdateStatus writes the status and, when given, the deadline in one statement.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id kernel.UUID, status order.Status, deadline *time.Time) error {
	if err := status.Validate(); err != nil {
		return err
	}

	values := map[string]any{"status": string(status)}
	if deadline != nil {
		values["deadline"] = *deadline
	}
	return r.updateRow(ctx, id, values)
}

// UpdateField writes one watched field. Column names match order.Field values.
func (r *GormOrderRepository) UpdateField(ctx context.Context, id kernel.UUID, field order.Field, value string) error {
	if err := field.Validate(); err != nil {
		return err
	}
	return r.updateRow(ctx, id, map[string]any{string(field): value})
}

// UpdateHeader writes priority and deadline; a nil deadline clears the column.
func (r *GormOrderRepository) UpdateHeader(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	values := map[string]any{"priority": string(aggregate.Priority()), "deadline": aggregate.Deadline()}
	return r.updateRow(ctx, aggregate.ID(), values)
}

// MarkProductionReleased sets production_released_at only while it is NULL.
func (r *GormOrderRepository) MarkProductionReleased(ctx context.Context, id kernel.UUID, at time.Time) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{ID: id.Bytes()}).
		Where("production_released_at IS NULL").
		Update("production_released_at", at)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ListByStatuses returns the matching orders without items, oldest first.
func (r *GormOrderRepository) ListByStatuses(ctx context.Context, statuses []order.Status) ([]*order.Order, error) {
	if len(statuses) == 0 {
		return []*order.Order{}, nil
	}

	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}

	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).Where("status IN ?", raw).Order("created_at, id").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

// ListOverdue returns orders past their deadline that are neither completed nor cancelled.
func (r *GormOrderRepository) ListOverdue(ctx context.Context, now time.Time) ([]*order.Order, error) {
	closed := make([]string, 0)
	for _, p := range []order.Phase{order.PhaseCompleted, order.PhaseCancelled} {
		for _, s := range p.Statuses() {
			closed = append(closed, string(s))
		}
	}

	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Where("deadline IS NOT NULL AND deadline < ? AND status NOT IN ?", now, closed).
		Order("deadline, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormOrderRepository) updateRow(ctx context.Context, id kernel.UUID, values map[string]any) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{ID: id.Bytes()}).Updates(values)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	return nil
}

func toDomainList(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto, nil)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
