package historyrepo

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormHistoryRepository implements ports.HistoryRepository using GORM.
type GormHistoryRepository struct {
	db *gorm.DB
}

func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append inserts the record into the table of its stream.
func (r *GormHistoryRepository) Append(ctx context.Context, record *history.Record) error {
	row, err := rowFor(record.Stream(), fromDomain(record))
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// List returns the records of one stream for an order, sorted by timestamp.
func (r *GormHistoryRepository) List(
	ctx context.Context,
	orderID kernel.UUID,
	stream history.Stream,
	sort ports.SortOrder,
) ([]*history.Record, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	table, err := tableOf(stream)
	if err != nil {
		return nil, err
	}

	direction := "ASC"
	if sort == ports.SortDescending {
		direction = "DESC"
	}

	var dtos []RecordDTO
	if err = r.db.WithContext(ctx).
		Table(string(table)).
		Where("order_id = ?", orderID.Bytes()).
		Order(fmt.Sprintf("at %s, id %s", direction, direction)).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	records := make([]*history.Record, 0, len(dtos))
	for _, dto := range dtos {
		rec, err := toDomain(stream, dto)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func tableOf(stream history.Stream) (ports.Table, error) {
	table, ok := Tables[stream]
	if !ok {
		return "", errs.NewValueIsInvalidErrorWithCause("stream", fmt.Errorf("%q has no table", string(stream)))
	}
	return table, nil
}
