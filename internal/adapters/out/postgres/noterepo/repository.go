package noterepo

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GormNoteRepository implements ports.NoteRepository using GORM.
type GormNoteRepository struct {
	db *gorm.DB
}

func NewGormNoteRepository(db *gorm.DB) *GormNoteRepository {
	return &GormNoteRepository{db: db}
}

func (r *GormNoteRepository) AddCompletionNote(ctx context.Context, note *order.CompletionNote) error {
	dto := noteFromDomain(note)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// ListCompletionNotes returns the notes of an order, newest first.
func (r *GormNoteRepository) ListCompletionNotes(ctx context.Context, orderID kernel.UUID) ([]*order.CompletionNote, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []CompletionNoteDTO
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("created_at DESC, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	notes := make([]*order.CompletionNote, 0, len(dtos))
	for _, dto := range dtos {
		n, err := noteToDomain(dto)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func (r *GormNoteRepository) AddComment(ctx context.Context, comment *order.Comment) error {
	dto := commentFromDomain(comment)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// ListComments returns the exception comments of an order, newest first.
func (r *GormNoteRepository) ListComments(ctx context.Context, orderID kernel.UUID) ([]*order.Comment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []CommentDTO
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("created_at DESC, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	comments := make([]*order.Comment, 0, len(dtos))
	for _, dto := range dtos {
		c, err := commentToDomain(dto)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}
