package ports

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// SortOrder is the timestamp ordering of history listings.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

func (s SortOrder) Validate() error {
	if s != SortAscending && s != SortDescending {
		return errs.NewValueIsInvalidErrorWithCause("sort", fmt.Errorf("%q is neither asc nor desc", string(s)))
	}
	return nil
}

// ParseSortOrder reads a sort order, defaulting to ascending when raw is empty.
func ParseSortOrder(raw string) (SortOrder, error) {
	if raw == "" {
		return SortAscending, nil
	}
	s := SortOrder(raw)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// HistoryRepository is the append-only store of history records.
type HistoryRepository interface {
	Append(ctx context.Context, record *history.Record) error
	List(ctx context.Context, orderID kernel.UUID, stream history.Stream, sort SortOrder) ([]*history.Record, error)
}

// NoteRepository stores completion notes and exception comments.
type NoteRepository interface {
	AddCompletionNote(ctx context.Context, note *order.CompletionNote) error
	ListCompletionNotes(ctx context.Context, orderID kernel.UUID) ([]*order.CompletionNote, error)
	AddComment(ctx context.Context, comment *order.Comment) error
	ListComments(ctx context.Context, orderID kernel.UUID) ([]*order.Comment, error)
}
