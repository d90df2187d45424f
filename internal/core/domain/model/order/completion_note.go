package order

import (
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// PendingItemSnapshot freezes an undelivered item at the moment an order was
// force-completed.
type PendingItemSnapshot struct {
	ItemID      kernel.UUID
	Code        string
	Description string
	Requested   decimal.Decimal
	Delivered   decimal.Decimal
}

// CompletionNote justifies completing an order that still has pending items.
type CompletionNote struct {
	id           kernel.UUID
	orderID      kernel.UUID
	note         string
	author       string
	pendingItems []PendingItemSnapshot
	createdAt    time.Time
}

// NewCompletionNote snapshots pending and requires a non-blank justification.
func NewCompletionNote(orderID kernel.UUID, note, author string, pending []*Item, at time.Time) (*CompletionNote, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, errs.NewValueIsRequiredError("completion justification")
	}
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	snap := make([]PendingItemSnapshot, 0, len(pending))
	for _, it := range pending {
		snap = append(snap, PendingItemSnapshot{
			ItemID:      it.ID(),
			Code:        it.Code(),
			Description: it.Description(),
			Requested:   it.Requested(),
			Delivered:   it.Delivered(),
		})
	}
	return &CompletionNote{
		id:           kernel.NewUUID(),
		orderID:      orderID,
		note:         note,
		author:       author,
		pendingItems: snap,
		createdAt:    at,
	}, nil
}

// RestoreCompletionNote rebuilds a stored note.
func RestoreCompletionNote(id, orderID kernel.UUID, note, author string, pending []PendingItemSnapshot, at time.Time) *CompletionNote {
	return &CompletionNote{id: id, orderID: orderID, note: note, author: author, pendingItems: pending, createdAt: at}
}

func (n *CompletionNote) ID() kernel.UUID      { return n.id }
func (n *CompletionNote) OrderID() kernel.UUID { return n.orderID }
func (n *CompletionNote) Note() string         { return n.note }
func (n *CompletionNote) Author() string       { return n.author }
func (n *CompletionNote) CreatedAt() time.Time { return n.createdAt }

func (n *CompletionNote) PendingItems() []PendingItemSnapshot {
	out := make([]PendingItemSnapshot, len(n.pendingItems))
	copy(out, n.pendingItems)
	return out
}
