package history

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Stream names one of the append-only history logs.
type Stream string

const (
	// StreamStatus is the order status history.
	StreamStatus Stream = "status"
	// StreamItemField records per-field edits and status changes of items.
	StreamItemField Stream = "item_field"
	// StreamOrderChange is the generic log of order field edits.
	StreamOrderChange Stream = "order_change"
)

func (s Stream) Validate() error {
	switch s {
	case StreamStatus, StreamItemField, StreamOrderChange:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("stream", fmt.Errorf("%q is not a history stream", string(s)))
}

func (s Stream) String() string {
	return string(s)
}

// FieldStatus is the field name used by status records of orders and items.
const FieldStatus = "status"

// Record is an immutable history entry. There are no setters: a record is built
// once and appended.
type Record struct {
	id       kernel.UUID
	stream   Stream
	orderID  kernel.UUID
	itemID   *kernel.UUID
	field    string
	oldValue string
	newValue string
	actor    string
	at       time.Time
	note     string
}

// Entry is the input of NewRecord.
type Entry struct {
	Stream   Stream
	OrderID  kernel.UUID
	ItemID   *kernel.UUID
	Field    string
	OldValue string
	NewValue string
	Actor    string
	At       time.Time
	Note     string
}

// NewRecord validates e and assigns a fresh id.
func NewRecord(e Entry) (*Record, error) {
	var itemErr error
	if e.Stream == StreamItemField && e.ItemID == nil {
		itemErr = errs.NewValueIsRequiredError("item id")
	}
	var fieldErr error
	if strings.TrimSpace(e.Field) == "" {
		fieldErr = errs.NewValueIsRequiredError("field")
	}
	if err := errors.Join(e.Stream.Validate(), e.OrderID.Validate(), itemErr, fieldErr); err != nil {
		return nil, err
	}
	return Restore(kernel.NewUUID(), e), nil
}

// Restore rebuilds a stored record.
func Restore(id kernel.UUID, e Entry) *Record {
	r := &Record{
		id:       id,
		stream:   e.Stream,
		orderID:  e.OrderID,
		field:    e.Field,
		oldValue: e.OldValue,
		newValue: e.NewValue,
		actor:    e.Actor,
		at:       e.At,
		note:     e.Note,
	}
	if e.ItemID != nil {
		itemID := *e.ItemID
		r.itemID = &itemID
	}
	return r
}

func (r *Record) ID() kernel.UUID      { return r.id }
func (r *Record) Stream() Stream       { return r.stream }
func (r *Record) OrderID() kernel.UUID { return r.orderID }
func (r *Record) ItemID() *kernel.UUID { return r.itemID }
func (r *Record) Field() string        { return r.field }
func (r *Record) OldValue() string     { return r.oldValue }
func (r *Record) NewValue() string     { return r.newValue }
func (r *Record) Actor() string        { return r.actor }
func (r *Record) At() time.Time        { return r.at }
func (r *Record) Note() string         { return r.note }
