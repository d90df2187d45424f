package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrItemIsNotConstructed is returned when an Item was not created through NewItem or RestoreItem.
	ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

	// ErrItemIsRemoved is returned when editing an item that was soft-removed.
	ErrItemIsRemoved = errors.New("item is removed")
)

// ItemField names an item attribute tracked by the unsaved-changes tracker and
// recorded in the item history stream.
type ItemField string

const (
	ItemFieldCode        ItemField = "code"
	ItemFieldDescription ItemField = "description"
	ItemFieldRequested   ItemField = "requested_quantity"
	ItemFieldDelivered   ItemField = "delivered_quantity"
)

// ItemFields returns the tracked item fields in display order.
func ItemFields() []ItemField {
	return []ItemField{ItemFieldCode, ItemFieldDescription, ItemFieldRequested, ItemFieldDelivered}
}

func (f ItemField) Validate() error {
	switch f {
	case ItemFieldCode, ItemFieldDescription, ItemFieldRequested, ItemFieldDelivered:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("item field", fmt.Errorf("%q is not a tracked item field", string(f)))
}

func (f ItemField) String() string {
	return string(f)
}

// Item is a line of an order. Items are never deleted: removal sets removedAt.
//
// Item follows these invariants:
//   - requested quantity is positive
//   - delivered quantity is not negative
//   - phaseStartedAt holds at most one stamp per phase and a stamp is never overwritten
type Item struct {
	id      kernel.UUID
	orderID kernel.UUID

	code        string
	description string

	requested decimal.Decimal
	delivered decimal.Decimal

	status         ItemStatus
	currentPhase   Phase
	phaseStartedAt map[Phase]time.Time

	removedAt *time.Time

	isConstructed bool
}

// NewItem creates a pending item with nothing delivered yet.
func NewItem(id, orderID kernel.UUID, code, description string, requested decimal.Decimal) (*Item, error) {
	item := &Item{
		status:         ItemPending,
		currentPhase:   ItemPending.Phase(),
		delivered:      decimal.Zero,
		phaseStartedAt: make(map[Phase]time.Time),
		isConstructed:  true,
	}

	if err := errors.Join(
		setUUID("item id", id, &item.id),
		setUUID("order id", orderID, &item.orderID),
		item.SetCode(code),
		item.SetDescription(description),
		item.SetRequested(requested),
	); err != nil {
		return nil, err
	}

	return item, nil
}

// RestoreItemParams carries a persisted item back into the domain.
type RestoreItemParams struct {
	ID             kernel.UUID
	OrderID        kernel.UUID
	Code           string
	Description    string
	Requested      decimal.Decimal
	Delivered      decimal.Decimal
	Status         ItemStatus
	CurrentPhase   Phase
	PhaseStartedAt map[Phase]time.Time
	RemovedAt      *time.Time
}

// RestoreItem rebuilds an item from storage without re-running business validation.
func RestoreItem(p RestoreItemParams) *Item {
	stamps := make(map[Phase]time.Time, len(p.PhaseStartedAt))
	for phase, at := range p.PhaseStartedAt {
		stamps[phase] = at
	}
	return &Item{
		id:             p.ID,
		orderID:        p.OrderID,
		code:           p.Code,
		description:    p.Description,
		requested:      p.Requested,
		delivered:      p.Delivered,
		status:         p.Status,
		currentPhase:   p.CurrentPhase,
		phaseStartedAt: stamps,
		removedAt:      p.RemovedAt,
		isConstructed:  true,
	}
}

func (i *Item) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

func (i *Item) ID() kernel.UUID                  { return i.id }
func (i *Item) OrderID() kernel.UUID             { return i.orderID }
func (i *Item) Code() string                     { return i.code }
func (i *Item) Description() string              { return i.description }
func (i *Item) Requested() decimal.Decimal       { return i.requested }
func (i *Item) Delivered() decimal.Decimal       { return i.delivered }
func (i *Item) Status() ItemStatus               { return i.status }
func (i *Item) CurrentPhase() Phase              { return i.currentPhase }
func (i *Item) RemovedAt() *time.Time            { return i.removedAt }
func (i *Item) IsRemoved() bool                  { return i.removedAt != nil }
func (i *Item) IsEqual(other *Item) bool         { return other != nil && i.id.IsEqual(other.id) }
func (i *Item) PhaseStamps() map[Phase]time.Time { return i.cloneStamps() }

// PhaseStartedAt returns when the item first entered p.
func (i *Item) PhaseStartedAt(p Phase) (time.Time, bool) {
	at, ok := i.phaseStartedAt[p]
	return at, ok
}

// Pending is the quantity still to be delivered. It is never negative.
func (i *Item) Pending() decimal.Decimal {
	rest := i.requested.Sub(i.delivered)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// IsPending reports whether the item is not fully delivered.
func (i *Item) IsPending() bool {
	return i.delivered.LessThan(i.requested)
}

// FieldValue renders a tracked field the way it is written to history.
func (i *Item) FieldValue(f ItemField) string {
	switch f {
	case ItemFieldCode:
		return i.code
	case ItemFieldDescription:
		return i.description
	case ItemFieldRequested:
		return i.requested.String()
	case ItemFieldDelivered:
		return i.delivered.String()
	}
	return ""
}

func (i *Item) SetCode(code string) error {
	if err := i.ensureEditable(); err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return errs.NewValueIsRequiredError("code")
	}
	i.code = code
	return nil
}

func (i *Item) SetDescription(description string) error {
	if err := i.ensureEditable(); err != nil {
		return err
	}
	i.description = strings.TrimSpace(description)
	return nil
}

func (i *Item) SetRequested(q decimal.Decimal) error {
	if err := i.ensureEditable(); err != nil {
		return err
	}
	if !q.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("requested quantity", fmt.Errorf("%s is not greater than 0", q))
	}
	i.requested = q
	return nil
}

func (i *Item) SetDelivered(q decimal.Decimal) error {
	if err := i.ensureEditable(); err != nil {
		return err
	}
	if q.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("delivered quantity", fmt.Errorf("%s is negative", q))
	}
	i.delivered = q
	return nil
}

// ChangeStatus moves the item to next. It returns false without touching the item
// when next equals the current status, which keeps cascades from re-firing.
func (i *Item) ChangeStatus(next ItemStatus) (bool, error) {
	if err := next.Validate(); err != nil {
		return false, err
	}
	if next == i.status {
		return false, nil
	}
	if err := i.ensureEditable(); err != nil {
		return false, err
	}
	if !i.status.CanMoveTo(next) {
		return false, errs.NewValueIsInvalidErrorWithCause("item status",
			fmt.Errorf("cannot move from %s to %s", i.status, next))
	}
	i.status = next
	i.currentPhase = next.Phase()
	return true, nil
}

// StampPhase records the first entry into p. Later calls for the same phase are
// ignored and return false.
func (i *Item) StampPhase(p Phase, at time.Time) bool {
	if _, ok := i.phaseStartedAt[p]; ok {
		return false
	}
	if i.phaseStartedAt == nil {
		i.phaseStartedAt = make(map[Phase]time.Time)
	}
	i.phaseStartedAt[p] = at
	return true
}

// Remove soft-removes the item. Removing twice keeps the first timestamp.
func (i *Item) Remove(at time.Time) {
	if i.removedAt != nil {
		return
	}
	i.removedAt = &at
}

// AdoptLifecycle copies the status, current phase and phase stamps of src, which must
// be a stored copy of the same item. Tracked fields and removal are left alone.
func (i *Item) AdoptLifecycle(src *Item) {
	if src == nil || !i.id.IsEqual(src.id) {
		return
	}
	i.status = src.status
	i.currentPhase = src.currentPhase
	i.phaseStartedAt = src.cloneStamps()
}

// Clone returns a deep copy, used for snapshots and rollback of local edits.
func (i *Item) Clone() *Item {
	c := *i
	c.phaseStartedAt = i.cloneStamps()
	if i.removedAt != nil {
		at := *i.removedAt
		c.removedAt = &at
	}
	return &c
}

func (i *Item) cloneStamps() map[Phase]time.Time {
	out := make(map[Phase]time.Time, len(i.phaseStartedAt))
	for p, at := range i.phaseStartedAt {
		out[p] = at
	}
	return out
}

func (i *Item) ensureEditable() error {
	if i.removedAt != nil {
		return ErrItemIsRemoved
	}
	return nil
}

func setUUID(param string, id kernel.UUID, dst *kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(param, err)
	}
	*dst = id
	return nil
}
