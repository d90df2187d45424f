package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrItemsAreLocked is returned when items are added or removed after the order
	// has left the early phases.
	ErrItemsAreLocked = errors.New("items can only be changed in order generation or purchasing")
)

// Order is the aggregate root of the fulfillment pipeline. It owns its items and
// its watched free-text fields.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and a non-empty number
//   - Status is always a declared Status; the phase is derived from it and never stored
//   - productionReleasedAt is stamped at most once
//   - Items are added or removed only while the phase allows item changes
//   - Items are never deleted, only soft-removed
//
// Gates that involve other aggregates (completion notes, exception comments) are
// enforced by services.TransitionPolicy before ChangeStatus is called.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// number is the human-facing order number shown on the board
	number string

	orderType Type
	status    Status
	priority  Priority

	createdAt time.Time

	// deadline is the delivery deadline, nil until the order enters a time-sensitive phase
	deadline *time.Time

	// productionReleasedAt is set once, when the first item is released to production
	productionReleasedAt *time.Time

	fields map[Field]string
	items  []*Item

	// isConstructed ensures the order was created via NewOrder or RestoreOrder
	isConstructed bool
}

// NewOrder creates a new Order in StatusNew with no items.
//
// Example:
//
//	o, err := order.NewOrder(kernel.NewUUID(), "PO-1042", order.TypeExpress, order.PriorityHigh, time.Now())
//	if err != nil {
//	    // Handle validation error
//	}
func NewOrder(id kernel.UUID, number string, orderType Type, priority Priority, createdAt time.Time) (*Order, error) {
	o := &Order{
		status:        StatusNew,
		createdAt:     createdAt,
		fields:        make(map[Field]string),
		isConstructed: true,
	}

	if err := errors.Join(
		setUUID("order id", id, &o.id),
		o.setNumber(number),
		o.setType(orderType),
		o.SetPriority(priority),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrderParams carries a persisted order back into the domain.
type RestoreOrderParams struct {
	ID                   kernel.UUID
	Number               string
	Type                 Type
	Status               Status
	Priority             Priority
	CreatedAt            time.Time
	Deadline             *time.Time
	ProductionReleasedAt *time.Time
	Fields               map[Field]string
	Items                []*Item
}

// RestoreOrder rebuilds an order from storage. Undeclared statuses are kept as-is so
// that display code can still map them through PhaseOf.
func RestoreOrder(p RestoreOrderParams) *Order {
	fields := make(map[Field]string, len(p.Fields))
	for f, v := range p.Fields {
		fields[f] = v
	}
	items := make([]*Item, len(p.Items))
	copy(items, p.Items)
	return &Order{
		id:                   p.ID,
		number:               p.Number,
		orderType:            p.Type,
		status:               p.Status,
		priority:             p.Priority,
		createdAt:            p.CreatedAt,
		deadline:             p.Deadline,
		productionReleasedAt: p.ProductionReleasedAt,
		fields:               fields,
		items:                items,
		isConstructed:        true,
	}
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) Number() string {
	return o.number
}

func (o *Order) Type() Type {
	return o.orderType
}

func (o *Order) Status() Status {
	return o.status
}

// Phase is derived from Status on every call.
func (o *Order) Phase() Phase {
	return PhaseOf(o.status)
}

func (o *Order) Priority() Priority {
	return o.priority
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) Deadline() *time.Time {
	return o.deadline
}

func (o *Order) ProductionReleasedAt() *time.Time {
	return o.productionReleasedAt
}

// Field returns the current value of a watched field, empty when unset.
func (o *Order) Field(f Field) string {
	return o.fields[f]
}

// Fields returns a copy of every watched field that has a value.
func (o *Order) Fields() map[Field]string {
	out := make(map[Field]string, len(o.fields))
	for f, v := range o.fields {
		out[f] = v
	}
	return out
}

// Items returns the items that were not removed, in insertion order.
func (o *Order) Items() []*Item {
	out := make([]*Item, 0, len(o.items))
	for _, it := range o.items {
		if !it.IsRemoved() {
			out = append(out, it)
		}
	}
	return out
}

// AllItems returns every item including removed ones.
func (o *Order) AllItems() []*Item {
	out := make([]*Item, len(o.items))
	copy(out, o.items)
	return out
}

// Item looks up an item by id, removed items included.
func (o *Order) Item(id kernel.UUID) (*Item, bool) {
	for _, it := range o.items {
		if it.ID().IsEqual(id) {
			return it, true
		}
	}
	return nil, false
}

// PendingItems returns the active items that are not fully delivered.
func (o *Order) PendingItems() []*Item {
	var out []*Item
	for _, it := range o.Items() {
		if it.IsPending() {
			out = append(out, it)
		}
	}
	return out
}

// ChangeStatus applies an already validated status and, when given, the deadline that
// was written together with it.
func (o *Order) ChangeStatus(next Status, deadline *time.Time) error {
	if err := next.Validate(); err != nil {
		return err
	}
	o.status = next
	if deadline != nil {
		d := *deadline
		o.deadline = &d
	}
	return nil
}

func (o *Order) SetPriority(p Priority) error {
	if err := p.Validate(); err != nil {
		return err
	}
	o.priority = p
	return nil
}

func (o *Order) SetDeadline(deadline *time.Time) {
	if deadline == nil {
		o.deadline = nil
		return
	}
	d := *deadline
	o.deadline = &d
}

// SetField stores a watched field. Length limits are configuration and are checked
// by FieldLimits before the value reaches the aggregate.
func (o *Order) SetField(f Field, value string) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if o.fields == nil {
		o.fields = make(map[Field]string)
	}
	o.fields[f] = value
	return nil
}

// MarkProductionReleased stamps productionReleasedAt unless it is already set.
// It returns whether the stamp was applied.
func (o *Order) MarkProductionReleased(at time.Time) bool {
	if o.productionReleasedAt != nil {
		return false
	}
	o.productionReleasedAt = &at
	return true
}

// AddItem attaches a new item while the order is still in an early phase.
func (o *Order) AddItem(item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if !item.OrderID().IsEqual(o.id) {
		return errs.NewValueIsInvalidErrorWithCause("item",
			fmt.Errorf("item belongs to order %s, not %s", item.OrderID(), o.id))
	}
	if !o.Phase().AllowsItemChanges() {
		return ErrItemsAreLocked
	}
	if _, exists := o.Item(item.ID()); exists {
		return errs.NewValueIsInvalidErrorWithCause("item", fmt.Errorf("item %s already exists", item.ID()))
	}
	o.items = append(o.items, item)
	return nil
}

// RemoveItem soft-removes an item while the order is still in an early phase.
func (o *Order) RemoveItem(id kernel.UUID, at time.Time) error {
	if !o.Phase().AllowsItemChanges() {
		return ErrItemsAreLocked
	}
	it, ok := o.Item(id)
	if !ok {
		return errs.NewObjectNotFoundError("item", id)
	}
	it.Remove(at)
	return nil
}

// ReplaceItems swaps the item slice, used when a reload brings a fresh copy from storage.
func (o *Order) ReplaceItems(items []*Item) {
	o.items = make([]*Item, len(items))
	copy(o.items, items)
}

// Clone returns a deep copy of the order and its items.
func (o *Order) Clone() *Order {
	c := *o
	c.fields = o.Fields()
	c.items = make([]*Item, len(o.items))
	for i, it := range o.items {
		c.items[i] = it.Clone()
	}
	if o.deadline != nil {
		d := *o.deadline
		c.deadline = &d
	}
	if o.productionReleasedAt != nil {
		p := *o.productionReleasedAt
		c.productionReleasedAt = &p
	}
	return &c
}

func (o *Order) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return errs.NewValueIsRequiredError("number")
	}
	o.number = number
	return nil
}

func (o *Order) setType(t Type) error {
	if err := t.Validate(); err != nil {
		return err
	}
	o.orderType = t
	return nil
}
