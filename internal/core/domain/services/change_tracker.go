package services

import (
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderField names a top-level order attribute compared by the ChangeTracker.
type OrderField string

const (
	OrderFieldPriority OrderField = "priority"
	OrderFieldDeadline OrderField = "deadline"
)

type orderBaseline struct {
	priority order.Priority
	deadline *time.Time
}

// ChangeTracker remembers the state of an order when an edit session opened and
// tells which items and fields were changed locally since then. Watched text fields
// are excluded: they are autosaved and never unsaved for long.
//
// A ChangeTracker is not safe for concurrent use; the edit session serializes access.
type ChangeTracker struct {
	taken       bool
	baseline    orderBaseline
	items       map[kernel.UUID]map[order.ItemField]string
	snapshotIDs []kernel.UUID
}

func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{}
}

// Snapshot records o and its active items as the clean state.
func (t *ChangeTracker) Snapshot(o *order.Order) {
	t.taken = true
	t.baseline = orderBaseline{priority: o.Priority()}
	if d := o.Deadline(); d != nil {
		dd := *d
		t.baseline.deadline = &dd
	}
	items := o.Items()
	t.items = make(map[kernel.UUID]map[order.ItemField]string, len(items))
	t.snapshotIDs = make([]kernel.UUID, 0, len(items))
	for _, it := range items {
		t.items[it.ID()] = itemValues(it)
		t.snapshotIDs = append(t.snapshotIDs, it.ID())
	}
}

// Rebase makes o the new clean state, typically right after a successful save.
func (t *ChangeTracker) Rebase(o *order.Order) {
	t.Snapshot(o)
}

// HasSnapshot reports whether Snapshot was called.
func (t *ChangeTracker) HasSnapshot() bool {
	return t.taken
}

// IsDirty reports whether o differs from the snapshot in its item set, in a tracked
// item field or in a tracked order field.
func (t *ChangeTracker) IsDirty(o *order.Order) bool {
	if !t.taken {
		return false
	}
	if t.IsOrderFieldModified(o, OrderFieldPriority) || t.IsOrderFieldModified(o, OrderFieldDeadline) {
		return true
	}
	items := o.Items()
	if len(items) != len(t.items) {
		return true
	}
	for _, it := range items {
		base, ok := t.items[it.ID()]
		if !ok {
			return true
		}
		for _, f := range order.ItemFields() {
			if base[f] != it.FieldValue(f) {
				return true
			}
		}
	}
	return false
}

// IsFieldModified reports whether field f of item itemID differs from the snapshot.
// Items added after the snapshot report every field as modified; removed or unknown
// items report false.
func (t *ChangeTracker) IsFieldModified(o *order.Order, itemID kernel.UUID, f order.ItemField) bool {
	if !t.taken {
		return false
	}
	it, ok := o.Item(itemID)
	if !ok || it.IsRemoved() {
		return false
	}
	base, ok := t.items[itemID]
	if !ok {
		return true
	}
	return base[f] != it.FieldValue(f)
}

// IsOrderFieldModified reports whether a tracked top-level field differs from the snapshot.
func (t *ChangeTracker) IsOrderFieldModified(o *order.Order, f OrderField) bool {
	if !t.taken {
		return false
	}
	switch f {
	case OrderFieldPriority:
		return o.Priority() != t.baseline.priority
	case OrderFieldDeadline:
		return !sameTime(o.Deadline(), t.baseline.deadline)
	}
	return false
}

// IsItemModified reports whether item itemID was added, removed or edited locally
// since the snapshot.
func (t *ChangeTracker) IsItemModified(o *order.Order, itemID kernel.UUID) bool {
	if !t.taken {
		return false
	}
	it, ok := o.Item(itemID)
	base, tracked := t.items[itemID]
	switch {
	case !ok:
		return tracked
	case it.IsRemoved():
		return tracked
	case !tracked:
		return true
	}
	for _, f := range order.ItemFields() {
		if base[f] != it.FieldValue(f) {
			return true
		}
	}
	return false
}

// Baseline returns the snapshot value of field f of item itemID.
func (t *ChangeTracker) Baseline(itemID kernel.UUID, f order.ItemField) (string, bool) {
	base, ok := t.items[itemID]
	if !ok {
		return "", false
	}
	return base[f], true
}

// Refresh makes the stored state of items the clean state for those items only.
// Removed items leave the snapshot. The order-level baseline is not touched.
func (t *ChangeTracker) Refresh(items []*order.Item) {
	if !t.taken {
		return
	}
	for _, it := range items {
		if it.IsRemoved() {
			if _, ok := t.items[it.ID()]; ok {
				delete(t.items, it.ID())
				t.snapshotIDs = slices.DeleteFunc(t.snapshotIDs, it.ID().IsEqual)
			}
			continue
		}
		if _, ok := t.items[it.ID()]; !ok {
			t.snapshotIDs = append(t.snapshotIDs, it.ID())
		}
		t.items[it.ID()] = itemValues(it)
	}
}

// AcceptOrderField makes the current value of f in o its clean value. Used when a
// change to f came from storage rather than from a local edit.
func (t *ChangeTracker) AcceptOrderField(o *order.Order, f OrderField) {
	switch f {
	case OrderFieldPriority:
		t.baseline.priority = o.Priority()
	case OrderFieldDeadline:
		t.baseline.deadline = nil
		if d := o.Deadline(); d != nil {
			dd := *d
			t.baseline.deadline = &dd
		}
	}
}

// ModifiedFields lists, per active item, the tracked fields that changed.
func (t *ChangeTracker) ModifiedFields(o *order.Order) map[kernel.UUID][]order.ItemField {
	out := make(map[kernel.UUID][]order.ItemField)
	if !t.taken {
		return out
	}
	for _, it := range o.Items() {
		for _, f := range order.ItemFields() {
			if t.IsFieldModified(o, it.ID(), f) {
				out[it.ID()] = append(out[it.ID()], f)
			}
		}
	}
	return out
}

// AddedItems lists active items that are not part of the snapshot.
func (t *ChangeTracker) AddedItems(o *order.Order) []*order.Item {
	var out []*order.Item
	for _, it := range o.Items() {
		if _, ok := t.items[it.ID()]; !ok {
			out = append(out, it)
		}
	}
	return out
}

// RemovedItems lists snapshot items that are no longer active in o.
func (t *ChangeTracker) RemovedItems(o *order.Order) []kernel.UUID {
	active := make(map[kernel.UUID]struct{}, len(t.items))
	for _, it := range o.Items() {
		active[it.ID()] = struct{}{}
	}
	var out []kernel.UUID
	for _, id := range t.snapshotIDs {
		if _, ok := active[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func itemValues(it *order.Item) map[order.ItemField]string {
	values := make(map[order.ItemField]string, len(order.ItemFields()))
	for _, f := range order.ItemFields() {
		values[f] = it.FieldValue(f)
	}
	return values
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
