package editing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrUnsavedChanges is returned by Close while item or header edits are unsaved.
	// Callers confirm by closing again with force.
	ErrUnsavedChanges = errors.New("order has unsaved changes")
	ErrSessionClosed  = errors.New("edit session is closed")
)

// A reload that overlapped a local write is fetched again once, so that rows read
// before the write do not replace what the write just stored.
const maxReloadAttempts = 2

// Tab is the panel of the order dialog the session has open.
type Tab string

const (
	TabDetails  Tab = "details"
	TabItems    Tab = "items"
	TabHistory  Tab = "history"
	TabComments Tab = "comments"
)

func (t Tab) Validate() error {
	switch t {
	case TabDetails, TabItems, TabHistory, TabComments:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("tab", fmt.Errorf("%q is not a tab", string(t)))
}

// ParseTab reads a tab name, defaulting to the details tab.
func ParseTab(raw string) (Tab, error) {
	if raw == "" {
		return TabDetails, nil
	}
	t := Tab(raw)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

type (
	Transitioner interface {
		Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (commands.TransitionResult, error)
	}

	ItemStatusChanger interface {
		Handle(ctx context.Context, cmd commands.ChangeItemStatusCommand) (commands.ItemStatusResult, error)
	}

	ItemsSaver interface {
		Handle(ctx context.Context, cmd commands.SaveItemsCommand) (commands.SaveItemsResult, error)
	}
)

// SessionDeps are the collaborators shared by every session. Feed may be nil, in
// which case sessions never reconcile.
type SessionDeps struct {
	Store       commands.Store
	Feed        ports.ChangeFeed
	Transitions Transitioner
	ItemStatus  ItemStatusChanger
	Items       ItemsSaver
	Fields      FieldSaver
	Notifier    ports.Notifier

	Limits       order.FieldLimits
	Quiet        time.Duration
	WriteTimeout time.Duration
	AfterFunc    AfterFunc
	Clock        func() time.Time
	Logger       *zap.Logger
}

// OpenParams is the explicit state a session starts from.
type OpenParams struct {
	OrderID kernel.UUID
	Actor   string
	Tab     Tab
}

// Session is one user's edit state of one order.
type Session struct {
	id      kernel.UUID
	orderID kernel.UUID
	actor   string
	deps    SessionDeps
	logger  *zap.Logger

	autosave   *AutosaveFieldSync
	reconciler *Reconciler

	mu            sync.Mutex
	closed        bool
	writing       bool
	writeSeq      uint64
	tab           Tab
	order         *order.Order
	tracker       *services.ChangeTracker
	statusHistory []*history.Record
	itemHistory   []*history.Record
	comments      []*order.Comment
	notes         []*order.CompletionNote
	lastActivity  time.Time
}

func openSession(ctx context.Context, deps SessionDeps, params OpenParams) (*Session, error) {
	actor := strings.TrimSpace(params.Actor)
	var actorErr error
	if actor == "" {
		actorErr = errs.NewValueIsRequiredError("actor")
	}
	if params.Tab == "" {
		params.Tab = TabDetails
	}
	if err := errors.Join(params.OrderID.Validate(), actorErr, params.Tab.Validate()); err != nil {
		return nil, err
	}

	o, err := deps.Store.OrderRepository().Get(ctx, params.OrderID)
	if err != nil {
		return nil, err
	}

	id := kernel.NewUUID()
	s := &Session{
		id:      id,
		orderID: params.OrderID,
		actor:   actor,
		deps:    deps,
		logger: deps.Logger.With(
			zap.String("component", "edit_session"),
			zap.String("session_id", id.String()),
			zap.String("order_id", params.OrderID.String())),
		tab:          params.Tab,
		order:        o,
		tracker:      services.NewChangeTracker(),
		lastActivity: deps.Clock(),
	}
	s.tracker.Snapshot(o)

	if s.statusHistory, s.comments, s.notes, err = s.fetchStatusSlices(ctx); err != nil {
		return nil, err
	}
	if s.itemHistory, err = deps.Store.HistoryRepository().List(
		ctx, params.OrderID, history.StreamItemField, ports.SortDescending); err != nil {
		return nil, err
	}

	s.autosave = NewAutosaveFieldSync(AutosaveConfig{
		OrderID:      params.OrderID,
		Actor:        actor,
		Persisted:    o.Fields(),
		Limits:       deps.Limits,
		Quiet:        deps.Quiet,
		WriteTimeout: deps.WriteTimeout,
	}, deps.Fields, deps.Notifier, deps.AfterFunc, deps.Logger)

	if deps.Feed != nil {
		s.reconciler = NewReconciler(deps.Feed, params.OrderID, s, deps.Logger)
		if err = s.reconciler.Start(ctx); err != nil {
			s.autosave.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) ID() kernel.UUID      { return s.id }
func (s *Session) OrderID() kernel.UUID { return s.orderID }
func (s *Session) Actor() string        { return s.actor }

func (s *Session) Tab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

func (s *Session) SetTab(tab Tab) error {
	if err := tab.Validate(); err != nil {
		return err
	}
	if err := s.lockOpen(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.tab = tab
	return nil
}

// Order returns a copy of the local order, unsaved edits included.
func (s *Session) Order() *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Clone()
}

// StatusHistory is newest first.
func (s *Session) StatusHistory() []*history.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.statusHistory)
}

// ItemHistory is newest first.
func (s *Session) ItemHistory() []*history.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.itemHistory)
}

func (s *Session) Comments() []*order.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.comments)
}

func (s *Session) CompletionNotes() []*order.CompletionNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notes)
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// IsDirty reports unsaved item or header edits. Watched text fields never count:
// they are autosaved.
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.IsDirty(s.order)
}

func (s *Session) IsFieldModified(itemID kernel.UUID, f order.ItemField) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.IsFieldModified(s.order, itemID, f)
}

func (s *Session) IsOrderFieldModified(f services.OrderField) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.IsOrderFieldModified(s.order, f)
}

func (s *Session) ModifiedFields() map[kernel.UUID][]order.ItemField {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.ModifiedFields(s.order)
}

// Flag returns the echo flag of a reconciled table, nil without a change feed.
func (s *Session) Flag(table ports.Table) *EchoFlag {
	if s.reconciler == nil {
		return nil
	}
	return s.reconciler.Flag(table)
}

// OnFieldChange applies a watched field edit locally and schedules its autosave.
func (s *Session) OnFieldChange(field order.Field, value string) error {
	if err := s.lockOpen(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := s.autosave.OnFieldChange(field, value); err != nil {
		return err
	}
	return s.order.SetField(field, value)
}

// AddItem adds an unsaved item. It is written by Save.
func (s *Session) AddItem(code, description string, requested decimal.Decimal) (*order.Item, error) {
	if err := s.lockOpen(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	item, err := order.NewItem(kernel.NewUUID(), s.orderID, code, description, requested)
	if err != nil {
		return nil, err
	}
	item.StampPhase(item.CurrentPhase(), s.deps.Clock())
	if err = s.order.AddItem(item); err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

// RemoveItem soft-removes an item locally. It is written by Save.
func (s *Session) RemoveItem(itemID kernel.UUID) error {
	if err := s.lockOpen(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	return s.order.RemoveItem(itemID, s.deps.Clock())
}

// EditItem changes a tracked item field locally. Quantities are decimal strings.
func (s *Session) EditItem(itemID kernel.UUID, f order.ItemField, value string) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := s.lockOpen(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	item, ok := s.order.Item(itemID)
	if !ok || item.IsRemoved() {
		return errs.NewObjectNotFoundError("item", itemID)
	}

	switch f {
	case order.ItemFieldCode:
		return item.SetCode(value)
	case order.ItemFieldDescription:
		return item.SetDescription(value)
	case order.ItemFieldRequested, order.ItemFieldDelivered:
		q, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause(string(f), err)
		}
		if f == order.ItemFieldRequested {
			return item.SetRequested(q)
		}
		return item.SetDelivered(q)
	}
	return nil
}

func (s *Session) SetPriority(p order.Priority) error {
	if err := s.lockOpen(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	return s.order.SetPriority(p)
}

func (s *Session) SetDeadline(deadline *time.Time) error {
	if err := s.lockOpen(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.order.SetDeadline(deadline)
	return nil
}

// Save writes the unsaved item and header edits. Saving a clean session does nothing.
// On failure the rows written before the failing one are no longer dirty. Edits made
// while the save is in flight stay dirty.
func (s *Session) Save(ctx context.Context) (commands.SaveItemsResult, error) {
	if err := s.beginWrite(); err != nil {
		return commands.SaveItemsResult{}, err
	}
	cmd, err := s.buildSaveCommand()
	if err != nil {
		s.writing = false
		s.mu.Unlock()
		if errors.Is(err, commands.ErrNothingToSave) {
			return commands.SaveItemsResult{}, nil
		}
		return commands.SaveItemsResult{}, err
	}
	var flags []*EchoFlag
	if cmd.TouchesItems() {
		flags = s.arm(ports.TableOrderItems, ports.TableOrderItemHistory)
	}
	s.mu.Unlock()

	result, err := s.deps.Items.Handle(ctx, cmd)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endWrite()
	if err != nil {
		disarm(flags...)
	} else if len(result.Records) == 0 {
		// A save of several rows emits several events; the flag swallows the first and
		// the rest reload state that already matches.
		disarm(s.Flag(ports.TableOrderItemHistory))
	}
	if s.closed {
		return result, err
	}

	s.acceptSaved(cmd, result)
	s.prependItemHistory(result.Records)
	if err != nil {
		return result, err
	}
	s.logger.Info("items saved", zap.Int("rows", len(result.Saved)))
	return result, nil
}

// TransitionTo moves the order to status through the transition engine.
func (s *Session) TransitionTo(
	ctx context.Context,
	status order.Status,
	opts ...commands.TransitionOption,
) (commands.TransitionResult, error) {
	cmd, err := commands.NewStatusTransitionCommand(s.orderID, status, s.actor, opts...)
	if err != nil {
		return commands.TransitionResult{}, err
	}
	return s.transition(ctx, cmd)
}

// DropOnPhase moves the order to the default status of phase.
func (s *Session) DropOnPhase(
	ctx context.Context,
	phase order.Phase,
	opts ...commands.TransitionOption,
) (commands.TransitionResult, error) {
	cmd, err := commands.NewPhaseDropCommand(s.orderID, phase, s.actor, opts...)
	if err != nil {
		return commands.TransitionResult{}, err
	}
	return s.transition(ctx, cmd)
}

// ChangeItemStatus changes the lifecycle status of a stored item. Local unsaved edits
// of the item are kept.
func (s *Session) ChangeItemStatus(
	ctx context.Context,
	itemID kernel.UUID,
	status order.ItemStatus,
) (commands.ItemStatusResult, error) {
	cmd, err := commands.NewChangeItemStatusCommand(s.orderID, itemID, status, s.actor)
	if err != nil {
		return commands.ItemStatusResult{}, err
	}
	if err = s.beginWrite(); err != nil {
		return commands.ItemStatusResult{}, err
	}
	flags := s.arm(ports.TableOrderItems, ports.TableOrderItemHistory)
	s.mu.Unlock()

	result, err := s.deps.ItemStatus.Handle(ctx, cmd)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endWrite()
	if err != nil || !result.Changed {
		disarm(flags...)
		return result, err
	}
	if result.Record == nil {
		disarm(s.Flag(ports.TableOrderItemHistory))
	}
	if s.closed {
		return result, nil
	}

	if local, ok := s.order.Item(itemID); ok {
		local.AdoptLifecycle(result.Item)
	}
	if result.ProductionReleased && result.Order != nil {
		if at := result.Order.ProductionReleasedAt(); at != nil {
			s.order.MarkProductionReleased(*at)
		}
	}
	if result.Record != nil {
		s.itemHistory = append([]*history.Record{result.Record}, s.itemHistory...)
	}
	if result.Cascade != nil && result.Cascade.Changed {
		s.applyTransition(*result.Cascade)
	}
	return result, nil
}

// Close ends the session. While dirty it returns ErrUnsavedChanges unless force is
// set. Pending autosaves are cancelled, not written.
func (s *Session) Close(force bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	dirty := s.tracker.IsDirty(s.order)
	if dirty && !force {
		s.mu.Unlock()
		return ErrUnsavedChanges
	}
	s.closed = true
	s.mu.Unlock()

	// Reconciler handlers take s.mu, so it is stopped without holding it.
	s.autosave.Close()
	if s.reconciler != nil {
		s.reconciler.Stop()
	}
	s.logger.Info("session closed", zap.Bool("discarded_changes", dirty))
	return nil
}

// SaveAndClose flushes pending autosaves, saves item edits and closes.
func (s *Session) SaveAndClose(ctx context.Context) error {
	if err := s.autosave.Flush(ctx); err != nil {
		return err
	}
	if _, err := s.Save(ctx); err != nil {
		return err
	}
	return s.Close(false)
}

// ReloadStatus refreshes the order row, status history, comments and completion notes.
// A deadline or priority edited locally is kept.
func (s *Session) ReloadStatus(ctx context.Context) error {
	return s.reload(ctx, func(ctx context.Context) (func(), error) {
		fresh, err := s.deps.Store.OrderRepository().Get(ctx, s.orderID)
		if err != nil {
			return nil, err
		}
		records, comments, notes, err := s.fetchStatusSlices(ctx)
		if err != nil {
			return nil, err
		}
		return func() {
			s.adoptHeader(fresh)
			s.statusHistory = records
			s.comments = comments
			s.notes = notes
		}, nil
	})
}

func (s *Session) ReloadItemHistory(ctx context.Context) error {
	return s.reload(ctx, func(ctx context.Context) (func(), error) {
		records, err := s.deps.Store.HistoryRepository().List(ctx, s.orderID, history.StreamItemField, ports.SortDescending)
		if err != nil {
			return nil, err
		}
		return func() { s.itemHistory = records }, nil
	})
}

// ReloadItems replaces the items with the stored rows, except items that are added,
// removed or edited locally. Those keep their local fields and adopt the stored
// lifecycle.
func (s *Session) ReloadItems(ctx context.Context) error {
	return s.reload(ctx, func(ctx context.Context) (func(), error) {
		fresh, err := s.deps.Store.ItemRepository().ListByOrder(ctx, s.orderID)
		if err != nil {
			return nil, err
		}
		return func() { s.mergeItems(fresh) }, nil
	})
}

func (s *Session) lockOpen() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.lastActivity = s.deps.Clock()
	return nil
}

func (s *Session) reload(ctx context.Context, fetch func(context.Context) (func(), error)) error {
	for attempt := 1; ; attempt++ {
		s.mu.Lock()
		closed, seq := s.closed, s.writeSeq
		s.mu.Unlock()
		if closed {
			return ErrSessionClosed
		}

		apply, err := fetch(ctx)
		if err != nil {
			return err
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return ErrSessionClosed
		}
		if s.writeSeq != seq && attempt < maxReloadAttempts {
			s.mu.Unlock()
			continue
		}
		apply()
		s.mu.Unlock()
		return nil
	}
}

func (s *Session) transition(ctx context.Context, cmd commands.TransitionOrderCommand) (commands.TransitionResult, error) {
	if err := s.beginWrite(); err != nil {
		return commands.TransitionResult{}, err
	}
	flags := s.arm(ports.TableOrderStatusHistory)
	s.mu.Unlock()

	result, err := s.deps.Transitions.Handle(ctx, cmd)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endWrite()
	if err != nil {
		disarm(flags...)
		return result, err
	}
	if !result.Changed || result.Record == nil {
		disarm(flags...)
	}
	if result.Changed && !s.closed {
		s.applyTransition(result)
	}
	return result, nil
}

// beginWrite locks s.mu and marks a write in flight. A session issues one write at a
// time: a second one is rejected with a conflict, never queued. On success s.mu is
// held and the caller must release it before doing I/O.
func (s *Session) beginWrite() error {
	if err := s.lockOpen(); err != nil {
		return err
	}
	if s.writing {
		s.mu.Unlock()
		return errs.NewTransitionInFlightError(s.orderID)
	}
	s.writing = true
	return nil
}

// endWrite must be called with s.mu held. Bumping writeSeq makes reloads that read
// rows during the write fetch again.
func (s *Session) endWrite() {
	s.writing = false
	s.writeSeq++
}

func (s *Session) applyTransition(result commands.TransitionResult) {
	if err := s.order.ChangeStatus(result.To, result.Deadline); err != nil {
		s.logger.Warn("transition result not applied", zap.Error(err))
		return
	}
	if result.Deadline != nil {
		s.tracker.AcceptOrderField(s.order, services.OrderFieldDeadline)
	}
	if result.Record != nil {
		s.statusHistory = append([]*history.Record{result.Record}, s.statusHistory...)
	}
	if result.Comment != nil {
		s.comments = append([]*order.Comment{result.Comment}, s.comments...)
	}
	if result.Note != nil {
		s.notes = append([]*order.CompletionNote{result.Note}, s.notes...)
	}
}

// buildSaveCommand copies the items it writes, so local edits made while the save is
// in flight do not reach the rows.
func (s *Session) buildSaveCommand() (commands.SaveItemsCommand, error) {
	var added []*order.Item
	for _, it := range s.tracker.AddedItems(s.order) {
		added = append(added, it.Clone())
	}

	var removed []*order.Item
	for _, id := range s.tracker.RemovedItems(s.order) {
		if it, ok := s.order.Item(id); ok && it.IsRemoved() {
			removed = append(removed, it.Clone())
		}
	}

	modified := s.tracker.ModifiedFields(s.order)
	var edited []commands.ItemEdit
	for _, it := range s.order.Items() {
		fields, ok := modified[it.ID()]
		if !ok {
			continue
		}
		edit := commands.ItemEdit{Item: it.Clone()}
		for _, f := range fields {
			old, tracked := s.tracker.Baseline(it.ID(), f)
			if !tracked {
				break
			}
			edit.Changes = append(edit.Changes, commands.FieldChange{Field: f, Old: old, New: it.FieldValue(f)})
		}
		if len(edit.Changes) > 0 {
			edited = append(edited, edit)
		}
	}

	var header *order.Order
	if s.tracker.IsOrderFieldModified(s.order, services.OrderFieldPriority) ||
		s.tracker.IsOrderFieldModified(s.order, services.OrderFieldDeadline) {
		header = s.order.Clone()
	}

	return commands.NewSaveItemsCommand(s.orderID, s.actor, added, removed, edited, header)
}

// acceptSaved makes the written copies the clean state of their rows.
func (s *Session) acceptSaved(cmd commands.SaveItemsCommand, result commands.SaveItemsResult) {
	written := make(map[kernel.UUID]*order.Item)
	for _, it := range cmd.Added() {
		written[it.ID()] = it
	}
	for _, it := range cmd.Removed() {
		written[it.ID()] = it
	}
	for _, edit := range cmd.Edited() {
		written[edit.Item.ID()] = edit.Item
	}

	saved := make([]*order.Item, 0, len(result.Saved))
	for _, id := range result.Saved {
		if it, ok := written[id]; ok {
			saved = append(saved, it)
		}
	}
	s.tracker.Refresh(saved)

	if header := cmd.Header(); header != nil && result.HeaderSaved {
		s.tracker.AcceptOrderField(header, services.OrderFieldPriority)
		s.tracker.AcceptOrderField(header, services.OrderFieldDeadline)
	}
}

func (s *Session) prependItemHistory(records []*history.Record) {
	if len(records) == 0 {
		return
	}
	newest := slices.Clone(records)
	slices.Reverse(newest)
	s.itemHistory = append(newest, s.itemHistory...)
}

func (s *Session) adoptHeader(fresh *order.Order) {
	if err := s.order.ChangeStatus(fresh.Status(), nil); err != nil {
		s.logger.Warn("stored status not adopted", zap.String("status", string(fresh.Status())), zap.Error(err))
	}
	if at := fresh.ProductionReleasedAt(); at != nil {
		s.order.MarkProductionReleased(*at)
	}
	if !s.tracker.IsOrderFieldModified(s.order, services.OrderFieldDeadline) {
		s.order.SetDeadline(fresh.Deadline())
		s.tracker.AcceptOrderField(s.order, services.OrderFieldDeadline)
	}
	if !s.tracker.IsOrderFieldModified(s.order, services.OrderFieldPriority) {
		if err := s.order.SetPriority(fresh.Priority()); err == nil {
			s.tracker.AcceptOrderField(s.order, services.OrderFieldPriority)
		}
	}
}

func (s *Session) mergeItems(fresh []*order.Item) {
	merged := make([]*order.Item, 0, len(fresh))
	clean := make([]*order.Item, 0, len(fresh))
	seen := make(map[kernel.UUID]struct{}, len(fresh))

	for _, stored := range fresh {
		seen[stored.ID()] = struct{}{}
		if local, ok := s.order.Item(stored.ID()); ok && s.tracker.IsItemModified(s.order, stored.ID()) {
			local.AdoptLifecycle(stored)
			merged = append(merged, local)
			continue
		}
		merged = append(merged, stored)
		clean = append(clean, stored)
	}

	for _, local := range s.order.AllItems() {
		if _, ok := seen[local.ID()]; ok {
			continue
		}
		if s.tracker.IsItemModified(s.order, local.ID()) {
			merged = append(merged, local)
			continue
		}
		// Gone from storage: drop it from the clean state too.
		gone := local.Clone()
		gone.Remove(s.deps.Clock())
		clean = append(clean, gone)
	}

	s.order.ReplaceItems(merged)
	s.tracker.Refresh(clean)
}

func (s *Session) fetchStatusSlices(
	ctx context.Context,
) ([]*history.Record, []*order.Comment, []*order.CompletionNote, error) {
	records, err := s.deps.Store.HistoryRepository().List(ctx, s.orderID, history.StreamStatus, ports.SortDescending)
	if err != nil {
		return nil, nil, nil, err
	}
	comments, err := s.deps.Store.NoteRepository().ListComments(ctx, s.orderID)
	if err != nil {
		return nil, nil, nil, err
	}
	notes, err := s.deps.Store.NoteRepository().ListCompletionNotes(ctx, s.orderID)
	if err != nil {
		return nil, nil, nil, err
	}
	return records, comments, notes, nil
}

func (s *Session) arm(tables ...ports.Table) []*EchoFlag {
	flags := make([]*EchoFlag, 0, len(tables))
	for _, t := range tables {
		if f := s.Flag(t); f != nil {
			f.Arm()
			flags = append(flags, f)
		}
	}
	return flags
}

func disarm(flags ...*EchoFlag) {
	for _, f := range flags {
		if f != nil {
			f.Disarm()
		}
	}
}
