package http

import (
	"time"

	"fulfillment/internal/core/application/editing"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/history"
	"fulfillment/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// Requests.

type NewItemRequest struct {
	Code        string          `json:"code" validate:"required,max=64"`
	Description string          `json:"description" validate:"max=512"`
	Requested   decimal.Decimal `json:"requested" validate:"gte=0"`
}

type CreateOrderRequest struct {
	Number   string           `json:"number" validate:"required,max=40"`
	Type     string           `json:"type" validate:"required"`
	Priority string           `json:"priority" validate:"required"`
	Items    []NewItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransitionRequest names either a target status or a target phase.
type TransitionRequest struct {
	Status        string `json:"status" validate:"required_without=Phase,excluded_with=Phase"`
	Phase         string `json:"phase" validate:"required_without=Status"`
	Justification string `json:"justification"`
	Comment       string `json:"comment"`
	Responsible   string `json:"responsible"`
}

type DropRequest struct {
	Phase         string `json:"phase" validate:"required"`
	Justification string `json:"justification"`
	Comment       string `json:"comment"`
	Responsible   string `json:"responsible"`
}

type ItemStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OpenSessionRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
	Tab     string `json:"tab"`
}

type TabRequest struct {
	Tab string `json:"tab" validate:"required"`
}

type FieldRequest struct {
	Value string `json:"value"`
}

type ItemEditRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// HeaderRequest edits the tracked order fields. ClearDeadline removes the deadline.
type HeaderRequest struct {
	Priority      *string    `json:"priority"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"clear_deadline"`
}

// Responses.

type ItemResponse struct {
	ID          string               `json:"id"`
	Code        string               `json:"code"`
	Description string               `json:"description"`
	Requested   decimal.Decimal      `json:"requested"`
	Delivered   decimal.Decimal      `json:"delivered"`
	Status      string               `json:"status"`
	Phase       string               `json:"phase"`
	PhaseStamps map[string]time.Time `json:"phase_stamps,omitempty"`
}

type OrderResponse struct {
	ID                   string            `json:"id"`
	Number               string            `json:"number"`
	Type                 string            `json:"type"`
	Status               string            `json:"status"`
	Phase                string            `json:"phase"`
	Priority             string            `json:"priority"`
	Deadline             *time.Time        `json:"deadline,omitempty"`
	ProductionReleasedAt *time.Time        `json:"production_released_at,omitempty"`
	Fields               map[string]string `json:"fields"`
	Items                []ItemResponse    `json:"items"`
}

type HistoryEntryResponse struct {
	ID       string    `json:"id"`
	ItemID   *string   `json:"item_id,omitempty"`
	Field    string    `json:"field"`
	OldValue string    `json:"old_value"`
	NewValue string    `json:"new_value"`
	Actor    string    `json:"actor"`
	At       time.Time `json:"at"`
	Note     string    `json:"note,omitempty"`
}

type TransitionResponse struct {
	From     string     `json:"from"`
	To       string     `json:"to"`
	Changed  bool       `json:"changed"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Warning  string     `json:"warning,omitempty"`
}

type ItemStatusResponse struct {
	Changed            bool                `json:"changed"`
	ProductionReleased bool                `json:"production_released"`
	Item               *ItemResponse       `json:"item,omitempty"`
	Cascade            *TransitionResponse `json:"cascade,omitempty"`
	Warning            string              `json:"warning,omitempty"`
}

type SaveResponse struct {
	Saved   []string `json:"saved"`
	Warning string   `json:"warning,omitempty"`
}

type BoardCardResponse struct {
	ID           string     `json:"id"`
	Number       string     `json:"number"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	PendingItems int        `json:"pending_items"`
	Overdue      bool       `json:"overdue"`
}

type BoardColumnResponse struct {
	Phase  string              `json:"phase"`
	Orders []BoardCardResponse `json:"orders"`
}

type SessionResponse struct {
	ID        string                 `json:"id"`
	OrderID   string                 `json:"order_id"`
	Actor     string                 `json:"actor"`
	Tab       string                 `json:"tab"`
	Dirty     bool                   `json:"dirty"`
	Modified  map[string][]string    `json:"modified,omitempty"`
	Order     OrderResponse          `json:"order"`
	StatusLog []HistoryEntryResponse `json:"status_history"`
	ItemLog   []HistoryEntryResponse `json:"item_history"`
}

func toItemResponse(it *order.Item) ItemResponse {
	resp := ItemResponse{
		ID:          it.ID().String(),
		Code:        it.Code(),
		Description: it.Description(),
		Requested:   it.Requested(),
		Delivered:   it.Delivered(),
		Status:      string(it.Status()),
		Phase:       string(it.CurrentPhase()),
	}
	if stamps := it.PhaseStamps(); len(stamps) > 0 {
		resp.PhaseStamps = make(map[string]time.Time, len(stamps))
		for p, at := range stamps {
			resp.PhaseStamps[string(p)] = at
		}
	}
	return resp
}

func toOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:                   o.ID().String(),
		Number:               o.Number(),
		Type:                 string(o.Type()),
		Status:               string(o.Status()),
		Phase:                string(o.Phase()),
		Priority:             string(o.Priority()),
		Deadline:             o.Deadline(),
		ProductionReleasedAt: o.ProductionReleasedAt(),
		Fields:               make(map[string]string),
	}
	for f, v := range o.Fields() {
		resp.Fields[string(f)] = v
	}
	items := o.Items()
	resp.Items = make([]ItemResponse, 0, len(items))
	for _, it := range items {
		resp.Items = append(resp.Items, toItemResponse(it))
	}
	return resp
}

func toRecordResponse(r *history.Record) HistoryEntryResponse {
	resp := HistoryEntryResponse{
		ID:       r.ID().String(),
		Field:    r.Field(),
		OldValue: r.OldValue(),
		NewValue: r.NewValue(),
		Actor:    r.Actor(),
		At:       r.At(),
		Note:     r.Note(),
	}
	if id := r.ItemID(); id != nil {
		s := id.String()
		resp.ItemID = &s
	}
	return resp
}

func toRecordResponses(records []*history.Record) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordResponse(r))
	}
	return out
}

func toHistoryResponses(entries []queries.GetOrderHistoryQueryResponse) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := HistoryEntryResponse{
			ID:       e.ID.String(),
			Field:    e.Field,
			OldValue: e.OldValue,
			NewValue: e.NewValue,
			Actor:    e.Actor,
			At:       e.At,
			Note:     e.Note,
		}
		if e.ItemID != nil {
			s := e.ItemID.String()
			resp.ItemID = &s
		}
		out = append(out, resp)
	}
	return out
}

func toTransitionResponse(r commands.TransitionResult) TransitionResponse {
	resp := TransitionResponse{
		From:     string(r.From),
		To:       string(r.To),
		Changed:  r.Changed,
		Deadline: r.Deadline,
	}
	if r.HistoryErr != nil {
		resp.Warning = r.HistoryErr.Error()
	}
	return resp
}

func toItemStatusResponse(r commands.ItemStatusResult) ItemStatusResponse {
	resp := ItemStatusResponse{Changed: r.Changed, ProductionReleased: r.ProductionReleased}
	if r.Item != nil {
		item := toItemResponse(r.Item)
		resp.Item = &item
	}
	if r.Cascade != nil {
		cascade := toTransitionResponse(*r.Cascade)
		resp.Cascade = &cascade
	}
	if r.PartialErr != nil {
		resp.Warning = r.PartialErr.Error()
	}
	return resp
}

func toSaveResponse(r commands.SaveItemsResult) SaveResponse {
	resp := SaveResponse{Saved: make([]string, 0, len(r.Saved))}
	for _, id := range r.Saved {
		resp.Saved = append(resp.Saved, id.String())
	}
	if r.HistoryErr != nil {
		resp.Warning = r.HistoryErr.Error()
	}
	return resp
}

func toBoardResponse(board queries.GetPhaseBoardQueryResponse, now time.Time) []BoardColumnResponse {
	out := make([]BoardColumnResponse, 0, len(board.Columns))
	for _, col := range board.Columns {
		cards := make([]BoardCardResponse, 0, len(col.Orders))
		for _, card := range col.Orders {
			cards = append(cards, BoardCardResponse{
				ID:           card.ID.String(),
				Number:       card.Number,
				Type:         string(card.Type),
				Status:       string(card.Status),
				Priority:     string(card.Priority),
				Deadline:     card.Deadline,
				PendingItems: card.PendingItems,
				Overdue:      card.Overdue(now),
			})
		}
		out = append(out, BoardColumnResponse{Phase: string(col.Phase), Orders: cards})
	}
	return out
}

func toSessionResponse(s *editing.Session) SessionResponse {
	resp := SessionResponse{
		ID:        s.ID().String(),
		OrderID:   s.OrderID().String(),
		Actor:     s.Actor(),
		Tab:       string(s.Tab()),
		Dirty:     s.IsDirty(),
		Order:     toOrderResponse(s.Order()),
		StatusLog: toRecordResponses(s.StatusHistory()),
		ItemLog:   toRecordResponses(s.ItemHistory()),
	}
	if modified := s.ModifiedFields(); len(modified) > 0 {
		resp.Modified = make(map[string][]string, len(modified))
		for id, fields := range modified {
			names := make([]string, 0, len(fields))
			for _, f := range fields {
				names = append(names, string(f))
			}
			resp.Modified[id.String()] = names
		}
	}
	return resp
}
