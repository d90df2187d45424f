package order

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Comment is the structured explanation attached when an order is put into exception.
type Comment struct {
	id          kernel.UUID
	orderID     kernel.UUID
	body        string
	responsible string
	author      string
	createdAt   time.Time
}

// NewExceptionComment requires both a body and a responsible party.
func NewExceptionComment(orderID kernel.UUID, body, responsible, author string, at time.Time) (*Comment, error) {
	body = strings.TrimSpace(body)
	responsible = strings.TrimSpace(responsible)

	var errList []error
	if body == "" {
		errList = append(errList, errs.NewValueIsRequiredError("exception comment"))
	}
	if responsible == "" {
		errList = append(errList, errs.NewValueIsRequiredError("responsible party"))
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	return &Comment{
		id:          kernel.NewUUID(),
		orderID:     orderID,
		body:        body,
		responsible: responsible,
		author:      author,
		createdAt:   at,
	}, nil
}

// RestoreComment rebuilds a stored comment.
func RestoreComment(id, orderID kernel.UUID, body, responsible, author string, at time.Time) *Comment {
	return &Comment{id: id, orderID: orderID, body: body, responsible: responsible, author: author, createdAt: at}
}

func (c *Comment) ID() kernel.UUID      { return c.id }
func (c *Comment) OrderID() kernel.UUID { return c.orderID }
func (c *Comment) Body() string         { return c.body }
func (c *Comment) Responsible() string  { return c.responsible }
func (c *Comment) Author() string       { return c.author }
func (c *Comment) CreatedAt() time.Time { return c.createdAt }
