package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Priority ranks orders inside a phase column.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Validate() error {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a declared priority", string(p)))
}

// Rank orders priorities for sorting, high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

func (p Priority) String() string {
	return string(p)
}

// ParsePriority converts external input into a declared Priority.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}
