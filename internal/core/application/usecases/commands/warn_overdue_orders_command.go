package commands

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrWarnOverdueOrdersCommandIsNotConstructed = errors.New(
		"WarnOverdueOrdersCommand must be created via NewWarnOverdueOrdersCommand constructor",
	)
)

// WarnOverdueOrdersCommand asks for a warning on every open order whose deadline is
// before Now.
type WarnOverdueOrdersCommand struct { //nolint:recvcheck //using for validation
	now time.Time

	guard guard.ConstructorGuard
}

func NewWarnOverdueOrdersCommand(now time.Time) (WarnOverdueOrdersCommand, error) {
	if now.IsZero() {
		return WarnOverdueOrdersCommand{}, errs.NewValueIsRequiredError("now")
	}
	return WarnOverdueOrdersCommand{now: now, guard: guard.NewConstructorGuard()}, nil
}

func (c WarnOverdueOrdersCommand) Validate() error {
	return c.guard.Validate(ErrWarnOverdueOrdersCommandIsNotConstructed)
}

func (c WarnOverdueOrdersCommand) Now() time.Time {
	return c.now
}
