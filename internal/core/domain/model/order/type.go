package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Type is the commercial kind of an order. It drives the default delivery SLA.
type Type string

const (
	TypeStandard    Type = "standard"
	TypeExpress     Type = "express"
	TypeCustom      Type = "custom"
	TypeReplacement Type = "replacement"
)

var defaultSLADays = map[Type]int{
	TypeStandard:    15,
	TypeExpress:     5,
	TypeCustom:      30,
	TypeReplacement: 10,
}

func (t Type) Validate() error {
	if _, ok := defaultSLADays[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%q is not a declared order type", string(t)))
	}
	return nil
}

// DefaultSLADays is the number of days between entering order generation and the
// delivery deadline, unless configuration overrides it.
func (t Type) DefaultSLADays() int {
	return defaultSLADays[t]
}

func (t Type) String() string {
	return string(t)
}

// Types returns every declared order type.
func Types() []Type {
	return []Type{TypeStandard, TypeExpress, TypeCustom, TypeReplacement}
}

// ParseType converts external input into a declared Type.
func ParseType(raw string) (Type, error) {
	t := Type(raw)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}
