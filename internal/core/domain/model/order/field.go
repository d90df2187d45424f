package order

import (
	"fmt"
	"unicode/utf8"

	"fulfillment/internal/pkg/errs"
)

// Field names a free-text order column that is edited with autosave.
type Field string

const (
	FieldNotes               Field = "notes"
	FieldInternalNotes       Field = "internal_notes"
	FieldInvoiceNumber       Field = "invoice_number"
	FieldPurchaseOrderNumber Field = "purchase_order_number"
	FieldTrackingCode        Field = "tracking_code"
)

var defaultFieldMaxLength = map[Field]int{
	FieldNotes:               2000,
	FieldInternalNotes:       2000,
	FieldInvoiceNumber:       40,
	FieldPurchaseOrderNumber: 40,
	FieldTrackingCode:        60,
}

// Fields returns every watched field.
func Fields() []Field {
	return []Field{FieldNotes, FieldInternalNotes, FieldInvoiceNumber, FieldPurchaseOrderNumber, FieldTrackingCode}
}

func (f Field) Validate() error {
	if _, ok := defaultFieldMaxLength[f]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("field", fmt.Errorf("%q is not a watched order field", string(f)))
	}
	return nil
}

// DefaultMaxLength is the length limit in runes when configuration does not override it.
func (f Field) DefaultMaxLength() int {
	return defaultFieldMaxLength[f]
}

func (f Field) String() string {
	return string(f)
}

// ParseField converts external input into a watched Field.
func ParseField(raw string) (Field, error) {
	f := Field(raw)
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// FieldLimits holds the maximum length, in runes, of each watched field.
type FieldLimits map[Field]int

// DefaultFieldLimits returns a fresh copy of the built-in limits.
func DefaultFieldLimits() FieldLimits {
	out := make(FieldLimits, len(defaultFieldMaxLength))
	for f, n := range defaultFieldMaxLength {
		out[f] = n
	}
	return out
}

// Check validates that f is watched and that value fits its limit.
func (l FieldLimits) Check(f Field, value string) error {
	if err := f.Validate(); err != nil {
		return err
	}
	limit, ok := l[f]
	if !ok {
		limit = f.DefaultMaxLength()
	}
	if n := utf8.RuneCountInString(value); n > limit {
		return errs.NewValueIsOutOfRangeError(string(f), n, 0, limit)
	}
	return nil
}
