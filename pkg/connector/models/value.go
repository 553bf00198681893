package models

import (
	"encoding/json"
	"time"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	// ValueNull is an absent or uncoercible value.
	ValueNull ValueKind = iota
	// ValueText is a string value.
	ValueText
	// ValueNumber is a finite float64 value.
	ValueNumber
	// ValueBoolean is a boolean value.
	ValueBoolean
	// ValueDate is a date or date-time value.
	ValueDate
)

// Value is a normalized record field. Exactly one payload field is
// meaningful, selected by Kind.
type Value struct {
	// Kind selects the payload.
	Kind ValueKind
	// Text is the payload of a ValueText value.
	Text string
	// Number is the payload of a ValueNumber value.
	Number float64
	// Bool is the payload of a ValueBoolean value.
	Bool bool
	// Time is the payload of a ValueDate value.
	Time time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// Text returns a text value.
func Text(s string) Value { return Value{Kind: ValueText, Text: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{Kind: ValueNumber, Number: f} }

// Boolean returns a boolean value.
func Boolean(b bool) Value { return Value{Kind: ValueBoolean, Bool: b} }

// Date returns a date value.
func Date(t time.Time) Value { return Value{Kind: ValueDate, Time: t} }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.Kind == ValueNull }

// Interface returns v as a plain Go value: nil, string, float64 or bool.
// Dates are returned in their canonical ISO form.
func (v Value) Interface() any {
	switch v.Kind {
	case ValueText:
		return v.Text
	case ValueNumber:
		return v.Number
	case ValueBoolean:
		return v.Bool
	case ValueDate:
		return FormatTime(v.Time)
	}
	return nil
}

// MarshalJSON encodes v as a JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}
