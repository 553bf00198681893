package models

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Diagnostic describes a cell that could not be coerced to its column type.
type Diagnostic struct {
	// Sheet is the sheet name.
	Sheet string `json:"sheet"`
	// Row is the row index (1-based).
	Row int `json:"row"`
	// Column is the column index (1-based).
	Column int `json:"column"`
	// Field is the column name, empty for cells beyond the header.
	Field string `json:"field,omitempty"`
	// Raw is the cell as it appeared in the sheet.
	Raw string `json:"raw,omitempty"`
	// Reason explains the failure.
	Reason string `json:"reason"`
}

func (d Diagnostic) String() string {
	if d.Field == "" {
		return fmt.Sprintf("%s!R%dC%d: %s", d.Sheet, d.Row, d.Column, d.Reason)
	}
	return fmt.Sprintf("%s!R%dC%d (%s): %s", d.Sheet, d.Row, d.Column, d.Field, d.Reason)
}

// Record is one normalized data row. Fields keep column order.
type Record struct {
	// Sheet is the source sheet name.
	Sheet string
	// Row is the source row index (1-based).
	Row int
	// Fields maps column name to value in column order.
	Fields *orderedmap.OrderedMap[string, Value]
	// Partial is set when at least one field was nulled by a failed coercion.
	Partial bool
	// Diagnostics lists the coercion failures of the row.
	Diagnostics []Diagnostic
}

// NewRecord returns an empty record for the given source row.
func NewRecord(sheet string, row int) Record {
	return Record{
		Sheet:  sheet,
		Row:    row,
		Fields: orderedmap.New[string, Value](),
	}
}

// Get returns the named field.
func (r Record) Get(name string) (Value, bool) {
	if r.Fields == nil {
		return Value{}, false
	}
	return r.Fields.Get(name)
}

// Len returns the number of fields.
func (r Record) Len() int {
	if r.Fields == nil {
		return 0
	}
	return r.Fields.Len()
}

// MarshalJSON encodes only the fields, in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.Fields == nil {
		return []byte("{}"), nil
	}
	return r.Fields.MarshalJSON()
}
