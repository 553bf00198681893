package models

// ColumnType is the inferred type of a sheet column.
type ColumnType string

const (
	ColumnText    ColumnType = "text"
	ColumnNumber  ColumnType = "number"
	ColumnBoolean ColumnType = "boolean"
	ColumnDate    ColumnType = "date"
)

// ColumnSchema describes one column of a sheet. It is derived once per
// sheet and not modified afterwards.
type ColumnSchema struct {
	// Index is the column index (1-based).
	Index int `json:"index"`
	// Name is the trimmed header text.
	Name string `json:"name"`
	// Type is the narrowest type compatible with every sampled value.
	Type ColumnType `json:"type"`
	// Nullable is true when a sampled cell was empty.
	Nullable bool `json:"nullable"`
	// Integral is true for number columns whose sampled values are all whole.
	Integral bool `json:"integral,omitempty"`
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []ColumnSchema) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
