package models

// ItemReference points at a field of another (or the same) dataset.
type ItemReference struct {
	// DatasetID identifies the referenced dataset, e.g. {"sheet": "Orders"}.
	DatasetID map[string]string `json:"datasetId"`
	// FieldName is the referenced field.
	FieldName string `json:"fieldName"`
}

// Field is a catalog column description.
type Field struct {
	// Name is the header text.
	Name string `json:"name"`
	// Type is the catalog type (BIGINT, DOUBLE, TIMESTAMP, BOOLEAN, STRING).
	Type string `json:"type"`
	// Nullable is copied from the inferred column schema.
	Nullable bool `json:"nullable"`
	// Properties holds the column profile.
	Properties map[string]any `json:"properties"`
	// SourceFields lists the fields referenced by formulas in this column.
	SourceFields []ItemReference `json:"sourceFields"`
}

// Dataset is the catalog entry for one sheet.
type Dataset struct {
	// ID is a stable identifier derived from the file path and sheet name.
	ID string `json:"id"`
	// Name is "<file stem> - <sheet>".
	Name string `json:"name"`
	// Description summarizes the sheet size.
	Description string `json:"description"`
	// Properties holds file level metadata.
	Properties map[string]any `json:"properties"`
	// Fields describes the sheet columns in order.
	Fields []Field `json:"fields"`
}
