package catalog

import (
	"sort"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/kavithaselva95/excel-connector/pkg/connector/parser"
	"github.com/kavithaselva95/excel-connector/pkg/connector/schema"
)

// headerResolver maps column indexes of any sheet in a workbook to header
// names, loading other sheets on demand.
type headerResolver struct {
	wb      *parser.Workbook
	headers map[string][]string
}

func newHeaderResolver(wb *parser.Workbook) *headerResolver {
	return &headerResolver{wb: wb, headers: make(map[string][]string)}
}

func (h *headerResolver) add(sheet string, names []string) {
	h.headers[sheet] = names
}

// field returns the header of column col (1-based) in sheet.
func (h *headerResolver) field(sheet string, col int) (string, bool) {
	names, ok := h.headers[sheet]
	if !ok {
		names = nil
		if s, err := h.wb.SheetByName(sheet); err == nil {
			names, _ = schema.Header(s)
		}
		h.headers[sheet] = names
	}
	if col < 1 || col > len(names) {
		return "", false
	}
	return names[col-1], true
}

// lineage returns the fields referenced by formulas in column col of the
// sheet, deduplicated and sorted by sheet then field. A column is not
// reported as its own source.
func lineage(sheet *models.Sheet, col int, resolve *headerResolver) []models.ItemReference {
	if len(sheet.Rows) < 2 {
		return []models.ItemReference{}
	}
	self, _ := resolve.field(sheet.Name, col)

	type key struct{ sheet, field string }
	seen := make(map[key]bool)
	for _, row := range sheet.Rows[1:] {
		formula := row.Cell(col).Formula
		if formula == "" {
			continue
		}
		for _, ref := range parser.FormulaRefs(formula) {
			target := ref.Sheet
			if target == "" {
				target = sheet.Name
			}
			name, ok := resolve.field(target, ref.Col)
			if !ok || (target == sheet.Name && name == self) {
				continue
			}
			seen[key{target, name}] = true
		}
	}

	refs := make([]models.ItemReference, 0, len(seen))
	for k := range seen {
		refs = append(refs, models.ItemReference{
			DatasetID: map[string]string{"sheet": k.sheet},
			FieldName: k.field,
		})
	}
	sort.Slice(refs, func(i, j int) bool {
		si, sj := refs[i].DatasetID["sheet"], refs[j].DatasetID["sheet"]
		if si != sj {
			return si < sj
		}
		return refs[i].FieldName < refs[j].FieldName
	})
	return refs
}
