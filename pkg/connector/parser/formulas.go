package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// refPattern matches A1 style references with an optional sheet prefix and
// an optional range end: B2, $C$3, Sheet2!A1, 'My Sheet'!A1:C9.
var refPattern = regexp.MustCompile(`(?:('(?:[^']|'')+'|[A-Za-z0-9_.]+)!)?\$?([A-Za-z]{1,3})\$?(\d+)(?::\$?([A-Za-z]{1,3})\$?(\d+))?`)

// stringLiteral matches double quoted formula strings, with "" escapes.
var stringLiteral = regexp.MustCompile(`"(?:[^"]|"")*"`)

// ColumnRef is a column referenced by a formula.
type ColumnRef struct {
	// Sheet is the referenced sheet, empty for the formula's own sheet.
	Sheet string
	// Col is the referenced column (1-based).
	Col int
}

// FormulaRefs returns the distinct columns referenced by formula, sorted by
// sheet then column. Ranges contribute every column they span. Function
// names such as LOG10 and text inside string literals are not references.
func FormulaRefs(formula string) []ColumnRef {
	formula = stringLiteral.ReplaceAllStringFunc(formula, func(s string) string {
		return strings.Repeat(" ", len(s))
	})

	seen := make(map[ColumnRef]bool)
	for _, m := range refPattern.FindAllStringSubmatchIndex(formula, -1) {
		start, end := m[0], m[1]
		if start > 0 && isIdentChar(formula[start-1]) {
			continue
		}
		if end < len(formula) && (formula[end] == '(' || isIdentChar(formula[end])) {
			continue
		}

		sheet := ""
		if m[2] >= 0 {
			sheet = unquoteSheet(formula[m[2]:m[3]])
		}
		first, err := excelize.ColumnNameToNumber(formula[m[4]:m[5]])
		if err != nil {
			continue
		}
		last := first
		if m[8] >= 0 {
			if last, err = excelize.ColumnNameToNumber(formula[m[8]:m[9]]); err != nil {
				continue
			}
		}
		if last < first {
			first, last = last, first
		}
		for col := first; col <= last; col++ {
			seen[ColumnRef{Sheet: sheet, Col: col}] = true
		}
	}

	refs := make([]ColumnRef, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Sheet != refs[j].Sheet {
			return refs[i].Sheet < refs[j].Sheet
		}
		return refs[i].Col < refs[j].Col
	})
	return refs
}

func isIdentChar(b byte) bool {
	return b == '_' || b == '.' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// unquoteSheet strips the quotes of a 'quoted sheet' name.
func unquoteSheet(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}
