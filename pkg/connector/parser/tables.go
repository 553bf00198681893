package parser

import (
	"fmt"

	"github.com/kavithaselva95/excel-connector/pkg/connector/models"
	"github.com/xuri/excelize/v2"
)

// TableDetectionParams holds parameters for table detection.
type TableDetectionParams struct {
	DensityMin       float64
	MinNonemptyCells int
}

// DefaultTableParams returns default table detection parameters.
func DefaultTableParams() TableDetectionParams {
	return TableDetectionParams{
		DensityMin:       0.04,
		MinNonemptyCells: 3,
	}
}

// DataBounds returns the used range of a loaded sheet in A1 notation
// (e.g. "A1:D10"). It returns false when the sheet has no values.
func DataBounds(sheet *models.Sheet) (string, bool) {
	minRow, maxRow, minCol, maxCol := findDataBounds(sheet.Rows)
	if minRow < 0 {
		return "", false
	}
	startCell, err := excelize.CoordinatesToCellName(minCol, minRow)
	if err != nil {
		return "", false
	}
	endCell, err := excelize.CoordinatesToCellName(maxCol, maxRow)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s:%s", startCell, endCell), true
}

// DetectTable reports the used range of the sheet when it is dense enough
// to be read as a table.
func DetectTable(sheet *models.Sheet, params TableDetectionParams) (string, bool) {
	minRow, maxRow, minCol, maxCol := findDataBounds(sheet.Rows)
	if minRow < 0 {
		return "", false
	}

	totalCells := (maxRow - minRow + 1) * (maxCol - minCol + 1)
	nonEmptyCells := countNonEmptyCells(sheet.Rows, minRow, maxRow, minCol, maxCol)
	if nonEmptyCells < params.MinNonemptyCells {
		return "", false
	}
	if float64(nonEmptyCells)/float64(totalCells) < params.DensityMin {
		return "", false
	}
	return DataBounds(sheet)
}

// findDataBounds finds the 1-based bounding box of non-empty cells.
func findDataBounds(rows []models.Row) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for _, row := range rows {
		for _, cell := range row.Cells {
			if cell.IsEmpty() {
				continue
			}
			if minRow < 0 || cell.R < minRow {
				minRow = cell.R
			}
			if maxRow < 0 || cell.R > maxRow {
				maxRow = cell.R
			}
			if minCol < 0 || cell.C < minCol {
				minCol = cell.C
			}
			if maxCol < 0 || cell.C > maxCol {
				maxCol = cell.C
			}
		}
	}

	return
}

// countNonEmptyCells counts non-empty cells within bounds.
func countNonEmptyCells(rows []models.Row, minRow, maxRow, minCol, maxCol int) int {
	count := 0
	for _, row := range rows {
		if row.R < minRow || row.R > maxRow {
			continue
		}
		for _, cell := range row.Cells {
			if cell.C >= minCol && cell.C <= maxCol && !cell.IsEmpty() {
				count++
			}
		}
	}
	return count
}
