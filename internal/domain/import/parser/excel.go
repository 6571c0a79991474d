package parser

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/transport-report/internal/domain/record"
)

// readExcelRows reads the first sheet of an XLSX workbook. Raw cell values
// are used so date cells come back as day serials, not formatted text.
func readExcelRows(data []byte) (string, [][]record.Cell, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, ErrNoSheets
	}
	sheetName := sheets[0]

	rawRows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return sheetName, nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}

	rows := make([][]record.Cell, len(rawRows))
	for i, rawRow := range rawRows {
		row := make([]record.Cell, len(rawRow))
		for j, raw := range rawRow {
			if raw == "" {
				continue
			}
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				row[j] = record.Classify(raw)
				continue
			}
			cellType, err := f.GetCellType(sheetName, cellRef)
			if err != nil {
				row[j] = record.Classify(raw)
				continue
			}
			row[j] = excelCell(cellType, raw)
		}
		rows[i] = row
	}

	return sheetName, rows, nil
}

// excelCell types a raw value using the cell's declared type
func excelCell(cellType excelize.CellType, raw string) record.Cell {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return record.Text(raw)
	case excelize.CellTypeBool:
		if raw == "1" {
			return record.Text("TRUE")
		}
		return record.Text("FALSE")
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return record.Date(t)
			}
		}
		return record.Text(raw)
	default:
		// numbers, formulas and untyped cells
		return record.Classify(raw)
	}
}
