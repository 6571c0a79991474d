package parser

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"

	"github.com/FACorreiaa/transport-report/internal/domain/record"
)

// xlsCharset is used for BIFF8 strings stored in the legacy code page
const xlsCharset = "utf-8"

// readXLSRows reads the first sheet of a legacy BIFF workbook. The xls reader
// hands out formatted strings, so numeric-looking cells are re-typed as numbers.
func readXLSRows(data []byte) (name string, rows [][]record.Cell, err error) {
	// the BIFF reader panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read xls workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), xlsCharset)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open xls file: %w", err)
	}
	if wb.NumSheets() == 0 {
		return "", nil, ErrNoSheets
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return "", nil, ErrNoSheets
	}

	rows = make([][]record.Cell, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		xlsRow := sheet.Row(i)
		if xlsRow == nil {
			rows = append(rows, nil)
			continue
		}
		last := xlsRow.LastCol()
		row := make([]record.Cell, last)
		for j := xlsRow.FirstCol(); j < last; j++ {
			row[j] = record.Classify(xlsRow.Col(j))
		}
		rows = append(rows, row)
	}

	return sheet.Name, rows, nil
}
