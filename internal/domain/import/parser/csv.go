package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/FACorreiaa/transport-report/internal/domain/import/sniffer"
	"github.com/FACorreiaa/transport-report/internal/domain/record"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSVRows reads a delimited text file. Files that are not valid UTF-8
// are decoded as Windows-1252, the default export encoding of Spanish Excel.
func readCSVRows(data []byte) ([][]record.Cell, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode csv: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffer.DetectDelimiter(data, sniffer.DefaultMaxScanRows)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	// encoding/csv skips blank lines; they are restored as empty rows so
	// row indexes match the line numbers of the file, as for workbooks.
	var rows [][]record.Cell
	nextLine := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(rows)+1, err)
		}
		line, _ := reader.FieldPos(0)
		for ; nextLine < line; nextLine++ {
			rows = append(rows, []record.Cell{})
		}
		nextLine = 1 + bytes.Count(data[:reader.InputOffset()], []byte{'\n'})

		row := make([]record.Cell, len(fields))
		for i, f := range fields {
			row[i] = record.Classify(f)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
