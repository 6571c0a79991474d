// Package parser extracts canonical records from uploaded spreadsheets.
// It renders the first sheet as raw rows, finds the header row with the
// sniffer and keys every following row by the trimmed header labels.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/FACorreiaa/transport-report/internal/domain/import/sniffer"
	"github.com/FACorreiaa/transport-report/internal/domain/record"
)

// Format identifies the container format of an uploaded file
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

var (
	ErrEmptyFile          = errors.New("file is empty")
	ErrNoSheets           = errors.New("workbook has no sheets")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	zipMagic              = []byte("PK\x03\x04")
	compoundDocumentMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Config configures header detection
type Config struct {
	Keywords    []string // Header keywords (default: sniffer.DefaultHeaderKeywords)
	MaxScanRows int      // Rows scanned for the header (default: sniffer.DefaultMaxScanRows)
}

// DefaultConfig returns a parser config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Keywords:    sniffer.DefaultHeaderKeywords,
		MaxScanRows: sniffer.DefaultMaxScanRows,
	}
}

// Diagnostics describes how a sheet was read. It is informational only.
type Diagnostics struct {
	Format            Format            `json:"format"`
	SheetName         string            `json:"sheet_name,omitempty"`
	HeaderRowIndex    int               `json:"header_row_index"`
	Headers           []string          `json:"headers"`
	Fingerprint       string            `json:"fingerprint"`
	TotalRows         int               `json:"total_rows"`
	SkippedRows       int               `json:"skipped_rows"`
	FirstRecordKeys   []string          `json:"first_record_keys"`
	FirstRecordValues map[string]string `json:"first_record_values,omitempty"`
}

// Result contains the records extracted from a sheet
type Result struct {
	Records     []*record.Record
	Diagnostics Diagnostics
}

// Extractor turns spreadsheet bytes into canonical records
type Extractor struct {
	config  Config
	matcher *sniffer.KeywordMatcher
}

// NewExtractor creates a new extractor
func NewExtractor(config Config) *Extractor {
	if len(config.Keywords) == 0 {
		config.Keywords = sniffer.DefaultHeaderKeywords
	}
	if config.MaxScanRows <= 0 {
		config.MaxScanRows = sniffer.DefaultMaxScanRows
	}
	return &Extractor{
		config:  config,
		matcher: sniffer.NewKeywordMatcher(config.Keywords),
	}
}

// DetectFormat decides the format from the file name, falling back to the
// leading magic bytes.
func DetectFormat(fileName string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	case ".csv", ".tsv", ".txt":
		return FormatCSV
	}
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, compoundDocumentMagic):
		return FormatXLS
	default:
		return FormatCSV
	}
}

// ReadRows renders the first sheet as raw rows with no header assumption
func ReadRows(format Format, data []byte) (string, [][]record.Cell, error) {
	switch format {
	case FormatXLSX:
		return readExcelRows(data)
	case FormatXLS:
		return readXLSRows(data)
	case FormatCSV:
		rows, err := readCSVRows(data)
		return "", rows, err
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Extract reads the first sheet of the file and returns its records
func (e *Extractor) Extract(fileName string, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	format := DetectFormat(fileName, data)
	sheet, rows, err := ReadRows(format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", format, err)
	}

	result := e.ExtractRows(rows)
	result.Diagnostics.Format = format
	result.Diagnostics.SheetName = sheet
	return result, nil
}

// ExtractRows detects the header row and builds records from the rows below it
func (e *Extractor) ExtractRows(rows [][]record.Cell) *Result {
	headerIdx := e.matcher.DetectHeaderRow(rows, e.config.MaxScanRows)

	result := &Result{
		Records: make([]*record.Record, 0, len(rows)),
		Diagnostics: Diagnostics{
			HeaderRowIndex:  headerIdx,
			FirstRecordKeys: []string{},
		},
	}
	if headerIdx >= len(rows) {
		result.Diagnostics.Headers = []string{}
		result.Diagnostics.Fingerprint = sniffer.Fingerprint(nil)
		return result
	}

	headers := headerNames(rows[headerIdx], maxWidth(rows[headerIdx:]))
	result.Diagnostics.Headers = headers
	result.Diagnostics.Fingerprint = sniffer.Fingerprint(headers)

	for _, row := range rows[headerIdx+1:] {
		result.Diagnostics.TotalRows++

		rec := buildRecord(headers, row)
		if rec == nil {
			result.Diagnostics.SkippedRows++
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if len(result.Records) > 0 {
		first := result.Records[0]
		result.Diagnostics.FirstRecordKeys = first.Keys()
		result.Diagnostics.FirstRecordValues = first.Snapshot()
	}
	return result
}

// headerNames trims the header labels and pads them to width. Blank labels
// become __EMPTY, __EMPTY_1, ... and repeated labels get a _1, _2, ... suffix.
func headerNames(row []record.Cell, width int) []string {
	names := make([]string, max(width, len(row)))
	used := make(map[string]bool, len(names))
	for i := range names {
		var base string
		if i < len(row) {
			base = strings.TrimSpace(row[i].String())
		}
		if base == "" {
			base = "__EMPTY"
		}
		name := base
		for n := 1; used[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func maxWidth(rows [][]record.Cell) int {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	return width
}

// buildRecord keys the non-empty cells of a row by header. Returns nil when
// the row is blank.
func buildRecord(headers []string, row []record.Cell) *record.Record {
	rec := record.New()
	for i, c := range row {
		if c.IsEmpty() || i >= len(headers) {
			continue
		}
		rec.Set(headers[i], c)
	}
	if rec.Len() == 0 {
		return nil
	}
	return rec
}
