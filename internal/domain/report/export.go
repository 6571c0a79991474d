package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet = "Informe"
	totalLabel  = "TOTAL"
)

var exportHeader = []string{"Conductor", "Fecha", "Cliente", "Origen", "Destino", "Precio"}

// WriteCSV writes the view rows as a semicolon separated file followed by a
// totals line.
func WriteCSV(w io.Writer, view View) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	rows := make([]Row, 0, len(view.Rows)+1)
	rows = append(rows, view.Rows...)
	rows = append(rows, Row{Driver: totalLabel, Amount: view.Total.StringFixed(2)})

	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("failed to write csv report: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the view as a printable workbook: a title line with the
// active filters, the rows and a bold totals line.
func WriteXLSX(w io.Writer, view View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	amountFmt := "#,##0.00"
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &amountFmt,
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	sw := &sheetWriter{f: f}
	sw.value("A1", title(view))
	sw.style("A1", "A1", bold)
	sw.value("A2", "Viajes: "+strconv.Itoa(view.Count))

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	sw.row("A3", header)
	sw.style("A3", "F3", bold)

	row := 4
	for _, r := range view.Rows {
		amount, _ := strconv.ParseFloat(r.Amount, 64)
		sw.row(cell(1, row), []any{r.Driver, r.Date, r.Client, r.Origin, r.Destination, amount})
		sw.style(cell(6, row), cell(6, row), amountStyle)
		row++
	}

	sw.value(cell(1, row), totalLabel)
	sw.value(cell(6, row), view.Total.InexactFloat64())
	sw.style(cell(1, row), cell(1, row), bold)
	sw.style(cell(6, row), cell(6, row), totalStyle)
	if sw.err == nil {
		sw.err = f.SetColWidth(exportSheet, "A", "F", 20)
	}
	if sw.err != nil {
		return fmt.Errorf("failed to fill xlsx report: %w", sw.err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx report: %w", err)
	}
	return nil
}

// sheetWriter writes to the export sheet and keeps the first error.
// Calls after a failure are no-ops.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (s *sheetWriter) value(ref string, v any) {
	if s.err == nil {
		s.err = s.f.SetCellValue(exportSheet, ref, v)
	}
}

func (s *sheetWriter) row(ref string, values []any) {
	if s.err == nil {
		s.err = s.f.SetSheetRow(exportSheet, ref, &values)
	}
}

func (s *sheetWriter) style(from, to string, style int) {
	if s.err == nil {
		s.err = s.f.SetCellStyle(exportSheet, from, to, style)
	}
}

// title describes the report and its filters, e.g.
// "viajes.xlsx · Conductor: Ana · enero 2024"
func title(view View) string {
	parts := []string{"Informe de viajes"}
	if view.FileName != "" {
		parts[0] = view.FileName
	}
	if view.Selection.Driver != "" {
		parts = append(parts, "Conductor: "+view.Selection.Driver)
	}
	if view.Selection.Month != "" {
		parts = append(parts, view.Selection.Month)
	}
	if view.Selection.Week != "" {
		parts = append(parts, view.Selection.Week)
	}
	return strings.Join(parts, " · ")
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
