// Package fixtures generates realistic trip sheets for tests and benchmarks
// using gofakeit. Sheets mimic the exports carriers send: a few title rows
// above the header, Spanish labels and day-first dates.
package fixtures

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Header is the label row written by the sheet builders
var Header = []string{"Conductor", "F.Carga", "Cliente", "Origen", "Destino", "Precio"}

// Trip is one generated sheet row
type Trip struct {
	Driver      string
	Date        time.Time
	Client      string
	Origin      string
	Destination string
	Amount      decimal.Decimal
}

// TripGenerator generates trips from a seeded faker
type TripGenerator struct {
	faker   *gofakeit.Faker
	drivers []string
}

// NewTripGenerator creates a new generator with a random seed
func NewTripGenerator() *TripGenerator {
	return NewTripGeneratorWithSeed(0)
}

// NewTripGeneratorWithSeed creates a generator with a specific seed for reproducibility.
// A small pool of drivers is drawn up front so trips repeat drivers the way real sheets do.
func NewTripGeneratorWithSeed(seed int64) *TripGenerator {
	faker := gofakeit.New(seed)
	drivers := make([]string, 5)
	for i := range drivers {
		drivers[i] = faker.FirstName() + " " + faker.LastName()
	}
	return &TripGenerator{faker: faker, drivers: drivers}
}

// Drivers returns the driver pool
func (g *TripGenerator) Drivers() []string {
	out := make([]string, len(g.drivers))
	copy(out, g.drivers)
	return out
}

// Trip generates a single trip dated within [from, to)
func (g *TripGenerator) Trip(from, to time.Time) Trip {
	day := g.faker.DateRange(from, to).UTC()
	return Trip{
		Driver:      g.drivers[g.faker.Number(0, len(g.drivers)-1)],
		Date:        time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		Client:      g.faker.Company(),
		Origin:      g.faker.City(),
		Destination: g.faker.City(),
		Amount:      decimal.New(int64(g.faker.Number(5000, 250000)), -2),
	}
}

// Trips generates count trips dated within [from, to)
func (g *TripGenerator) Trips(count int, from, to time.Time) []Trip {
	trips := make([]Trip, count)
	for i := range trips {
		trips[i] = g.Trip(from, to)
	}
	return trips
}

// Total sums the trip amounts
func Total(trips []Trip) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trips {
		total = total.Add(t.Amount)
	}
	return total
}

// SerialDate converts a date to a spreadsheet day serial
func SerialDate(t time.Time) float64 {
	return float64(t.Unix())/86400 + 25569
}

// Workbook renders trips as an XLSX sheet with titleRows text rows above
// the header. Dates are written as day serials and amounts as numbers.
func Workbook(trips []Trip, titleRows ...string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	row := 1
	for _, title := range titleRows {
		if err := f.SetCellValue(sheet, cellName(1, row), title); err != nil {
			return nil, err
		}
		row++
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, cellName(1, row), &header); err != nil {
		return nil, err
	}
	row++

	for _, t := range trips {
		values := []any{
			t.Driver, SerialDate(t.Date), t.Client, t.Origin, t.Destination, t.Amount.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheet, cellName(1, row), &values); err != nil {
			return nil, err
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// CSV renders trips as a semicolon separated file with day-first dates
// and decimal commas.
func CSV(trips []Trip, titleRows ...string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	for _, title := range titleRows {
		w.Write([]string{title})
	}
	w.Write(Header)
	for _, t := range trips {
		w.Write([]string{
			t.Driver,
			t.Date.Format("02/01/2006"),
			t.Client,
			t.Origin,
			t.Destination,
			decimalComma(t.Amount),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func decimalComma(d decimal.Decimal) string {
	s := d.StringFixed(2)
	return s[:len(s)-3] + "," + s[len(s)-2:]
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
