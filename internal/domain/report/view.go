package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/transport-report/internal/domain/import/parser"
	"github.com/FACorreiaa/transport-report/internal/domain/record"
	"github.com/FACorreiaa/transport-report/pkg/money"
)

const rowDateLayout = "02/01/2006"

// Row is one line of the printed report
type Row struct {
	Driver      string         `json:"driver" csv:"Conductor"`
	Date        string         `json:"date" csv:"Fecha"`
	Client      string         `json:"client" csv:"Cliente"`
	Origin      string         `json:"origin" csv:"Origen"`
	Destination string         `json:"destination" csv:"Destino"`
	Amount      string         `json:"amount" csv:"Precio"`
	Record      *record.Record `json:"record" csv:"-"`
}

// View is everything the report screen needs for one dataset and selection
type View struct {
	FileName     string              `json:"file_name,omitempty"`
	Drivers      []string            `json:"drivers"`
	Months       []string            `json:"months"`
	Weeks        []string            `json:"weeks"`
	Selection    Selection           `json:"selection"`
	Rows         []Row               `json:"rows"`
	Count        int                 `json:"count"`
	Total        decimal.Decimal     `json:"total"`
	TotalDisplay string              `json:"total_display"`
	Diagnostics  *parser.Diagnostics `json:"diagnostics,omitempty"`
}

// BuildView filters the snapshot and totals the result
func BuildView(s *Snapshot, selection Selection) View {
	idx := s.FilterIndexes(selection)

	rows := make([]Row, len(idx))
	total := decimal.Zero
	for n, i := range idx {
		rec := s.records[i]
		amount := Amount(rec, s.opts.Fields.Amount)
		total = total.Add(amount)
		rows[n] = s.row(i, amount)
	}

	return View{
		Drivers:      s.drivers,
		Months:       s.months,
		Weeks:        s.weeks,
		Selection:    selection,
		Rows:         rows,
		Count:        len(rows),
		Total:        total,
		TotalDisplay: money.FormatEUR(total),
	}
}

func (s *Snapshot) row(i int, amount decimal.Decimal) Row {
	rec := s.records[i]
	d := s.derived[i]
	row := Row{
		Driver:      d.Driver,
		Client:      fieldText(rec, s.opts.Fields.Client),
		Origin:      fieldText(rec, s.opts.Fields.Origin),
		Destination: fieldText(rec, s.opts.Fields.Destination),
		Amount:      amount.StringFixed(2),
		Record:      rec,
	}
	if d.HasDate {
		row.Date = d.Date.Format(rowDateLayout)
	}
	return row
}

func fieldText(rec *record.Record, aliases []string) string {
	c, ok := record.Resolve(rec, aliases)
	if !ok {
		return ""
	}
	return strings.TrimSpace(c.String())
}
