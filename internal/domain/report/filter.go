package report

import (
	"strings"
	"time"

	"github.com/FACorreiaa/transport-report/internal/domain/import/normalizer"
	"github.com/FACorreiaa/transport-report/internal/domain/record"
)

// Selection is the active filter set. Month and Week are mutually exclusive.
type Selection struct {
	Driver string `json:"driver,omitempty"`
	Month  string `json:"month,omitempty"`
	Week   string `json:"week,omitempty"`
}

// WithDriver sets the driver filter; empty clears it
func (s Selection) WithDriver(driver string) Selection {
	s.Driver = driver
	return s
}

// WithMonth sets the month filter and clears the week filter
func (s Selection) WithMonth(month string) Selection {
	s.Month = month
	if month != "" {
		s.Week = ""
	}
	return s
}

// WithWeek sets the week filter and clears the month filter
func (s Selection) WithWeek(week string) Selection {
	s.Week = week
	if week != "" {
		s.Month = ""
	}
	return s
}

// HasPeriod reports whether a month or week filter is active
func (s Selection) HasPeriod() bool {
	return s.Month != "" || s.Week != ""
}

// IsZero reports whether no filter is active
func (s Selection) IsZero() bool {
	return s.Driver == "" && !s.HasPeriod()
}

// Derived holds the values computed from one record
type Derived struct {
	Driver   string
	HasDate  bool
	Date     time.Time
	MonthKey string
	WeekKey  string
}

// Derive resolves the driver and date of a record and computes its period keys
func Derive(rec *record.Record, fields Fields) Derived {
	var d Derived
	if c, ok := record.Resolve(rec, fields.Driver); ok && !c.IsEmpty() {
		d.Driver = strings.TrimSpace(c.String())
	}
	if c, ok := record.Resolve(rec, fields.Date); ok {
		if t, ok := normalizer.NormalizeDate(c); ok {
			d.HasDate = true
			d.Date = t
			d.MonthKey = MonthKey(t)
			d.WeekKey = WeekKey(t)
		}
	}
	return d
}

// Matches applies the selection to derived record values
func (s Selection) Matches(d Derived, policy UndatedPolicy) bool {
	if s.Driver != "" && d.Driver != s.Driver {
		return false
	}
	if !d.HasDate {
		return policy == UndatedVisibleUnfiltered && !s.HasPeriod()
	}
	if s.Month != "" && d.MonthKey != s.Month {
		return false
	}
	if s.Week != "" && d.WeekKey != s.Week {
		return false
	}
	return true
}

// Filter returns the records passing the selection, in dataset order
func Filter(records []*record.Record, selection Selection, opts Options) []*record.Record {
	out := make([]*record.Record, 0, len(records))
	for _, rec := range records {
		if selection.Matches(Derive(rec, opts.Fields), opts.Undated) {
			out = append(out, rec)
		}
	}
	return out
}
