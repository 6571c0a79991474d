// Package normalizer turns raw spreadsheet cell values into dates and amounts.
// Every function here is fail-soft: malformed input yields ok == false, never an error.
package normalizer

import (
	"math"
	"strings"
	"time"

	"github.com/FACorreiaa/transport-report/internal/domain/record"
)

const (
	// excelUnixEpochDays is the serial of 1970-01-01 in the 1900 date system
	excelUnixEpochDays = 25569
	secondsPerDay      = 86400
	// maxDateSeconds bounds a timestamp to ±100,000,000 days around 1970
	maxDateSeconds = 8.64e12
)

// dateLayouts are tried in order. Day-first layouts come before their
// month-first twins because the sheets are written in a day-first locale.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"02/01/06",
	"2/1/06",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// FromSerial converts a spreadsheet day serial into a UTC date, rounded to
// the nearest second. Serial 0 is an empty date cell.
func FromSerial(serial float64) (time.Time, bool) {
	if serial == 0 || math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	secs := math.Round((serial - excelUnixEpochDays) * secondsPerDay)
	if math.Abs(secs) > maxDateSeconds {
		return time.Time{}, false
	}
	return time.Unix(int64(secs), 0).UTC(), true
}

// NormalizeDate converts any cell into a calendar date. Numbers are read as
// spreadsheet serials, text is parsed against a fixed set of layouts.
func NormalizeDate(c record.Cell) (time.Time, bool) {
	switch c.Kind {
	case record.KindNumber:
		return FromSerial(c.Num)
	case record.KindDate:
		if c.Time.IsZero() {
			return time.Time{}, false
		}
		return naive(c.Time), true
	case record.KindText:
		return ParseDate(c.Text)
	default:
		return time.Time{}, false
	}
}

// ParseDate parses a textual date. Results are UTC and treated as local-naive.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return naive(t), true
		}
	}
	return time.Time{}, false
}

// naive keeps the wall clock reading and drops the zone
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
