// Package record defines the canonical row model produced by a spreadsheet import.
package record

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies what a spreadsheet cell holds
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	default:
		return "empty"
	}
}

// Cell is an untyped spreadsheet value. Only the field matching Kind is meaningful.
type Cell struct {
	Kind Kind
	Num  float64
	Text string
	Time time.Time
}

// Number returns a numeric cell
func Number(v float64) Cell {
	return Cell{Kind: KindNumber, Num: v}
}

// Text returns a text cell. Empty strings produce an empty cell.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: KindText, Text: s}
}

// Date returns a date-like cell
func Date(t time.Time) Cell {
	return Cell{Kind: KindDate, Time: t}
}

// IsEmpty reports whether the cell holds nothing, or only whitespace text
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case KindEmpty:
		return true
	case KindText:
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

// String renders the cell the way a spreadsheet shows a raw value
func (c Cell) String() string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindText:
		return c.Text
	case KindDate:
		return c.Time.UTC().Format(jsonDateLayout)
	default:
		return ""
	}
}

// Classify turns a raw string into a number cell when it is a plain decimal
// literal and into a text cell otherwise.
func Classify(raw string) Cell {
	if raw == "" {
		return Cell{}
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" && isPlainNumber(trimmed) {
		if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Number(v)
		}
	}
	return Text(raw)
}

// isPlainNumber rejects forms strconv accepts but spreadsheets keep as text
// (hex, underscores, Inf, NaN).
func isPlainNumber(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.', r == 'e', r == 'E':
		case (r == '-' || r == '+') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		default:
			return false
		}
	}
	return digits > 0
}
