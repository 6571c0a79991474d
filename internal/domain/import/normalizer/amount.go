package normalizer

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/transport-report/internal/domain/record"
)

var currencyTokens = []string{"EUR", "USD", "€", "$", "£"}

// ParseAmount parses a price written either as 1,234.56 or 1.234,56.
// When both separators appear the last one is the decimal separator; a lone
// comma is a decimal comma unless it repeats.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		if strings.Count(s, ",") == 1 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// NormalizeAmount converts a cell into a decimal amount
func NormalizeAmount(c record.Cell) (decimal.Decimal, bool) {
	switch c.Kind {
	case record.KindNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(c.Num), true
	case record.KindText:
		return ParseAmount(c.Text)
	default:
		return decimal.Zero, false
	}
}
