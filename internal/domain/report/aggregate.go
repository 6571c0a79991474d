package report

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/transport-report/internal/domain/import/normalizer"
	"github.com/FACorreiaa/transport-report/internal/domain/record"
)

// Amount resolves and parses the amount of one record. Missing or
// unparsable values count as zero.
func Amount(rec *record.Record, aliases []string) decimal.Decimal {
	c, ok := record.Resolve(rec, aliases)
	if !ok {
		return decimal.Zero
	}
	v, ok := normalizer.NormalizeAmount(c)
	if !ok {
		return decimal.Zero
	}
	return v
}

// Total sums the amounts of the given records
func Total(records []*record.Record, aliases []string) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(Amount(rec, aliases))
	}
	return total
}
