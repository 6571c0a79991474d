package normalizer

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/transport-report/internal/domain/record"
)

func TestNormalizeDate_Serial(t *testing.T) {
	tests := []struct {
		name   string
		serial float64
		want   time.Time
	}{
		{"unix epoch", 25569, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01", 45292, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"half day", 45292.5, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"serial 1", 1, time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"rounds to the nearest second", 45292 + 0.4/86400, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"rounds up past half a second", 45292 + 0.6/86400, time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(record.Number(tt.serial))
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestNormalizeDate_SerialMatchesFormula(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	for s := 1.0; s < 80000; s += 997.37 {
		got, ok := FromSerial(s)
		require.True(t, ok)
		want := epoch.Add(time.Duration(math.Round((s-25569)*86400)) * time.Second)
		assert.True(t, want.Equal(got), "serial %v", s)
	}
}

func TestFromSerial_Range(t *testing.T) {
	_, ok := FromSerial(0)
	assert.False(t, ok, "serial 0 is an empty cell")

	maxSerial := 25569 + 1e8
	got, ok := FromSerial(maxSerial)
	require.True(t, ok)
	assert.Equal(t, 275760, got.Year())

	_, ok = FromSerial(maxSerial + 1)
	assert.False(t, ok)

	got, ok = FromSerial(-0.5)
	require.True(t, ok)
	assert.Equal(t, time.Date(1899, 12, 29, 12, 0, 0, 0, time.UTC), got)
}

func TestNormalizeDate_Text(t *testing.T) {
	jan15 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15", jan15},
		{" 2024-01-15 ", jan15},
		{"15/01/2024", jan15},
		{"15-01-2024", jan15},
		{"15.01.2024", jan15},
		{"5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"01/15/2024", jan15},
		{"2024-01-15T00:00:00.000Z", jan15},
		{"2024-01-15T08:30:00+02:00", time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)},
		{"January 15, 2024", jan15},
		{"15/01/2024 10:30", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeDate(record.Text(tt.in))
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestNormalizeDate_Invalid(t *testing.T) {
	cells := []record.Cell{
		{},
		record.Text(""),
		record.Text("   "),
		record.Text("not a date"),
		record.Text("32/13/2024"),
		record.Number(math.NaN()),
		record.Number(math.Inf(1)),
		record.Number(0),
		record.Number(1e9),
		record.Number(-1e9),
		record.Date(time.Time{}),
	}
	for _, c := range cells {
		_, ok := NormalizeDate(c)
		assert.False(t, ok, "%#v", c)
	}
}

func TestNormalizeDate_DateCell(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got, ok := NormalizeDate(record.Date(time.Date(2024, 2, 29, 23, 30, 0, 0, loc)))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 30, 0, 0, time.UTC), got)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"10.5", "10.5", true},
		{"10,5", "10.5", true},
		{"1.234,56", "1234.56", true},
		{"1,234.56", "1234.56", true},
		{"1.234.567", "1234567", true},
		{"1,234,567", "1234567", true},
		{"€ 45,00", "45", true},
		{"45,00 €", "45", true},
		{"$1,200.00", "1200", true},
		{"-4.50", "-4.5", true},
		{"(12,00)", "-12", true},
		{"1 250,75", "1250.75", true},
		{"abc", "0", false},
		{"", "0", false},
		{"€", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestNormalizeAmount(t *testing.T) {
	d, ok := NormalizeAmount(record.Number(10.5))
	require.True(t, ok)
	assert.Equal(t, "10.5", d.String())

	d, ok = NormalizeAmount(record.Text("7,25"))
	require.True(t, ok)
	assert.Equal(t, "7.25", d.String())

	_, ok = NormalizeAmount(record.Cell{})
	assert.False(t, ok)

	_, ok = NormalizeAmount(record.Number(math.NaN()))
	assert.False(t, ok)
}
