package report

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/transport-report/internal/domain/record"
)

// Snapshot caches the derived values of every record for one dataset version.
// It must be rebuilt whenever the dataset changes.
type Snapshot struct {
	records []*record.Record
	derived []Derived
	opts    Options

	drivers []string
	months  []string
	weeks   []string
}

// NewSnapshot derives every record once and builds the option sets
func NewSnapshot(records []*record.Record, opts Options) *Snapshot {
	s := &Snapshot{
		records: records,
		derived: make([]Derived, len(records)),
		opts:    opts,
	}

	drivers := make(map[string]struct{})
	months := make(map[string]struct{})
	weeks := make(map[string]struct{})
	for i, rec := range records {
		d := Derive(rec, opts.Fields)
		s.derived[i] = d
		if d.Driver != "" {
			drivers[d.Driver] = struct{}{}
		}
		if d.HasDate {
			months[d.MonthKey] = struct{}{}
			weeks[d.WeekKey] = struct{}{}
		}
	}

	s.drivers = SortDrivers(keys(drivers))
	s.months = SortMonthKeys(keys(months))
	s.weeks = SortWeekKeys(keys(weeks))
	return s
}

// Records returns the dataset the snapshot was built from
func (s *Snapshot) Records() []*record.Record { return s.records }

// Drivers returns the distinct driver names in Spanish collation order
func (s *Snapshot) Drivers() []string { return s.drivers }

// Months returns the distinct month keys in chronological order
func (s *Snapshot) Months() []string { return s.months }

// Weeks returns the distinct week keys ordered by year, then week number
func (s *Snapshot) Weeks() []string { return s.weeks }

// Derived returns the cached values of the i-th record
func (s *Snapshot) Derived(i int) Derived { return s.derived[i] }

// Filter applies the selection using the cached derivations
func (s *Snapshot) Filter(selection Selection) []*record.Record {
	idx := s.FilterIndexes(selection)
	out := make([]*record.Record, len(idx))
	for n, i := range idx {
		out[n] = s.records[i]
	}
	return out
}

// FilterIndexes returns the dataset positions passing the selection
func (s *Snapshot) FilterIndexes(selection Selection) []int {
	idx := make([]int, 0, len(s.records))
	for i := range s.records {
		if selection.Matches(s.derived[i], s.opts.Undated) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Options returns the options the snapshot was derived with
func (s *Snapshot) Options() Options { return s.opts }

// MatchMonth returns the indexes of records whose month key equals key
func (s *Snapshot) MatchMonth(key string) []int {
	var idx []int
	for i, d := range s.derived {
		if d.HasDate && d.MonthKey == key {
			idx = append(idx, i)
		}
	}
	return idx
}

// MatchWeek returns the indexes of records whose week key equals key
func (s *Snapshot) MatchWeek(key string) []int {
	var idx []int
	for i, d := range s.derived {
		if d.HasDate && d.WeekKey == key {
			idx = append(idx, i)
		}
	}
	return idx
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// SortDrivers orders driver names with Spanish collation, so accents and
// case do not split names apart.
func SortDrivers(drivers []string) []string {
	sort.Strings(drivers)
	c := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(drivers, func(i, j int) bool {
		return c.CompareString(drivers[i], drivers[j]) < 0
	})
	return drivers
}

// SortMonthKeys orders month keys chronologically. Keys that do not parse
// go last in byte order.
func SortMonthKeys(months []string) []string {
	sort.SliceStable(months, func(i, j int) bool {
		yi, mi, oki := ParseMonthKey(months[i])
		yj, mj, okj := ParseMonthKey(months[j])
		switch {
		case oki && okj:
			if yi != yj {
				return yi < yj
			}
			return mi < mj
		case oki != okj:
			return oki
		default:
			return months[i] < months[j]
		}
	})
	return months
}

// SortWeekKeys orders week keys by year, then week number
func SortWeekKeys(weeks []string) []string {
	sort.SliceStable(weeks, func(i, j int) bool {
		yi, wi, oki := ParseWeekKey(weeks[i])
		yj, wj, okj := ParseWeekKey(weeks[j])
		switch {
		case oki && okj:
			if yi != yj {
				return yi < yj
			}
			return wi < wj
		case oki != okj:
			return oki
		default:
			return weeks[i] < weeks[j]
		}
	})
	return weeks
}
