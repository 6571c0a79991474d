// Package report derives the trip report from a dataset: period keys,
// filtering, totals and the dropdown option sets.
package report

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// spanishMonths holds the es-ES long month names, lower case
var spanishMonths = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

const weekPrefix = "Semana "

// MonthKey formats a date as "<mes> <año>", e.g. "enero 2024"
func MonthKey(t time.Time) string {
	return spanishMonths[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// WeekNumber counts weeks from January 1st with Sunday-indexed weekdays.
// Year-end dates can yield 53 or 54.
func WeekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := math.Floor(t.Sub(jan1).Hours() / 24)
	return int(math.Ceil((float64(t.Weekday()) + 1 + days) / 7))
}

// WeekKey formats a date as "Semana <n> - <año>"
func WeekKey(t time.Time) string {
	return weekPrefix + strconv.Itoa(WeekNumber(t)) + " - " + strconv.Itoa(t.Year())
}

// ParseMonthKey reverses MonthKey
func ParseMonthKey(key string) (year int, month time.Month, ok bool) {
	name, yearText, found := strings.Cut(key, " ")
	if !found {
		return 0, 0, false
	}
	y, err := strconv.Atoi(yearText)
	if err != nil {
		return 0, 0, false
	}
	for i, m := range spanishMonths {
		if m == name {
			return y, time.Month(i + 1), true
		}
	}
	return 0, 0, false
}

// ParseWeekKey reverses WeekKey
func ParseWeekKey(key string) (year, week int, ok bool) {
	rest, found := strings.CutPrefix(key, weekPrefix)
	if !found {
		return 0, 0, false
	}
	weekText, yearText, found := strings.Cut(rest, " - ")
	if !found {
		return 0, 0, false
	}
	w, err := strconv.Atoi(weekText)
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.Atoi(yearText)
	if err != nil {
		return 0, 0, false
	}
	return y, w, true
}
