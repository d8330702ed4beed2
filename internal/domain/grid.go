package domain

import (
	"fmt"
	"time"
)

// Month grid bounds. Index 0 is January 2016, index MaxMonthIndex is
// December 2023.
const (
	GridStartYear = 2016
	GridMonths    = 96
	MaxMonthIndex = GridMonths - 1
)

// MonthStart returns 00:00:00 UTC on the first day of the month at index.
func MonthStart(index int) (time.Time, error) {
	if index < 0 || index > MaxMonthIndex {
		return time.Time{}, invalidArgument("month index %d outside 0..%d", index, MaxMonthIndex)
	}
	year := GridStartYear + index/12
	month := time.Month(index%12 + 1)
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}

// MonthIndex returns the grid index of the month containing t, or false
// when t falls outside the grid.
func MonthIndex(t time.Time) (int, bool) {
	t = t.UTC()
	i := (t.Year()-GridStartYear)*12 + int(t.Month()) - 1
	if i < 0 || i > MaxMonthIndex {
		return 0, false
	}
	return i, true
}

// MonthLabel formats a grid index as "Jan 2016".
func MonthLabel(index int) string {
	start, err := MonthStart(index)
	if err != nil {
		return fmt.Sprintf("#%d", index)
	}
	return start.Format("Jan 2006")
}

// MonthLabels returns the label of every grid index.
func MonthLabels() []string {
	out := make([]string, GridMonths)
	for i := range out {
		out[i] = MonthLabel(i)
	}
	return out
}
