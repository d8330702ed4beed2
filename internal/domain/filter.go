package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Criteria is one user selection: the states to keep, an inclusive range
// of month-grid indices, and a flag name or AnyFlag.
type Criteria struct {
	States []string
	Start  int
	End    int
	Flag   string
}

// FullRange returns criteria selecting every state in t over the whole grid
// with no flag filter.
func FullRange(t *Table) Criteria {
	return Criteria{States: t.States(), Start: 0, End: MaxMonthIndex, Flag: AnyFlag}
}

// Key returns a canonical string for c. Criteria selecting the same rows
// through reordered or repeated states share a key.
func (c Criteria) Key() string {
	states := slices.Clone(c.States)
	slices.Sort(states)
	states = slices.Compact(states)
	flag := c.Flag
	if flag == "" {
		flag = AnyFlag
	}
	return fmt.Sprintf("%s|%d-%d|%s", strings.Join(states, ","), c.Start, c.End, flag)
}

// bounds validates the month range and returns it as Unix seconds.
func (c Criteria) bounds() (int64, int64, error) {
	start, err := MonthStart(c.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := MonthStart(c.End)
	if err != nil {
		return 0, 0, err
	}
	if c.Start > c.End {
		return 0, 0, invalidArgument("month range %d..%d is reversed", c.Start, c.End)
	}
	return start.Unix(), end.Unix(), nil
}

// flag resolves the flag selection. ok is false for AnyFlag.
func (c Criteria) flag() (f Flag, ok bool, err error) {
	if c.Flag == "" || c.Flag == AnyFlag {
		return 0, false, nil
	}
	f, err = ParseFlag(c.Flag)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

// Filter returns the rows of t matching every part of c. An empty state
// list matches nothing. Unknown flags and month indices off the grid fail
// with ErrInvalidArgument before any row is examined.
func Filter(t *Table, c Criteria) (View, error) {
	startTS, endTS, err := c.bounds()
	if err != nil {
		return View{}, err
	}
	flag, useFlag, err := c.flag()
	if err != nil {
		return View{}, err
	}

	view := View{table: t, rows: []int{}}
	if len(c.States) == 0 || t.Len() == 0 {
		return view, nil
	}

	selected := make([]bool, len(t.states))
	matched := false
	for _, s := range c.States {
		if i, ok := slices.BinarySearch(t.states, s); ok {
			selected[i] = true
			matched = true
		}
	}
	if !matched {
		return view, nil
	}

	for row := range t.timestamp {
		if !selected[t.stateIdx[row]] {
			continue
		}
		if useFlag && !t.flags[row].Has(flag) {
			continue
		}
		ts := t.timestamp[row]
		if ts < startTS || ts > endTS {
			continue
		}
		view.rows = append(view.rows, row)
	}
	return view, nil
}
