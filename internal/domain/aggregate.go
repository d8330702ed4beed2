package domain

import (
	"cmp"
	"math"
	"slices"
)

// GroupKey is a categorical column that records can be counted by.
type GroupKey uint8

const (
	GroupCounty GroupKey = iota + 1
	GroupState
	GroupWeather
	GroupDayNight
	GroupSeverity
)

var groupKeyNames = map[GroupKey]string{
	GroupCounty:   "county",
	GroupState:    "state",
	GroupWeather:  "weather",
	GroupDayNight: "day_night",
	GroupSeverity: "severity",
}

func (k GroupKey) String() string { return groupKeyNames[k] }

// ParseGroupKey resolves a grouping key name such as "day_night".
func ParseGroupKey(name string) (GroupKey, error) {
	for k, n := range groupKeyNames {
		if n == name {
			return k, nil
		}
	}
	return 0, invalidArgument("unknown grouping key %q", name)
}

// GroupKeys returns every grouping key in declaration order.
func GroupKeys() []GroupKey {
	return []GroupKey{GroupCounty, GroupState, GroupWeather, GroupDayNight, GroupSeverity}
}

func (k GroupKey) MarshalText() ([]byte, error) {
	if _, ok := groupKeyNames[k]; !ok {
		return nil, invalidArgument("unknown grouping key %d", k)
	}
	return []byte(k.String()), nil
}

func (k *GroupKey) UnmarshalText(b []byte) error {
	v, err := ParseGroupKey(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Group is the number of records sharing one key value.
type Group struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Summary holds per-group counts for one grouping key, largest count first
// and ties ordered by key.
type Summary struct {
	Key    GroupKey `json:"key"`
	Groups []Group  `json:"groups"`
	Total  int      `json:"total"`
}

// Counts returns the summary as a key -> count map.
func (s Summary) Counts() map[string]int {
	m := make(map[string]int, len(s.Groups))
	for _, g := range s.Groups {
		m[g.Key] = g.Count
	}
	return m
}

// Aggregate counts the rows of v per distinct value of key. An empty view
// yields an empty summary. The counts always sum to v.Len().
func Aggregate(v View, key GroupKey) (Summary, error) {
	if _, ok := groupKeyNames[key]; !ok {
		return Summary{}, invalidArgument("unknown grouping key %d", key)
	}
	s := Summary{Key: key, Groups: []Group{}, Total: len(v.rows)}
	if len(v.rows) == 0 {
		return s, nil
	}

	t := v.table
	switch key {
	case GroupState:
		s.Groups = countCodes(v.rows, len(t.states), func(row int) int { return int(t.stateIdx[row]) }, t.states)
	case GroupCounty:
		s.Groups = countCodes(v.rows, len(t.counties), func(row int) int { return int(t.countyIdx[row]) }, t.counties)
	default:
		counts := make(map[string]int)
		for _, row := range v.rows {
			counts[t.groupValue(row, key)]++
		}
		s.Groups = make([]Group, 0, len(counts))
		for k, c := range counts {
			s.Groups = append(s.Groups, Group{Key: k, Count: c})
		}
	}

	slices.SortFunc(s.Groups, func(a, b Group) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return s, nil
}

// countCodes counts dictionary codes with a dense slice instead of a map.
func countCodes(rows []int, domainSize int, code func(row int) int, names []string) []Group {
	counts := make([]int, domainSize)
	for _, row := range rows {
		counts[code(row)]++
	}
	groups := make([]Group, 0)
	for i, c := range counts {
		if c > 0 {
			groups = append(groups, Group{Key: names[i], Count: c})
		}
	}
	return groups
}

// LogCount is a group count on a base-10 logarithmic color scale.
type LogCount struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Log   float64 `json:"log"`
}

// LogScale maps each group count to log10(count) for choropleth shading.
// Groups with a count of zero or less have no logarithm and are dropped.
func LogScale(groups []Group) []LogCount {
	out := make([]LogCount, 0, len(groups))
	for _, g := range groups {
		if g.Count <= 0 {
			continue
		}
		out = append(out, LogCount{Key: g.Key, Count: g.Count, Log: math.Log10(float64(g.Count))})
	}
	return out
}
