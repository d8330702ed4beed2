package domain

import (
	"fmt"
	"slices"
	"strconv"
)

// Severity bounds of the dataset.
const (
	MinSeverity = 1
	MaxSeverity = 4
)

const numMeasures = int(MeasureDistance)

// Table is an immutable, column-oriented set of accident records. State and
// county values are dictionary-encoded against the domains seen at load
// time. A *Table is safe for concurrent readers.
type Table struct {
	states   []string
	counties []string

	stateIdx  []uint16
	countyIdx []uint32
	timestamp []int64
	severity  []uint8
	weather   []string
	dayNight  []string
	flags     []FlagSet
	measures  [numMeasures][]float64
}

// NewTable validates records and stores them column-wise. It fails on the
// first record with an empty state or county or a severity outside
// MinSeverity..MaxSeverity. The caller may reuse records afterwards.
func NewTable(records []Record) (*Table, error) {
	stateSet := make(map[string]struct{})
	countySet := make(map[string]struct{})
	for i := range records {
		r := &records[i]
		if r.State == "" {
			return nil, fmt.Errorf("record %d: empty state", i)
		}
		if r.County == "" {
			return nil, fmt.Errorf("record %d: empty county", i)
		}
		if r.Severity < MinSeverity || r.Severity > MaxSeverity {
			return nil, fmt.Errorf("record %d: severity %d outside %d..%d", i, r.Severity, MinSeverity, MaxSeverity)
		}
		stateSet[r.State] = struct{}{}
		countySet[r.County] = struct{}{}
	}
	if len(stateSet) > 1<<16 {
		return nil, fmt.Errorf("too many distinct states: %d", len(stateSet))
	}

	t := &Table{
		states:    sortedKeys(stateSet),
		counties:  sortedKeys(countySet),
		stateIdx:  make([]uint16, len(records)),
		countyIdx: make([]uint32, len(records)),
		timestamp: make([]int64, len(records)),
		severity:  make([]uint8, len(records)),
		weather:   make([]string, len(records)),
		dayNight:  make([]string, len(records)),
		flags:     make([]FlagSet, len(records)),
	}
	for m := range t.measures {
		t.measures[m] = make([]float64, len(records))
	}

	stateCode := indexOf(t.states)
	countyCode := indexOf(t.counties)
	for i := range records {
		r := &records[i]
		t.stateIdx[i] = uint16(stateCode[r.State])
		t.countyIdx[i] = uint32(countyCode[r.County])
		t.timestamp[i] = r.Timestamp
		t.severity[i] = uint8(r.Severity)
		t.weather[i] = r.Weather
		t.dayNight[i] = r.DayNight
		t.flags[i] = r.Flags
		for _, m := range Measures() {
			t.measures[m-1][i] = r.Measure(m)
		}
	}
	return t, nil
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.timestamp) }

// States returns the sorted distinct state codes.
func (t *Table) States() []string { return slices.Clone(t.states) }

// Counties returns the sorted distinct county codes.
func (t *Table) Counties() []string { return slices.Clone(t.counties) }

// Record reconstructs row i.
func (t *Table) Record(i int) Record {
	return Record{
		State:         t.states[t.stateIdx[i]],
		County:        t.counties[t.countyIdx[i]],
		Timestamp:     t.timestamp[i],
		Severity:      int(t.severity[i]),
		Weather:       t.weather[i],
		DayNight:      t.dayNight[i],
		Flags:         t.flags[i],
		Temperature:   t.measures[MeasureTemperature-1][i],
		Visibility:    t.measures[MeasureVisibility-1][i],
		WindSpeed:     t.measures[MeasureWindSpeed-1][i],
		Precipitation: t.measures[MeasurePrecipitation-1][i],
		Distance:      t.measures[MeasureDistance-1][i],
	}
}

// All returns a view over every row in table order.
func (t *Table) All() View {
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}
	return View{table: t, rows: rows}
}

func (t *Table) groupValue(row int, key GroupKey) string {
	switch key {
	case GroupCounty:
		return t.counties[t.countyIdx[row]]
	case GroupState:
		return t.states[t.stateIdx[row]]
	case GroupWeather:
		return t.weather[row]
	case GroupDayNight:
		return t.dayNight[row]
	case GroupSeverity:
		return strconv.Itoa(int(t.severity[row]))
	default:
		return ""
	}
}

// View is a subset of table rows. It shares the table's storage and never
// copies record data.
type View struct {
	table *Table
	rows  []int
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.rows) }

// Rows returns the table row indices of the view.
func (v View) Rows() []int { return slices.Clone(v.rows) }

// Records materializes the view.
func (v View) Records() []Record {
	out := make([]Record, len(v.rows))
	for i, row := range v.rows {
		out[i] = v.table.Record(row)
	}
	return out
}

// Measure returns the column values of m for each row of the view.
func (v View) Measure(m Measure) []float64 {
	out := make([]float64, len(v.rows))
	if len(v.rows) == 0 || m < MeasureTemperature || m > MeasureDistance {
		return out
	}
	col := v.table.measures[m-1]
	for i, row := range v.rows {
		out[i] = col[row]
	}
	return out
}

// Severities returns the severity of each row of the view.
func (v View) Severities() []int {
	out := make([]int, len(v.rows))
	for i, row := range v.rows {
		out[i] = int(v.table.severity[row])
	}
	return out
}

// Sample returns at most n rows picked at evenly spaced positions. The pick
// depends only on Len and n, so equal views sample identically. n <= 0 or
// n >= Len returns v unchanged.
func (v View) Sample(n int) View {
	if n <= 0 || n >= len(v.rows) {
		return v
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = v.rows[i*len(v.rows)/n]
	}
	return View{table: v.table, rows: rows}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func indexOf(values []string) map[string]int {
	m := make(map[string]int, len(values))
	for i, v := range values {
		m[v] = i
	}
	return m
}
