package domain

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testStateVA = "VA"
	testStateCA = "CA"
	testStateTX = "TX"
)

// monthTS returns a timestamp inside the grid month at index, offset by day days.
func monthTS(t *testing.T, index, day int) int64 {
	t.Helper()
	start, err := MonthStart(index)
	require.NoError(t, err)
	return start.AddDate(0, 0, day).Unix()
}

func newTestTable(t *testing.T, records ...Record) *Table {
	t.Helper()
	tbl, err := NewTable(records)
	require.NoError(t, err)
	return tbl
}

func sampleRecords(t *testing.T) []Record {
	t.Helper()
	return []Record{
		{State: testStateVA, County: "51059", Timestamp: monthTS(t, 5, 3), Severity: 2, Weather: "Clear", DayNight: "Day", Flags: NewFlagSet(FlagJunction)},
		{State: testStateCA, County: "06037", Timestamp: monthTS(t, 50, 10), Severity: 3, Weather: "Rain", DayNight: "Night", Flags: NewFlagSet(FlagCrossing, FlagTrafficSignal)},
		{State: testStateTX, County: "48201", Timestamp: monthTS(t, 0, 0), Severity: 1, Weather: "Clear", DayNight: "Day"},
		{State: testStateTX, County: "48113", Timestamp: monthTS(t, 95, 20), Severity: 4, Weather: "Fog", DayNight: "Night", Flags: NewFlagSet(FlagJunction)},
		{State: testStateVA, County: "51059", Timestamp: monthTS(t, 24, 15), Severity: 2, Weather: "Rain", DayNight: "Day", Flags: NewFlagSet(FlagTrafficSignal)},
		{State: testStateCA, County: "06073", Timestamp: monthTS(t, 10, 0), Severity: 2, Weather: "Clear", DayNight: "Day", Flags: NewFlagSet(FlagJunction, FlagStop)},
	}
}

func TestFilter_SingleStateScenario(t *testing.T) {
	tbl := newTestTable(t,
		Record{State: testStateVA, County: "51059", Timestamp: monthTS(t, 5, 0), Severity: 2},
		Record{State: testStateCA, County: "06037", Timestamp: monthTS(t, 50, 0), Severity: 2},
	)

	view, err := Filter(tbl, Criteria{States: []string{testStateVA}, Start: 0, End: 10, Flag: AnyFlag})
	require.NoError(t, err)
	require.Equal(t, 1, view.Len())
	assert.Equal(t, testStateVA, view.Records()[0].State)

	summary, err := Aggregate(view, GroupState)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{testStateVA: 1}, summary.Counts())
}

func TestFilter_StateMembership(t *testing.T) {
	tbl := newTestTable(t, sampleRecords(t)...)

	cases := [][]string{
		{testStateVA},
		{testStateCA, testStateTX},
		{testStateVA, testStateCA, testStateTX},
		{"ZZ"},
		{testStateVA, "ZZ"},
	}
	for _, states := range cases {
		view, err := Filter(tbl, Criteria{States: states, Start: 0, End: MaxMonthIndex, Flag: AnyFlag})
		require.NoError(t, err)

		got := view.Records()
		for _, r := range got {
			assert.Contains(t, states, r.State, "record outside the selection")
		}

		// Every table record of a selected state must be present.
		var want int
		for i := range tbl.Len() {
			if slices.Contains(states, tbl.Record(i).State) {
				want++
			}
		}
		assert.Len(t, got, want, "states %v", states)
	}
}

func TestFilter_EmptyStatesYieldsEmptyView(t *testing.T) {
	tbl := newTestTable(t, sampleRecords(t)...)

	view, err := Filter(tbl, Criteria{States: nil, Start: 0, End: MaxMonthIndex, Flag: AnyFlag})
	require.NoError(t, err)
	assert.Equal(t, 0, view.Len())
	assert.Empty(t, view.Records())
}

func TestFilter_FullRangeReturnsWholeTable(t *testing.T) {
	records := sampleRecords(t)
	tbl := newTestTable(t, records...)

	view, err := Filter(tbl, FullRange(tbl))
	require.NoError(t, err)
	assert.ElementsMatch(t, records, view.Records())
}

func TestFilter_DateBounds(t *testing.T) {
	tbl := newTestTable(t,
		Record{State: testStateVA, County: "51059", Timestamp: monthTS(t, 12, 0), Severity: 1},  // first instant of Jan 2017
		Record{State: testStateVA, County: "51059", Timestamp: monthTS(t, 12, 5), Severity: 1},  // inside Jan 2017
		Record{State: testStateVA, County: "51059", Timestamp: monthTS(t, 11, 30), Severity: 1}, // Dec 31 2016
	)

	tests := []struct {
		name       string
		start, end int
		want       int
	}{
		{"end bound is first instant of end month", 0, 12, 2},
		{"start bound inclusive", 12, 13, 2},
		{"single month range keeps only its first instant", 12, 12, 1},
		{"range before data", 0, 10, 0},
		{"full grid", 0, MaxMonthIndex, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := Filter(tbl, Criteria{States: []string{testStateVA}, Start: tt.start, End: tt.end, Flag: AnyFlag})
			require.NoError(t, err)
			assert.Equal(t, tt.want, view.Len())
		})
	}
}

func TestFilter_FlagFilter(t *testing.T) {
	tbl := newTestTable(t, sampleRecords(t)...)
	all := []string{testStateVA, testStateCA, testStateTX}

	view, err := Filter(tbl, Criteria{States: all, Start: 0, End: MaxMonthIndex, Flag: "Junction"})
	require.NoError(t, err)
	require.Equal(t, 3, view.Len())
	for _, r := range view.Records() {
		assert.True(t, r.Flags.Has(FlagJunction))
	}

	view, err = Filter(tbl, Criteria{States: all, Start: 0, End: MaxMonthIndex, Flag: "traffic_signal"})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Len())

	view, err = Filter(tbl, Criteria{States: all, Start: 0, End: MaxMonthIndex, Flag: ""})
	require.NoError(t, err)
	assert.Equal(t, tbl.Len(), view.Len(), "empty flag behaves like Any")
}

func TestFilter_InvalidArguments(t *testing.T) {
	tbl := newTestTable(t, sampleRecords(t)...)
	states := []string{testStateVA}

	tests := []struct {
		name     string
		criteria Criteria
	}{
		{"unknown flag", Criteria{States: states, Start: 0, End: 10, Flag: "NonexistentFlag"}},
		{"negative start", Criteria{States: states, Start: -1, End: 10, Flag: AnyFlag}},
		{"end past grid", Criteria{States: states, Start: 0, End: 96, Flag: AnyFlag}},
		{"reversed range", Criteria{States: states, Start: 20, End: 10, Flag: AnyFlag}},
		{"unknown flag with empty states", Criteria{States: nil, Start: 0, End: 10, Flag: "NonexistentFlag"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Filter(tbl, tt.criteria)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	tbl := newTestTable(t, sampleRecords(t)...)
	c := Criteria{States: []string{testStateVA, testStateTX}, Start: 0, End: 60, Flag: "Junction"}

	first, err := Filter(tbl, c)
	require.NoError(t, err)
	second, err := Filter(tbl, c)
	require.NoError(t, err)

	assert.Equal(t, first.Rows(), second.Rows())
}

func TestCriteria_Key(t *testing.T) {
	a := Criteria{States: []string{"VA", "CA", "VA"}, Start: 1, End: 5}
	b := Criteria{States: []string{"CA", "VA"}, Start: 1, End: 5, Flag: AnyFlag}
	c := Criteria{States: []string{"CA", "VA"}, Start: 1, End: 6, Flag: AnyFlag}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, b.Key(), c.Key())
}

func TestView_Sample(t *testing.T) {
	var records []Record
	for i := range 10 {
		records = append(records, Record{State: testStateVA, County: "51059", Timestamp: int64(i), Severity: 1, Temperature: float64(i)})
	}
	view := newTestTable(t, records...).All()

	assert.Equal(t, []float64{0, 2, 4, 6, 8}, view.Sample(5).Measure(MeasureTemperature))
	assert.Equal(t, 10, view.Sample(0).Len())
	assert.Equal(t, 10, view.Sample(50).Len())
	assert.Equal(t, view.Sample(3).Rows(), view.Sample(3).Rows())
}

func TestMonthStart_Grid(t *testing.T) {
	tests := []struct {
		index int
		want  time.Time
	}{
		{0, time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{11, time.Date(2016, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{12, time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{50, time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{95, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := MonthStart(tt.index)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "index %d", tt.index)

		idx, ok := MonthIndex(got.AddDate(0, 0, 14))
		require.True(t, ok)
		assert.Equal(t, tt.index, idx)
	}

	_, err := MonthStart(96)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, ok := MonthIndex(time.Date(2015, time.December, 31, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestMonthLabels(t *testing.T) {
	labels := MonthLabels()
	require.Len(t, labels, GridMonths)
	assert.Equal(t, "Jan 2016", labels[0])
	assert.Equal(t, "Dec 2016", labels[11])
	assert.Equal(t, "Jan 2017", labels[12])
	assert.Equal(t, "Dec 2023", labels[95])
}
