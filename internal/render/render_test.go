package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-dashboard/internal/domain"
)

func testView(t *testing.T, records ...domain.Record) domain.View {
	t.Helper()
	tbl, err := domain.NewTable(records)
	require.NoError(t, err)
	return tbl.All()
}

func countyRecords(counts map[string]int) []domain.Record {
	var out []domain.Record
	for county, n := range counts {
		for range n {
			out = append(out, domain.Record{State: "VA", County: county, Severity: 2})
		}
	}
	return out
}

func TestParseMapMode(t *testing.T) {
	m, err := ParseMapMode("")
	require.NoError(t, err)
	assert.Equal(t, MapCounty, m)
	assert.Equal(t, domain.GroupCounty, m.GroupKey())

	m, err = ParseMapMode("state")
	require.NoError(t, err)
	assert.Equal(t, domain.GroupState, m.GroupKey())

	_, err = ParseMapMode("zip")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestNewChoropleth(t *testing.T) {
	view := testView(t, countyRecords(map[string]int{"51059": 100, "51013": 10, "51510": 1})...)
	s, err := domain.Aggregate(view, domain.GroupCounty)
	require.NoError(t, err)

	c := NewChoropleth(MapCounty, s)

	assert.Equal(t, []string{"51059", "51013", "51510"}, c.Locations)
	assert.Equal(t, []int{100, 10, 1}, c.Counts)
	require.Len(t, c.LogCounts, 3)
	assert.InDelta(t, 2.0, c.LogCounts[0], 1e-12)
	assert.InDelta(t, 1.0, c.LogCounts[1], 1e-12)
	assert.InDelta(t, 0.0, c.LogCounts[2], 1e-12)
	assert.InDelta(t, 0.0, c.Range[0], 1e-12)
	assert.InDelta(t, 2.0, c.Range[1], 1e-12)

	// Extremes map to the ends of the Viridis scale.
	assert.Equal(t, "#fde725", c.Colors[0])
	assert.Equal(t, "#440154", c.Colors[2])
}

func TestNewChoropleth_ZeroCountGroupsExcluded(t *testing.T) {
	s := domain.Summary{
		Key:    domain.GroupState,
		Groups: []domain.Group{{Key: "VA", Count: 5}, {Key: "WY", Count: 0}},
		Total:  5,
	}

	c := NewChoropleth(MapState, s)
	assert.Equal(t, []string{"VA"}, c.Locations)
	assert.Equal(t, [2]float64{c.LogCounts[0], c.LogCounts[0]}, c.Range)
	assert.Equal(t, "#440154", c.Colors[0], "single region sits at the low end")
}

func TestNewChoropleth_Empty(t *testing.T) {
	c := NewChoropleth(MapCounty, domain.Summary{Key: domain.GroupCounty})

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"county","locations":[],"counts":[],"log_counts":[],"colors":[],"range":[0,0]}`, string(data))
}

func TestNewPie(t *testing.T) {
	view := testView(t,
		domain.Record{State: "VA", County: "51059", Severity: 1, Weather: "Rain"},
		domain.Record{State: "VA", County: "51059", Severity: 1, Weather: "Rain"},
		domain.Record{State: "VA", County: "51059", Severity: 1, Weather: ""},
	)
	s, err := domain.Aggregate(view, domain.GroupWeather)
	require.NoError(t, err)

	p := NewPie(s)
	assert.Equal(t, domain.GroupWeather, p.Key)
	assert.Equal(t, []string{"Rain", "Unknown"}, p.Labels)
	assert.Equal(t, []int{2, 1}, p.Values)
	assert.Equal(t, 3, p.Total)

	data, err := json.Marshal(NewPie(domain.Summary{Key: domain.GroupSeverity}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"severity","labels":[],"values":[],"total":0}`, string(data))
}

func TestNewPie_EmptyKeyJoinsUnknown(t *testing.T) {
	s := domain.Summary{
		Key: domain.GroupWeather,
		Groups: []domain.Group{
			{Key: "Rain", Count: 4},
			{Key: "Unknown", Count: 3},
			{Key: "", Count: 2},
			{Key: "Fog", Count: 1},
		},
		Total: 10,
	}

	p := NewPie(s)
	assert.Equal(t, []string{"Unknown", "Rain", "Fog"}, p.Labels)
	assert.Equal(t, []int{5, 4, 1}, p.Values)
	assert.Equal(t, 10, p.Total)
}

func TestNewScatter(t *testing.T) {
	var records []domain.Record
	for i := range 10 {
		records = append(records, domain.Record{
			State: "VA", County: "51059", Severity: i%4 + 1,
			Temperature: float64(i), WindSpeed: float64(2 * i),
		})
	}
	view := testView(t, records...)

	s := NewScatter(view, domain.MeasureTemperature, domain.MeasureWindSpeed, 0)
	assert.Equal(t, 10, s.Total)
	assert.False(t, s.Sampled)
	assert.Len(t, s.X, 10)
	assert.Equal(t, [2]float64{0, 9}, s.XBounds)
	assert.Equal(t, [2]float64{0, 18}, s.YBounds)
	assert.InDelta(t, 4.5, s.XMean, 1e-12)
	assert.InDelta(t, 9.0, s.YMean, 1e-12)

	capped := NewScatter(view, domain.MeasureTemperature, domain.MeasureWindSpeed, 4)
	assert.Equal(t, 10, capped.Total)
	assert.True(t, capped.Sampled)
	assert.Len(t, capped.X, 4)
	assert.Len(t, capped.Severity, 4)
	assert.Equal(t, capped, NewScatter(view, domain.MeasureTemperature, domain.MeasureWindSpeed, 4), "sampling is deterministic")
}

func TestNewScatter_Empty(t *testing.T) {
	s := NewScatter(domain.View{}, domain.MeasureTemperature, domain.MeasureVisibility, 10)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "temperature", body["x_field"])
	assert.Equal(t, []any{}, body["x"])
	assert.Equal(t, 0.0, body["x_mean"])
}
