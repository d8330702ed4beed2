// Package render turns filtered and aggregated accident data into
// chart-ready payloads for the front end.
package render

import (
	"fmt"
	"image/color"

	"github.com/aclements/go-gg/palette"

	"github.com/couchcryptid/accident-dashboard/internal/domain"
)

// MapMode selects the choropleth granularity.
type MapMode string

const (
	MapCounty MapMode = "county"
	MapState  MapMode = "state"
)

// ParseMapMode resolves "county" or "state". An empty string selects county.
func ParseMapMode(s string) (MapMode, error) {
	switch MapMode(s) {
	case "", MapCounty:
		return MapCounty, nil
	case MapState:
		return MapState, nil
	default:
		return "", fmt.Errorf("%w: unknown map mode %q", domain.ErrInvalidArgument, s)
	}
}

// GroupKey returns the grouping key the mode aggregates by.
func (m MapMode) GroupKey() domain.GroupKey {
	if m == MapState {
		return domain.GroupState
	}
	return domain.GroupCounty
}

// viridis is the matplotlib Viridis colormap sampled at ten evenly spaced stops.
var viridis = palette.RGBGradient{
	Colors: []color.RGBA{
		{0x44, 0x01, 0x54, 0xff},
		{0x48, 0x28, 0x78, 0xff},
		{0x3e, 0x49, 0x89, 0xff},
		{0x31, 0x68, 0x8e, 0xff},
		{0x26, 0x82, 0x8e, 0xff},
		{0x1f, 0x9e, 0x89, 0xff},
		{0x35, 0xb7, 0x79, 0xff},
		{0x6e, 0xce, 0x58, 0xff},
		{0xb5, 0xde, 0x2b, 0xff},
		{0xfd, 0xe7, 0x25, 0xff},
	},
}

// Choropleth shades map regions by the base-10 logarithm of their accident
// count. Locations are county FIPS codes or state codes depending on Mode.
// Regions without accidents are absent; log(0) is never computed.
type Choropleth struct {
	Mode      MapMode    `json:"mode"`
	Locations []string   `json:"locations"`
	Counts    []int      `json:"counts"`
	LogCounts []float64  `json:"log_counts"`
	Colors    []string   `json:"colors"`
	Range     [2]float64 `json:"range"`
}

// NewChoropleth builds a choropleth payload from a summary grouped by
// mode.GroupKey().
func NewChoropleth(mode MapMode, s domain.Summary) Choropleth {
	scaled := domain.LogScale(s.Groups)
	c := Choropleth{
		Mode:      mode,
		Locations: make([]string, 0, len(scaled)),
		Counts:    make([]int, 0, len(scaled)),
		LogCounts: make([]float64, 0, len(scaled)),
		Colors:    make([]string, 0, len(scaled)),
	}
	if len(scaled) == 0 {
		return c
	}

	lo, hi := scaled[0].Log, scaled[0].Log
	for _, lc := range scaled[1:] {
		lo = min(lo, lc.Log)
		hi = max(hi, lc.Log)
	}
	c.Range = [2]float64{lo, hi}

	for _, lc := range scaled {
		var x float64
		if hi > lo {
			x = (lc.Log - lo) / (hi - lo)
		}
		c.Locations = append(c.Locations, lc.Key)
		c.Counts = append(c.Counts, lc.Count)
		c.LogCounts = append(c.LogCounts, lc.Log)
		c.Colors = append(c.Colors, hexColor(viridis.Map(x)))
	}
	return c
}

func hexColor(c color.Color) string {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}
