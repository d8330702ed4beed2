package render

import (
	"github.com/aclements/go-moremath/stats"

	"github.com/couchcryptid/accident-dashboard/internal/domain"
)

// DefaultScatterMaxRows caps the number of plotted points.
const DefaultScatterMaxRows = 100_000

// Scatter plots two measurements of individual accidents, colored by
// severity. Total counts the filtered rows; when it exceeds the cap the
// points are an evenly spaced sample and Sampled is set. Bounds and means
// describe the plotted points and are zero for an empty plot.
type Scatter struct {
	XField   domain.Measure `json:"x_field"`
	YField   domain.Measure `json:"y_field"`
	X        []float64      `json:"x"`
	Y        []float64      `json:"y"`
	Severity []int          `json:"severity"`
	Total    int            `json:"total"`
	Sampled  bool           `json:"sampled"`
	XBounds  [2]float64     `json:"x_bounds"`
	YBounds  [2]float64     `json:"y_bounds"`
	XMean    float64        `json:"x_mean"`
	YMean    float64        `json:"y_mean"`
}

// NewScatter builds a scatter payload from raw filtered rows. maxRows <= 0
// disables the cap.
func NewScatter(v domain.View, x, y domain.Measure, maxRows int) Scatter {
	points := v.Sample(maxRows)
	s := Scatter{
		XField:   x,
		YField:   y,
		X:        points.Measure(x),
		Y:        points.Measure(y),
		Severity: points.Severities(),
		Total:    v.Len(),
		Sampled:  points.Len() < v.Len(),
	}
	if len(s.X) == 0 {
		return s
	}

	s.XBounds[0], s.XBounds[1] = stats.Bounds(s.X)
	s.YBounds[0], s.YBounds[1] = stats.Bounds(s.Y)
	s.XMean = stats.Mean(s.X)
	s.YMean = stats.Mean(s.Y)
	return s
}
