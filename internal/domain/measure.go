package domain

// Measure is a continuous record column that can be plotted on a scatter axis.
type Measure uint8

const (
	MeasureTemperature Measure = iota + 1
	MeasureVisibility
	MeasureWindSpeed
	MeasurePrecipitation
	MeasureDistance
)

var measureNames = map[Measure]string{
	MeasureTemperature:   "temperature",
	MeasureVisibility:    "visibility",
	MeasureWindSpeed:     "wind_speed",
	MeasurePrecipitation: "precipitation",
	MeasureDistance:      "distance",
}

func (m Measure) String() string { return measureNames[m] }

// ParseMeasure resolves a measure name such as "wind_speed".
func ParseMeasure(name string) (Measure, error) {
	for m, n := range measureNames {
		if n == name {
			return m, nil
		}
	}
	return 0, invalidArgument("unknown measure %q", name)
}

// Measures returns every measure in declaration order.
func Measures() []Measure {
	return []Measure{
		MeasureTemperature,
		MeasureVisibility,
		MeasureWindSpeed,
		MeasurePrecipitation,
		MeasureDistance,
	}
}

func (m Measure) MarshalText() ([]byte, error) {
	if _, ok := measureNames[m]; !ok {
		return nil, invalidArgument("unknown measure %d", m)
	}
	return []byte(m.String()), nil
}

func (m *Measure) UnmarshalText(b []byte) error {
	v, err := ParseMeasure(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
