package domain

import "strings"

// Flag is a boolean road-feature column.
type Flag uint8

const (
	FlagAmenity Flag = iota
	FlagBump
	FlagCrossing
	FlagGiveWay
	FlagJunction
	FlagNoExit
	FlagRailway
	FlagRoundabout
	FlagStation
	FlagStop
	FlagTrafficCalming
	FlagTrafficSignal
	FlagTurningLoop

	numFlags
)

// AnyFlag is the flag selection that disables flag filtering.
const AnyFlag = "Any"

// flagNames are the dataset column names, indexed by Flag.
var flagNames = [numFlags]string{
	"Amenity",
	"Bump",
	"Crossing",
	"Give_Way",
	"Junction",
	"No_Exit",
	"Railway",
	"Roundabout",
	"Station",
	"Stop",
	"Traffic_Calming",
	"Traffic_Signal",
	"Turning_Loop",
}

func (f Flag) String() string {
	if f >= numFlags {
		return ""
	}
	return flagNames[f]
}

// ParseFlag resolves a dataset column name such as "Traffic_Signal".
// Matching is case-insensitive.
func ParseFlag(name string) (Flag, error) {
	for i, n := range flagNames {
		if strings.EqualFold(n, name) {
			return Flag(i), nil
		}
	}
	return 0, invalidArgument("unknown flag %q", name)
}

// Flags returns every road-feature flag in column order.
func Flags() []Flag {
	out := make([]Flag, numFlags)
	for i := range out {
		out[i] = Flag(i)
	}
	return out
}

// FlagSet is a bitset over Flag. The zero value has no flags set.
type FlagSet uint16

// NewFlagSet returns a set containing flags.
func NewFlagSet(flags ...Flag) FlagSet {
	var s FlagSet
	for _, f := range flags {
		s = s.With(f)
	}
	return s
}

func (s FlagSet) Has(f Flag) bool { return s&(1<<f) != 0 }

func (s FlagSet) With(f Flag) FlagSet { return s | 1<<f }

// Record is one accident.
type Record struct {
	State     string
	County    string
	Timestamp int64
	Severity  int
	Weather   string
	DayNight  string
	Flags     FlagSet

	Temperature   float64
	Visibility    float64
	WindSpeed     float64
	Precipitation float64
	Distance      float64
}

// Measure returns the continuous measurement m of the record.
func (r Record) Measure(m Measure) float64 {
	switch m {
	case MeasureTemperature:
		return r.Temperature
	case MeasureVisibility:
		return r.Visibility
	case MeasureWindSpeed:
		return r.WindSpeed
	case MeasurePrecipitation:
		return r.Precipitation
	case MeasureDistance:
		return r.Distance
	default:
		return 0
	}
}
