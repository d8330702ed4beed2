// Package csvfile loads the accident table from a CSV export of the US
// accidents dataset.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/accident-dashboard/internal/domain"
)

// Column names read from the header row. Extra columns are ignored.
const (
	ColState         = "State"
	ColCounty        = "County_FIPS"
	ColStartTime     = "Start_Time"
	ColSeverity      = "Severity"
	ColWeather       = "Weather_Condition"
	ColDayNight      = "Sunrise_Sunset"
	ColTemperature   = "Temperature(F)"
	ColVisibility    = "Visibility(mi)"
	ColWindSpeed     = "Wind_Speed(mph)"
	ColPrecipitation = "Precipitation(in)"
	ColDistance      = "Distance(mi)"
)

// timeLayout matches Start_Time with or without fractional seconds.
const timeLayout = "2006-01-02 15:04:05.999999999"

var measureColumns = map[domain.Measure]string{
	domain.MeasureTemperature:   ColTemperature,
	domain.MeasureVisibility:    ColVisibility,
	domain.MeasureWindSpeed:     ColWindSpeed,
	domain.MeasurePrecipitation: ColPrecipitation,
	domain.MeasureDistance:      ColDistance,
}

// Header returns every column the loader requires, in a stable order.
func Header() []string {
	cols := []string{ColState, ColCounty, ColStartTime, ColSeverity, ColWeather, ColDayNight}
	for _, f := range domain.Flags() {
		cols = append(cols, f.String())
	}
	for _, m := range domain.Measures() {
		cols = append(cols, measureColumns[m])
	}
	return cols
}

// Load reads the CSV file at path into a table.
func Load(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open accident csv: %w", err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.NewTable(records)
}

// Read parses accident records from r. The first row must be a header
// naming every column in Header.
func Read(r io.Reader) ([]domain.Record, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var records []domain.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := cols.parse(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// columns holds the position of each required column in a row.
type columns struct {
	state, county, start, severity, weather, dayNight int
	flags                                             map[domain.Flag]int
	measures                                          map[domain.Measure]int
}

func indexColumns(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.TrimSpace(name)] = i
	}
	var missing []string
	find := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}

	c := columns{
		state:    find(ColState),
		county:   find(ColCounty),
		start:    find(ColStartTime),
		severity: find(ColSeverity),
		weather:  find(ColWeather),
		dayNight: find(ColDayNight),
		flags:    make(map[domain.Flag]int),
		measures: make(map[domain.Measure]int, len(measureColumns)),
	}
	for _, f := range domain.Flags() {
		c.flags[f] = find(f.String())
	}
	for _, m := range domain.Measures() {
		c.measures[m] = find(measureColumns[m])
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return c, nil
}

func (c columns) parse(row []string) (domain.Record, error) {
	start, err := ParseStartTime(row[c.start])
	if err != nil {
		return domain.Record{}, err
	}
	severity, err := strconv.Atoi(strings.TrimSpace(row[c.severity]))
	if err != nil {
		return domain.Record{}, fmt.Errorf("%s: %w", ColSeverity, err)
	}

	rec := domain.Record{
		State:     strings.TrimSpace(row[c.state]),
		County:    NormalizeFIPS(row[c.county]),
		Timestamp: start.Unix(),
		Severity:  severity,
		Weather:   strings.TrimSpace(row[c.weather]),
		DayNight:  strings.TrimSpace(row[c.dayNight]),
	}
	for f, i := range c.flags {
		set, err := parseBool(row[i])
		if err != nil {
			return domain.Record{}, fmt.Errorf("%s: %w", f, err)
		}
		if set {
			rec.Flags = rec.Flags.With(f)
		}
	}
	for m, i := range c.measures {
		v, err := parseFloat(row[i])
		if err != nil {
			return domain.Record{}, fmt.Errorf("%s: %w", measureColumns[m], err)
		}
		switch m {
		case domain.MeasureTemperature:
			rec.Temperature = v
		case domain.MeasureVisibility:
			rec.Visibility = v
		case domain.MeasureWindSpeed:
			rec.WindSpeed = v
		case domain.MeasurePrecipitation:
			rec.Precipitation = v
		case domain.MeasureDistance:
			rec.Distance = v
		}
	}
	return rec, nil
}

// ParseStartTime accepts Unix seconds or a "YYYY-MM-DD HH:MM:SS" wall time,
// read as UTC.
func ParseStartTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%s: empty", ColStartTime)
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", ColStartTime, err)
	}
	return t, nil
}

// NormalizeFIPS left-pads numeric county codes to five digits, so 6037
// becomes 06037 as in the boundary GeoJSON.
func NormalizeFIPS(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || len(s) >= 5 {
		return s
	}
	if _, err := strconv.Atoi(s); err != nil {
		return s
	}
	return strings.Repeat("0", 5-len(s)) + s
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
