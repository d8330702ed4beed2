// Command genmock writes a deterministic synthetic accident CSV in the
// layout the dashboard loads, then reads it back through the real loader
// and aggregator and prints the numbers tests and demos assert on.
//
// Usage:
//
//	go run ./cmd/genmock -out data/us_accidents.csv -rows 50000 -seed 7
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aclements/go-moremath/stats"

	"github.com/couchcryptid/accident-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/accident-dashboard/internal/domain"
)

// stateCounties lists a few real county FIPS codes per state.
var stateCounties = map[string][]string{
	"CA": {"06037", "06073", "06059", "06065", "06071"},
	"TX": {"48201", "48113", "48029", "48453", "48439"},
	"FL": {"12086", "12011", "12095", "12057"},
	"VA": {"51059", "51107", "51153", "51810"},
	"NY": {"36061", "36047", "36081", "36005"},
	"OH": {"39035", "39049", "39061"},
	"WA": {"53033", "53053", "53061"},
	"MN": {"27053", "27123"},
	"AZ": {"04013", "04019"},
	"WY": {"56021"},
}

var states = []string{"CA", "TX", "FL", "VA", "NY", "OH", "WA", "MN", "AZ", "WY"}

// stateWeights skews volume toward large states.
var stateWeights = []int{30, 22, 15, 8, 8, 5, 5, 3, 3, 1}

var weather = []string{"Clear", "Fair", "Cloudy", "Overcast", "Light Rain", "Rain", "Fog", "Light Snow", "Haze", ""}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the accident CSV")
	rows := flag.Int("rows", 10000, "number of accidents to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" || *rows <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -rows > 0")
	}

	if err := writeCSV(*out, *rows, *seed); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d accidents: %s", *rows, *out)

	table, err := csvfile.Load(*out)
	if err != nil {
		return fmt.Errorf("reloading fixture: %w", err)
	}
	return printStats(table)
}

func writeCSV(path string, n int, seed uint64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	w := csv.NewWriter(f)
	header := csvfile.Header()
	if err := w.Write(header); err != nil {
		return err
	}
	for range n {
		if err := w.Write(randomRow(rng, header)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func randomRow(rng *rand.Rand, header []string) []string {
	state := pickWeighted(rng, states, stateWeights)
	counties := stateCounties[state]
	month := rng.IntN(domain.GridMonths)
	start, _ := domain.MonthStart(month)
	ts := start.Add(time.Duration(rng.Int64N(int64(28 * 24 * time.Hour))))
	hour := ts.Hour()

	dayNight := "Day"
	if hour < 6 || hour >= 19 {
		dayNight = "Night"
	}
	temp := 30 + 50*rng.Float64()
	if state == "MN" || state == "WY" {
		temp -= 20
	}

	values := map[string]string{
		csvfile.ColState:         state,
		csvfile.ColCounty:        counties[rng.IntN(len(counties))],
		csvfile.ColStartTime:     ts.Format(time.DateTime),
		csvfile.ColSeverity:      strconv.Itoa(pickWeighted(rng, []int{1, 2, 3, 4}, []int{5, 70, 20, 5})),
		csvfile.ColWeather:       weather[rng.IntN(len(weather))],
		csvfile.ColDayNight:      dayNight,
		csvfile.ColTemperature:   strconv.FormatFloat(temp, 'f', 1, 64),
		csvfile.ColVisibility:    strconv.FormatFloat(min(10, 0.5+rng.ExpFloat64()*6), 'f', 1, 64),
		csvfile.ColWindSpeed:     strconv.FormatFloat(rng.Float64()*25, 'f', 1, 64),
		csvfile.ColPrecipitation: strconv.FormatFloat(rng.ExpFloat64()*0.05, 'f', 2, 64),
		csvfile.ColDistance:      strconv.FormatFloat(rng.ExpFloat64()*0.6, 'f', 3, 64),
	}
	for _, f := range domain.Flags() {
		values[f.String()] = strconv.FormatBool(rng.Float64() < flagRate(f))
	}

	row := make([]string, len(header))
	for i, col := range header {
		row[i] = values[col]
	}
	return row
}

func flagRate(f domain.Flag) float64 {
	switch f {
	case domain.FlagTrafficSignal:
		return 0.15
	case domain.FlagJunction, domain.FlagCrossing:
		return 0.08
	case domain.FlagTurningLoop:
		return 0
	default:
		return 0.02
	}
}

func pickWeighted[T any](rng *rand.Rand, items []T, weights []int) T {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := rng.IntN(total)
	for i, w := range weights {
		if r < w {
			return items[i]
		}
		r -= w
	}
	return items[len(items)-1]
}

func printStats(table *domain.Table) error {
	all := table.All()

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", table.Len())

	for _, key := range []domain.GroupKey{domain.GroupState, domain.GroupSeverity, domain.GroupDayNight, domain.GroupWeather} {
		s, err := domain.Aggregate(all, key)
		if err != nil {
			return err
		}
		fmt.Printf("By %s (%d):", key, len(s.Groups))
		for _, g := range s.Groups {
			label := g.Key
			if label == "" {
				label = "<empty>"
			}
			fmt.Printf(" %s=%d", label, g.Count)
		}
		fmt.Println()
	}

	for _, m := range domain.Measures() {
		xs := all.Measure(m)
		if len(xs) == 0 {
			continue
		}
		lo, hi := stats.Bounds(xs)
		fmt.Printf("%s: min=%.2f max=%.2f mean=%.2f\n", m, lo, hi, stats.Mean(xs))
	}

	printSelection(table, domain.Criteria{States: []string{"VA"}, Start: 0, End: 11, Flag: domain.AnyFlag})
	printSelection(table, domain.Criteria{States: []string{"CA", "TX"}, Start: 24, End: 47, Flag: "Traffic_Signal"})
	return nil
}

func printSelection(table *domain.Table, c domain.Criteria) {
	v, err := domain.Filter(table, c)
	if err != nil {
		fmt.Printf("%s: %v\n", c.Key(), err)
		return
	}
	fmt.Printf("Selection %s (%s..%s): %d\n", c.Key(), domain.MonthLabel(c.Start), domain.MonthLabel(c.End), v.Len())
}
