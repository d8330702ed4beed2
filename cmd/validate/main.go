// Command validate performs integrity checks on an accident CSV before it is
// served: the loader accepts it, every record is well formed, and the filter
// and aggregator agree with each other on the whole table.
//
// Usage:
//
//	go run ./cmd/validate -csv data/us_accidents.csv
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"regexp"
	"time"

	"github.com/couchcryptid/accident-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/accident-dashboard/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxErrors caps the errors recorded per phase.
const maxErrors = 25

func (p *phase) full() bool { return len(p.errors) >= maxErrors }

var (
	stateCode = regexp.MustCompile(`^[A-Z]{2}$`)
	fipsCode  = regexp.MustCompile(`^[0-9]{5}$`)
)

func main() {
	path := flag.String("csv", "", "path to the accident CSV")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*path); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Accident Data Integrity Validation ===")
	fmt.Println()

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open CSV: %v\n", err)
		return 1
	}
	records, err := csvfile.Read(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read CSV: %v\n", err)
		return 1
	}

	table, err := domain.NewTable(records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: build table: %v\n", err)
		return 1
	}

	phases := runPhases(records, table)

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d, states: %d, counties: %d\n", table.Len(), len(table.States()), len(table.Counties()))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func runPhases(records []domain.Record, table *domain.Table) []*phase {
	return []*phase{
		validateRecords(records),
		validateCountConservation(table),
		validateFullSelection(table),
		validatePartitions(table),
		validateLogScale(table),
	}
}

// ── Phases ──

// validateRecords checks each record's codes and that it falls on the month grid.
func validateRecords(records []domain.Record) *phase {
	p := &phase{name: "Record fields"}
	for i, r := range records {
		if p.full() {
			break
		}
		row := i + 1
		if !stateCode.MatchString(r.State) {
			p.errorf("record %d: state %q is not a two-letter code", row, r.State)
		}
		if !fipsCode.MatchString(r.County) {
			p.errorf("record %d: county %q is not a five-digit FIPS code", row, r.County)
		}
		if _, ok := domain.MonthIndex(time.Unix(r.Timestamp, 0)); !ok {
			p.errorf("record %d: start time %s is outside the month grid", row, time.Unix(r.Timestamp, 0).UTC().Format(time.DateTime))
		}
		for _, m := range domain.Measures() {
			if v := r.Measure(m); math.IsNaN(v) || math.IsInf(v, 0) {
				p.errorf("record %d: %s is not finite", row, m)
			}
		}
	}
	return p
}

// validateCountConservation checks that every grouping accounts for every row.
func validateCountConservation(table *domain.Table) *phase {
	p := &phase{name: "Count conservation per key"}
	all := table.All()
	for _, key := range domain.GroupKeys() {
		s, err := domain.Aggregate(all, key)
		if err != nil {
			p.errorf("%s: %v", key, err)
			continue
		}
		sum := 0
		for _, g := range s.Groups {
			if g.Count <= 0 {
				p.errorf("%s: group %q has count %d", key, g.Key, g.Count)
			}
			sum += g.Count
		}
		if sum != table.Len() {
			p.errorf("%s: groups sum to %d, table has %d rows", key, sum, table.Len())
		}
	}
	return p
}

// validateFullSelection checks that all states over the whole grid select
// every on-grid row.
func validateFullSelection(table *domain.Table) *phase {
	p := &phase{name: "Full selection returns table"}
	v, err := domain.Filter(table, domain.FullRange(table))
	if err != nil {
		p.errorf("filter: %v", err)
		return p
	}
	if want := onGridRows(table); v.Len() != want {
		p.errorf("full selection returned %d rows, want %d", v.Len(), want)
	}
	return p
}

// validatePartitions checks that single-state selections partition the full
// selection and that widening the month range never loses rows.
func validatePartitions(table *domain.Table) *phase {
	p := &phase{name: "State partition and range growth"}
	want := onGridRows(table)

	byState := 0
	for _, s := range table.States() {
		v, err := domain.Filter(table, domain.Criteria{States: []string{s}, Start: 0, End: domain.MaxMonthIndex, Flag: domain.AnyFlag})
		if err != nil {
			p.errorf("state %s: %v", s, err)
			continue
		}
		byState += v.Len()
	}
	if byState != want {
		p.errorf("single-state selections sum to %d, want %d", byState, want)
	}

	states := table.States()
	prev := 0
	for end := range domain.GridMonths {
		v, err := domain.Filter(table, domain.Criteria{States: states, Start: 0, End: end, Flag: domain.AnyFlag})
		if err != nil {
			p.errorf("range to %s: %v", domain.MonthLabel(end), err)
			continue
		}
		if v.Len() < prev {
			p.errorf("range to %s selects %d rows, fewer than the %d of the previous month", domain.MonthLabel(end), v.Len(), prev)
		}
		prev = v.Len()
	}
	return p
}

// validateLogScale checks that every aggregated group has a finite logarithm.
func validateLogScale(table *domain.Table) *phase {
	p := &phase{name: "Log-scale shading"}
	for _, key := range []domain.GroupKey{domain.GroupCounty, domain.GroupState} {
		s, err := domain.Aggregate(table.All(), key)
		if err != nil {
			p.errorf("%s: %v", key, err)
			continue
		}
		scaled := domain.LogScale(s.Groups)
		if len(scaled) != len(s.Groups) {
			p.errorf("%s: %d groups shaded, want %d", key, len(scaled), len(s.Groups))
		}
		for _, lc := range scaled {
			if math.IsNaN(lc.Log) || math.IsInf(lc.Log, 0) || lc.Log < 0 {
				p.errorf("%s: group %q has log %v", key, lc.Key, lc.Log)
			}
		}
	}
	return p
}

// ── Helpers ──

// onGridRows counts rows between the first instants of the first and last
// grid months, inclusive.
func onGridRows(table *domain.Table) int {
	lastStart, _ := domain.MonthStart(domain.MaxMonthIndex)
	n := 0
	for _, r := range table.All().Records() {
		if _, ok := domain.MonthIndex(time.Unix(r.Timestamp, 0)); ok && r.Timestamp <= lastStart.Unix() {
			n++
		}
	}
	return n
}
