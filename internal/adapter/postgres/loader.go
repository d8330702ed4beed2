// Package postgres loads the accident table from a PostgreSQL "accidents"
// table through the pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/couchcryptid/accident-dashboard/internal/domain"
)

// Query selects every accident. Flag columns are the lower-cased flag names.
var Query = buildQuery()

func buildQuery() string {
	cols := []string{
		"state",
		"county_fips",
		"EXTRACT(EPOCH FROM start_time)::bigint",
		"severity",
		"weather_condition",
		"sunrise_sunset",
	}
	for _, f := range domain.Flags() {
		cols = append(cols, strings.ToLower(f.String()))
	}
	cols = append(cols, "temperature_f", "visibility_mi", "wind_speed_mph", "precipitation_in", "distance_mi")
	return "SELECT " + strings.Join(cols, ", ") + " FROM accidents"
}

// Open opens a connection pool for dsn and waits until the database answers
// a ping or ctx is done.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := WaitReady(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// WaitReady pings db with exponential backoff, starting at 200ms and capped
// at 5s, until it succeeds or ctx is done.
func WaitReady(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("postgres not ready: %w", err)
		}
		logger.Warn("postgres ping failed, retrying", "error", err, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			return fmt.Errorf("postgres not ready: %w", err)
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

// Load reads the accidents table into memory.
func Load(ctx context.Context, db *sql.DB) (*domain.Table, error) {
	rows, err := db.QueryContext(ctx, Query)
	if err != nil {
		return nil, fmt.Errorf("query accidents: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan accident %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accidents: %w", err)
	}
	return domain.NewTable(records)
}

func scanRecord(rows *sql.Rows) (domain.Record, error) {
	var (
		rec               domain.Record
		weather, dayNight sql.NullString
		flags             = make([]sql.NullBool, len(domain.Flags()))
		measures          = make([]sql.NullFloat64, len(domain.Measures()))
	)
	dest := []any{&rec.State, &rec.County, &rec.Timestamp, &rec.Severity, &weather, &dayNight}
	for i := range flags {
		dest = append(dest, &flags[i])
	}
	for i := range measures {
		dest = append(dest, &measures[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return domain.Record{}, err
	}

	rec.Weather = weather.String
	rec.DayNight = dayNight.String
	for i, f := range domain.Flags() {
		if flags[i].Valid && flags[i].Bool {
			rec.Flags = rec.Flags.With(f)
		}
	}
	rec.Temperature = measures[0].Float64
	rec.Visibility = measures[1].Float64
	rec.WindSpeed = measures[2].Float64
	rec.Precipitation = measures[3].Float64
	rec.Distance = measures[4].Float64
	return rec, nil
}
