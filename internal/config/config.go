package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Table sources.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// DefaultBoundaryURL is the county GeoJSON keyed by FIPS code.
const DefaultBoundaryURL = "https://raw.githubusercontent.com/plotly/datasets/master/geojson-counties-fips.json"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Accident table source.
	DataSource  string
	DataPath    string
	DatabaseURL string

	// County boundary proxy. An empty URL disables the endpoint.
	BoundaryURL     string
	BoundaryTimeout time.Duration

	ScatterMaxRows int
	CacheSize      int

	// Optional snapshot sink.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	boundaryTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("BOUNDARY_TIMEOUT", "10s"))
	if err != nil || boundaryTimeout <= 0 {
		return nil, errors.New("invalid BOUNDARY_TIMEOUT")
	}

	scatterMaxRows, err := parsePositiveInt("SCATTER_MAX_ROWS", 100_000, false)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("CACHE_SIZE", 256, true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataSource:  sharedcfg.EnvOrDefault("DATA_SOURCE", SourceCSV),
		DataPath:    sharedcfg.EnvOrDefault("DATA_PATH", "data/us_accidents.csv"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		BoundaryURL:     os.Getenv("BOUNDARY_URL"),
		BoundaryTimeout: boundaryTimeout,

		ScatterMaxRows: scatterMaxRows,
		CacheSize:      cacheSize,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "dashboard-snapshots"),
	}
	if _, set := os.LookupEnv("BOUNDARY_URL"); !set {
		cfg.BoundaryURL = DefaultBoundaryURL
	}

	switch cfg.DataSource {
	case SourceCSV:
		if cfg.DataPath == "" {
			return nil, errors.New("DATA_PATH is required when DATA_SOURCE is csv")
		}
	case SourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when DATA_SOURCE is postgres")
		}
	default:
		return nil, fmt.Errorf("invalid DATA_SOURCE %q: want csv or postgres", cfg.DataSource)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// parsePositiveInt reads an integer variable. Zero is accepted only when
// allowZero is set.
func parsePositiveInt(name string, def int, allowZero bool) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || (n == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return n, nil
}
