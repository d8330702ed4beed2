package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/accident-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/accident-dashboard/internal/adapter/geojson"
	httpadapter "github.com/couchcryptid/accident-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/accident-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/accident-dashboard/internal/adapter/postgres"
	"github.com/couchcryptid/accident-dashboard/internal/config"
	"github.com/couchcryptid/accident-dashboard/internal/dashboard"
	"github.com/couchcryptid/accident-dashboard/internal/domain"
	"github.com/couchcryptid/accident-dashboard/internal/observability"
)

// boundaryTTL is how long a downloaded boundary document is served from memory.
const boundaryTTL = 24 * time.Hour

func main() {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	table, err := loadTable(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to load accident table", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}
	logger.Info("accident table loaded",
		"source", cfg.DataSource,
		"rows", table.Len(),
		"states", len(table.States()),
		"counties", len(table.Counties()),
		"duration", time.Since(start),
	)

	opts := dashboard.Options{
		ScatterMaxRows: cfg.ScatterMaxRows,
		CacheSize:      cfg.CacheSize,
		Clock:          clockwork.NewRealClock(),
	}

	// Initialize snapshot sink (feature-flagged via KAFKA_ENABLED).
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts.Publisher = writer
		logger.Info("snapshot publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	// Initialize boundary proxy (disabled by an empty BOUNDARY_URL).
	var boundaries httpadapter.BoundarySource
	if cfg.BoundaryURL != "" {
		client := geojson.NewClient(cfg.BoundaryURL, cfg.BoundaryTimeout, logger, metrics, opts.Clock)
		boundaries = geojson.NewCachedSource(client, boundaryTTL, opts.Clock)
		logger.Info("boundary proxy enabled", "url", cfg.BoundaryURL, "timeout", cfg.BoundaryTimeout)
	} else {
		logger.Info("boundary proxy disabled")
	}

	svc := dashboard.New(table, logger, metrics, opts)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, boundaries, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func loadTable(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*domain.Table, error) {
	switch cfg.DataSource {
	case config.SourcePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return postgres.Load(ctx, db)
	default:
		return csvfile.Load(cfg.DataPath)
	}
}
