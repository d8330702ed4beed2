// Package geojson fetches the county boundary document the choropleth is
// drawn on. The document is passed through untouched; only its envelope is
// checked.
package geojson

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	geo "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/accident-dashboard/internal/observability"
)

// maxDocumentBytes bounds the downloaded document. The plotly county file is
// about 3 MB.
const maxDocumentBytes = 64 << 20

// Client downloads a GeoJSON FeatureCollection over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
	clock      clockwork.Clock
}

// NewClient creates a boundary client for url. clock times each fetch.
func NewClient(url string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
		clock:   clock,
	}
}

// Boundaries downloads the document and checks that it is a FeatureCollection.
func (c *Client) Boundaries(ctx context.Context) ([]byte, error) {
	start := c.clock.Now()
	doc, err := c.fetch(ctx)
	if err != nil {
		c.metrics.BoundaryFetchFailures.Inc()
		return nil, err
	}
	c.metrics.BoundaryFetchDuration.Observe(c.clock.Since(start).Seconds())
	return doc, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boundary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("boundary source error: status %d: %s", resp.StatusCode, body)
	}

	doc, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	if len(doc) > maxDocumentBytes {
		return nil, fmt.Errorf("boundary document exceeds %d bytes", maxDocumentBytes)
	}

	n, err := countFeatures(doc)
	if err != nil {
		return nil, err
	}
	c.logger.Info("boundaries fetched", "url", c.url, "features", n, "bytes", len(doc))
	return doc, nil
}

func countFeatures(doc []byte) (int, error) {
	fc, err := geo.UnmarshalFeatureCollection(doc)
	if err != nil {
		return 0, fmt.Errorf("decode boundaries: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return 0, fmt.Errorf("boundary document type %q, want FeatureCollection", fc.Type)
	}
	if fc.Features == nil {
		return 0, errors.New("boundary document has no features array")
	}
	return len(fc.Features), nil
}
