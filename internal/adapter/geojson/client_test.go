package geojson

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-dashboard/internal/observability"
)

const (
	contentTypeGeoJSON = "application/geo+json"
	headerContentType  = "Content-Type"
	countiesDoc        = `{"type":"FeatureCollection","features":[` +
		`{"type":"Feature","id":"51059","properties":{"NAME":"Fairfax"},"geometry":{"type":"Polygon","coordinates":[[[-77.5,38.8],[-77.1,38.8],[-77.1,38.9],[-77.5,38.8]]]}},` +
		`{"type":"Feature","id":"06037","properties":{"NAME":"Los Angeles"},"geometry":{"type":"Polygon","coordinates":[[[-118.6,34.0],[-118.1,34.0],[-118.1,34.3],[-118.6,34.0]]]}}]}`
)

func testClient(url string, timeout time.Duration) (*Client, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return NewClient(url, timeout, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics, clockwork.NewRealClock()), metrics
}

func TestClient_Boundaries_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.Header.Get("Accept"), "application/geo+json")
		w.Header().Set(headerContentType, contentTypeGeoJSON)
		_, _ = w.Write([]byte(countiesDoc))
	}))
	defer srv.Close()

	c, metrics := testClient(srv.URL, 5*time.Second)
	doc, err := c.Boundaries(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, countiesDoc, string(doc))
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.BoundaryFetchFailures), 0)
}

func TestClient_Boundaries_RecordsFetchDuration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		clock.Advance(1500 * time.Millisecond)
		_, _ = w.Write([]byte(countiesDoc))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := NewClient(srv.URL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics, clock)
	_, err := c.Boundaries(context.Background())
	require.NoError(t, err)

	var m dto.Metric
	require.NoError(t, metrics.BoundaryFetchDuration.Write(&m))
	assert.Equal(t, uint64(1), m.GetHistogram().GetSampleCount())
	assert.InDelta(t, 1.5, m.GetHistogram().GetSampleSum(), 1e-9)
}

func TestClient_Boundaries_SourceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("404: Not Found"))
	}))
	defer srv.Close()

	c, metrics := testClient(srv.URL, 5*time.Second)
	_, err := c.Boundaries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.BoundaryFetchFailures), 0)
}

func TestClient_Boundaries_InvalidDocument(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"not json", "<html></html>", "decode boundaries"},
		{"wrong type", `{"type":"Feature","features":[]}`, "want FeatureCollection"},
		{"no features", `{"type":"FeatureCollection"}`, "no features array"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := testClient(srv.URL, 5*time.Second)
			_, err := c.Boundaries(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_Boundaries_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := testClient(srv.URL, 50*time.Millisecond)
	_, err := c.Boundaries(context.Background())
	require.Error(t, err)
}

func TestCountFeatures(t *testing.T) {
	n, err := countFeatures([]byte(countiesDoc))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = countFeatures([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = countFeatures([]byte(strings.Repeat("{", 3)))
	require.Error(t, err)
}
