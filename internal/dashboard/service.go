package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/accident-dashboard/internal/cache"
	"github.com/couchcryptid/accident-dashboard/internal/domain"
	"github.com/couchcryptid/accident-dashboard/internal/observability"
	"github.com/couchcryptid/accident-dashboard/internal/render"
)

// ErrUnknownView is returned for a view with no registered handler.
var ErrUnknownView = errors.New("unknown view")

// HandlerFunc renders the panels of one view from the rows matching a
// selection. It sets the panel fields of the returned Payload; the Service
// fills in the rest.
type HandlerFunc func(ctx context.Context, rows domain.View, set Settings) (Payload, error)

// Publisher receives every payload the service produces.
type Publisher interface {
	Publish(ctx context.Context, p Payload) error
}

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	// ScatterMaxRows caps scatter points. Defaults to render.DefaultScatterMaxRows.
	ScatterMaxRows int
	// CacheSize is the number of payloads memoized by selection. Zero disables the cache.
	CacheSize int
	// Publisher, when set, receives each payload after it is produced.
	Publisher Publisher
	// Clock stamps payloads and times requests. Defaults to the real clock.
	Clock clockwork.Clock
}

// Service runs one filter, aggregate and render cycle per selection against
// an immutable accident table. Handlers are registered explicitly per view.
type Service struct {
	table          *domain.Table
	handlers       map[ViewName]HandlerFunc
	cache          *cache.LRU[string, Payload]
	publisher      Publisher
	clock          clockwork.Clock
	logger         *slog.Logger
	metrics        *observability.Metrics
	scatterMaxRows int
}

// New creates a Service over table with the map, pie, scatter, and overview
// views registered.
func New(table *domain.Table, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Service {
	if opts.ScatterMaxRows <= 0 {
		opts.ScatterMaxRows = render.DefaultScatterMaxRows
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	s := &Service{
		table:          table,
		handlers:       make(map[ViewName]HandlerFunc),
		cache:          cache.NewLRU[string, Payload](opts.CacheSize),
		publisher:      opts.Publisher,
		clock:          opts.Clock,
		logger:         logger,
		metrics:        metrics,
		scatterMaxRows: opts.ScatterMaxRows,
	}
	metrics.TableRows.Set(float64(table.Len()))

	s.Register(ViewMap, s.renderMap)
	s.Register(ViewPie, s.renderPie)
	s.Register(ViewScatter, s.renderScatter)
	s.Register(ViewOverview, s.renderOverview)
	return s
}

// Register binds a handler to a view, replacing any existing one. Register
// must not be called concurrently with Handle.
func (s *Service) Register(name ViewName, h HandlerFunc) {
	s.handlers[name] = h
}

// CheckReadiness reports whether the accident table is loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.table == nil {
		return errors.New("accident table not loaded")
	}
	return nil
}

// Catalog lists the values accepted by each selection field.
func (s *Service) Catalog() Catalog {
	flags := []string{domain.AnyFlag}
	for _, f := range domain.Flags() {
		flags = append(flags, f.String())
	}
	keys := make([]string, 0, len(domain.GroupKeys()))
	for _, k := range domain.GroupKeys() {
		keys = append(keys, k.String())
	}
	measures := make([]string, 0, len(domain.Measures()))
	for _, m := range domain.Measures() {
		measures = append(measures, m.String())
	}
	views := make([]string, 0, len(s.handlers))
	for v := range s.handlers {
		views = append(views, string(v))
	}
	slices.Sort(views)

	return Catalog{
		States:      s.table.States(),
		Flags:       flags,
		GroupKeys:   keys,
		Measures:    measures,
		MapModes:    []string{string(render.MapCounty), string(render.MapState)},
		MonthLabels: domain.MonthLabels(),
		Views:       views,
	}
}

// Handle answers one selection for the named view. Invalid selections fail
// with domain.ErrInvalidArgument; unregistered views with ErrUnknownView.
func (s *Service) Handle(ctx context.Context, name ViewName, sel Selection) (Payload, error) {
	start := s.clock.Now()
	p, err := s.handle(ctx, name, sel)

	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, ErrUnknownView):
		outcome = "invalid"
	case err != nil:
		outcome = "error"
	}
	s.metrics.Requests.WithLabelValues(string(name), outcome).Inc()
	if err != nil {
		s.logger.Debug("selection rejected", "view", name, "error", err)
		return Payload{}, err
	}
	s.metrics.RequestDuration.WithLabelValues(string(name)).Observe(s.clock.Since(start).Seconds())
	return p, nil
}

func (s *Service) handle(ctx context.Context, name ViewName, sel Selection) (Payload, error) {
	h, ok := s.handlers[name]
	if !ok {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	set, err := sel.Settings()
	if err != nil {
		return Payload{}, err
	}
	criteria := sel.Criteria()

	cacheKey := string(name) + "|" + criteria.Key() + "|" + set.key()
	if p, ok := s.cache.Get(cacheKey); ok {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return p, nil
	}
	s.metrics.CacheLookups.WithLabelValues("miss").Inc()

	rows, err := domain.Filter(s.table, criteria)
	if err != nil {
		return Payload{}, err
	}
	s.metrics.FilteredRows.Observe(float64(rows.Len()))

	p, err := h(ctx, rows, set)
	if err != nil {
		return Payload{}, fmt.Errorf("render %s: %w", name, err)
	}
	p.View = name
	p.Criteria = criteria.Key()
	p.Rows = rows.Len()
	p.GeneratedAt = s.clock.Now().UTC()

	s.cache.Put(cacheKey, p)
	s.publish(ctx, p)
	return p, nil
}

// publish forwards p to the publisher. Failures are logged and counted but
// never fail the request.
func (s *Service) publish(ctx context.Context, p Payload) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, p); err != nil {
		s.metrics.SnapshotPublishErrors.Inc()
		s.logger.Warn("publish snapshot failed", "view", p.View, "criteria", p.Criteria, "error", err)
		return
	}
	s.metrics.SnapshotsPublished.Inc()
}
