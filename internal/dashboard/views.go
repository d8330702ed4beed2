package dashboard

import (
	"context"

	"github.com/couchcryptid/accident-dashboard/internal/domain"
	"github.com/couchcryptid/accident-dashboard/internal/render"
)

func (s *Service) renderMap(_ context.Context, rows domain.View, set Settings) (Payload, error) {
	summary, err := domain.Aggregate(rows, set.MapMode.GroupKey())
	if err != nil {
		return Payload{}, err
	}
	m := render.NewChoropleth(set.MapMode, summary)
	return Payload{Map: &m}, nil
}

func (s *Service) renderPie(_ context.Context, rows domain.View, set Settings) (Payload, error) {
	summary, err := domain.Aggregate(rows, set.PieKey)
	if err != nil {
		return Payload{}, err
	}
	p := render.NewPie(summary)
	return Payload{Pie: &p}, nil
}

func (s *Service) renderScatter(_ context.Context, rows domain.View, set Settings) (Payload, error) {
	sc := render.NewScatter(rows, set.ScatterX, set.ScatterY, s.scatterMaxRows)
	return Payload{Scatter: &sc}, nil
}

// renderOverview redraws every panel from a single filter pass.
func (s *Service) renderOverview(ctx context.Context, rows domain.View, set Settings) (Payload, error) {
	m, err := s.renderMap(ctx, rows, set)
	if err != nil {
		return Payload{}, err
	}
	p, err := s.renderPie(ctx, rows, set)
	if err != nil {
		return Payload{}, err
	}
	sc, err := s.renderScatter(ctx, rows, set)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Map: m.Map, Pie: p.Pie, Scatter: sc.Scatter}, nil
}
