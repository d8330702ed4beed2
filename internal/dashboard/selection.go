package dashboard

import (
	"fmt"
	"time"

	"github.com/couchcryptid/accident-dashboard/internal/domain"
	"github.com/couchcryptid/accident-dashboard/internal/render"
)

// ViewName identifies a dashboard panel.
type ViewName string

const (
	ViewMap      ViewName = "map"
	ViewPie      ViewName = "pie"
	ViewScatter  ViewName = "scatter"
	ViewOverview ViewName = "overview"
)

// Defaults applied to empty selection fields.
const (
	DefaultPieKey   = "weather"
	DefaultScatterX = "temperature"
	DefaultScatterY = "visibility"
)

// Selection is the widget state sent by the front end for one redraw.
// DateRange holds inclusive month-grid indices.
type Selection struct {
	States    []string `json:"states"`
	DateRange [2]int   `json:"date_range"`
	Flag      string   `json:"flag"`
	MapMode   string   `json:"map_mode"`
	PieKey    string   `json:"pie_key"`
	ScatterX  string   `json:"scatter_x"`
	ScatterY  string   `json:"scatter_y"`
}

// Criteria returns the filter part of the selection.
func (s Selection) Criteria() domain.Criteria {
	flag := s.Flag
	if flag == "" {
		flag = domain.AnyFlag
	}
	return domain.Criteria{
		States: s.States,
		Start:  s.DateRange[0],
		End:    s.DateRange[1],
		Flag:   flag,
	}
}

// Settings are the presentation choices of a selection, parsed against
// their closed enumerations.
type Settings struct {
	MapMode  render.MapMode
	PieKey   domain.GroupKey
	ScatterX domain.Measure
	ScatterY domain.Measure
}

// Settings parses the presentation fields, substituting defaults for empty
// ones. Unknown names fail with domain.ErrInvalidArgument.
func (s Selection) Settings() (Settings, error) {
	var (
		set Settings
		err error
	)
	if set.MapMode, err = render.ParseMapMode(s.MapMode); err != nil {
		return Settings{}, err
	}
	if set.PieKey, err = domain.ParseGroupKey(orDefault(s.PieKey, DefaultPieKey)); err != nil {
		return Settings{}, err
	}
	if set.ScatterX, err = domain.ParseMeasure(orDefault(s.ScatterX, DefaultScatterX)); err != nil {
		return Settings{}, err
	}
	if set.ScatterY, err = domain.ParseMeasure(orDefault(s.ScatterY, DefaultScatterY)); err != nil {
		return Settings{}, err
	}
	return set, nil
}

func (set Settings) key() string {
	return fmt.Sprintf("%s|%s|%s|%s", set.MapMode, set.PieKey, set.ScatterX, set.ScatterY)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Payload is the response to one selection. Only the panels of the
// requested view are set.
type Payload struct {
	View        ViewName           `json:"view"`
	Criteria    string             `json:"criteria"`
	Rows        int                `json:"rows"`
	GeneratedAt time.Time          `json:"generated_at"`
	Map         *render.Choropleth `json:"map,omitempty"`
	Pie         *render.Pie        `json:"pie,omitempty"`
	Scatter     *render.Scatter    `json:"scatter,omitempty"`
}

// Catalog lists the values each selection widget may take.
type Catalog struct {
	States      []string `json:"states"`
	Flags       []string `json:"flags"`
	GroupKeys   []string `json:"group_keys"`
	Measures    []string `json:"measures"`
	MapModes    []string `json:"map_modes"`
	MonthLabels []string `json:"month_labels"`
	Views       []string `json:"views"`
}
