// Package chart is the boundary between lesson selection and the chart
// engine. The selection side only pushes a dataset, asks for a viewport fit
// and forwards container resizes; everything else belongs to the engine.
package chart

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/vanderheijden86/candlecourse/pkg/model"
)

// Engine construction errors. Both leave the session in no-chart mode.
var (
	ErrInvalidColor = errors.New("invalid chart color")
	ErrDisabled     = errors.New("chart engine disabled")
)

// Adapter is the narrow interface the selection controller drives.
type Adapter interface {
	// SetSeries replaces the displayed dataset wholesale.
	SetSeries(points []model.Point)
	// FitViewport rescales the visible time range to the dataset extent.
	FitViewport()
	// Resize forwards a container size change to the engine.
	Resize(width, height int)
}

// LayoutOptions style the chart background and labels.
type LayoutOptions struct {
	Background string `yaml:"background" json:"background"`
	TextColor  string `yaml:"text_color" json:"text_color"`
}

// GridOptions color the grid lines.
type GridOptions struct {
	VertLines string `yaml:"vert_lines" json:"vert_lines"`
	HorzLines string `yaml:"horz_lines" json:"horz_lines"`
}

// TimeScaleOptions style the time axis.
type TimeScaleOptions struct {
	BorderColor string `yaml:"border_color" json:"border_color"`
}

// SeriesOptions color bullish (up) and bearish (down) candles.
type SeriesOptions struct {
	UpColor         string `yaml:"up_color" json:"up_color"`
	DownColor       string `yaml:"down_color" json:"down_color"`
	BorderUpColor   string `yaml:"border_up_color" json:"border_up_color"`
	BorderDownColor string `yaml:"border_down_color" json:"border_down_color"`
	WickUpColor     string `yaml:"wick_up_color" json:"wick_up_color"`
	WickDownColor   string `yaml:"wick_down_color" json:"wick_down_color"`
}

// Options is the engine configuration. It is purely stylistic.
type Options struct {
	Layout    LayoutOptions    `yaml:"layout" json:"layout"`
	Grid      GridOptions      `yaml:"grid" json:"grid"`
	TimeScale TimeScaleOptions `yaml:"time_scale" json:"time_scale"`
	Series    SeriesOptions    `yaml:"series" json:"series"`

	// Disabled makes construction fail with ErrDisabled.
	Disabled bool `yaml:"-" json:"-"`
}

// DefaultOptions returns the dark trading palette.
func DefaultOptions() Options {
	return Options{
		Layout:    LayoutOptions{Background: "#131722", TextColor: "#d1d4dc"},
		Grid:      GridOptions{VertLines: "#363a45", HorzLines: "#363a45"},
		TimeScale: TimeScaleOptions{BorderColor: "#363a45"},
		Series: SeriesOptions{
			UpColor:         "#26a69a",
			DownColor:       "#ef5350",
			BorderUpColor:   "#26a69a",
			BorderDownColor: "#ef5350",
			WickUpColor:     "#26a69a",
			WickDownColor:   "#ef5350",
		},
	}
}

// WithColors overrides the main colors. Empty arguments keep the current
// value; up and down also set the matching border and wick colors.
func (o Options) WithColors(background, text, grid, up, down string) Options {
	if background != "" {
		o.Layout.Background = background
	}
	if text != "" {
		o.Layout.TextColor = text
	}
	if grid != "" {
		o.Grid.VertLines = grid
		o.Grid.HorzLines = grid
		o.TimeScale.BorderColor = grid
	}
	if up != "" {
		o.Series.UpColor = up
		o.Series.BorderUpColor = up
		o.Series.WickUpColor = up
	}
	if down != "" {
		o.Series.DownColor = down
		o.Series.BorderDownColor = down
		o.Series.WickDownColor = down
	}
	return o
}

// Palette is the parsed form of Options.
type Palette struct {
	Background colorful.Color
	Text       colorful.Color
	GridV      colorful.Color
	GridH      colorful.Color
	Border     colorful.Color
	Up         colorful.Color
	Down       colorful.Color
	BorderUp   colorful.Color
	BorderDown colorful.Color
	WickUp     colorful.Color
	WickDown   colorful.Color
}

// Palette parses every color, reporting the first invalid one.
func (o Options) Palette() (Palette, error) {
	var p Palette
	fields := []struct {
		name string
		hex  string
		dst  *colorful.Color
	}{
		{"layout.background", o.Layout.Background, &p.Background},
		{"layout.text_color", o.Layout.TextColor, &p.Text},
		{"grid.vert_lines", o.Grid.VertLines, &p.GridV},
		{"grid.horz_lines", o.Grid.HorzLines, &p.GridH},
		{"time_scale.border_color", o.TimeScale.BorderColor, &p.Border},
		{"series.up_color", o.Series.UpColor, &p.Up},
		{"series.down_color", o.Series.DownColor, &p.Down},
		{"series.border_up_color", o.Series.BorderUpColor, &p.BorderUp},
		{"series.border_down_color", o.Series.BorderDownColor, &p.BorderDown},
		{"series.wick_up_color", o.Series.WickUpColor, &p.WickUp},
		{"series.wick_down_color", o.Series.WickDownColor, &p.WickDown},
	}
	for _, f := range fields {
		c, err := colorful.Hex(f.hex)
		if err != nil {
			return Palette{}, fmt.Errorf("%s %q: %w", f.name, f.hex, ErrInvalidColor)
		}
		*f.dst = c
	}
	return p, nil
}

// Validate reports whether the engine could be built from o.
func (o Options) Validate() error {
	if o.Disabled {
		return ErrDisabled
	}
	_, err := o.Palette()
	return err
}
