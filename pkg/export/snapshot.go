package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/candlecourse/pkg/chart"
	"github.com/vanderheijden86/candlecourse/pkg/metrics"
	"github.com/vanderheijden86/candlecourse/pkg/model"
	"github.com/vanderheijden86/candlecourse/pkg/series"
)

// ErrNoData is returned when a snapshot is requested for an empty series.
var ErrNoData = errors.New("no chart data to export")

// SnapshotOptions controls chart snapshot export.
type SnapshotOptions struct {
	Path   string        // Output path; format inferred from extension when Format empty
	Format string        // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title  string        // Rendered in the header block
	Points []model.Point // Candles to draw
	Chart  chart.Options // Colors; zero value means chart.DefaultOptions()
	Width  int           // Image width in pixels (default 960)
	Height int           // Image height in pixels (default 540)
}

// SnapshotFormat resolves the output format and path the way
// SaveChartSnapshot does.
func SnapshotFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "png"
			if path != "" && filepath.Ext(path) == "" {
				path += ".png"
			}
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	return format, path, nil
}

// SaveChartSnapshot renders a lesson's candles to a PNG or SVG file.
func SaveChartSnapshot(opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()

	if len(opts.Points) == 0 {
		return ErrNoData
	}
	format, path, err := SnapshotFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	opts.Path = path

	layout, err := buildLayout(opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	switch format {
	case "svg":
		return renderSVG(opts.Path, layout)
	default:
		return renderPNG(opts.Path, layout)
	}
}

// --- layout computation ----------------------------------------------------

type layoutCandle struct {
	X          float64 // center
	BodyTop    float64
	BodyBottom float64
	WickTop    float64
	WickBottom float64
	Up         bool
}

type layoutResult struct {
	Width, Height int
	PlotX, PlotY  float64
	PlotW, PlotH  float64
	BodyW         float64
	Candles       []layoutCandle
	GridLines     []gridLine
	Title         string
	Subtitle      string
	FirstDate     string
	LastDate      string
	Colors        palette
}

type gridLine struct {
	Y     float64
	Label string
}

type palette struct {
	Background, Text, Grid, Up, Down color.RGBA
}

func buildLayout(opts SnapshotOptions) (layoutResult, error) {
	const (
		padding      = 24.0
		headerHeight = 64.0
		axisWidth    = 72.0
		footerHeight = 28.0
	)

	chartOpts := opts.Chart
	if chartOpts == (chart.Options{}) {
		chartOpts = chart.DefaultOptions()
	}
	p, err := chartOpts.Palette()
	if err != nil {
		return layoutResult{}, err
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 960
	}
	if height <= 0 {
		height = 540
	}

	l := layoutResult{
		Width:  width,
		Height: height,
		PlotX:  padding,
		PlotY:  padding + headerHeight,
		Colors: palette{
			Background: rgba(p.Background),
			Text:       rgba(p.Text),
			Grid:       rgba(p.GridH),
			Up:         rgba(p.Up),
			Down:       rgba(p.Down),
		},
	}
	l.PlotW = math.Max(float64(width)-2*padding-axisWidth, 10)
	l.PlotH = math.Max(float64(height)-l.PlotY-footerHeight-padding, 10)

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Chart Snapshot"
	}
	l.Title = title
	sum := series.Summarize(opts.Points)
	l.Subtitle = fmt.Sprintf("%d candles  O %.2f  H %.2f  L %.2f  C %.2f  (%+.2f%%)",
		sum.Count, sum.Open, sum.High, sum.Low, sum.Close, sum.ChangePct)
	l.FirstDate = sum.First.String()
	l.LastDate = sum.Last.String()

	lo, hi := sum.Low, sum.High
	if hi == lo {
		hi, lo = hi+1, lo-1
	}
	yOf := func(v float64) float64 {
		return l.PlotY + (hi-v)/(hi-lo)*l.PlotH
	}

	slot := l.PlotW / float64(len(opts.Points))
	l.BodyW = math.Max(slot*0.6, 1)
	for i, pt := range opts.Points {
		l.Candles = append(l.Candles, layoutCandle{
			X:          l.PlotX + slot*(float64(i)+0.5),
			BodyTop:    yOf(pt.BodyTop()),
			BodyBottom: yOf(pt.BodyBottom()),
			WickTop:    yOf(pt.High),
			WickBottom: yOf(pt.Low),
			Up:         pt.Bullish(),
		})
	}

	const lines = 5
	for i := 0; i < lines; i++ {
		v := hi - (hi-lo)*float64(i)/float64(lines-1)
		l.GridLines = append(l.GridLines, gridLine{Y: yOf(v), Label: fmt.Sprintf("%.2f", v)})
	}
	return l, nil
}

// --- rendering -------------------------------------------------------------

func renderPNG(path string, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(layout.Colors.Background)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	drawHeader(dc, layout)

	dc.SetLineWidth(1)
	for _, g := range layout.GridLines {
		dc.SetColor(layout.Colors.Grid)
		dc.DrawLine(layout.PlotX, g.Y, layout.PlotX+layout.PlotW, g.Y)
		dc.Stroke()
		dc.SetColor(layout.Colors.Text)
		dc.DrawStringAnchored(g.Label, layout.PlotX+layout.PlotW+8, g.Y, 0, 0.5)
	}

	for _, c := range layout.Candles {
		drawCandle(dc, layout, c)
	}

	footerY := layout.PlotY + layout.PlotH + 18
	dc.SetColor(layout.Colors.Text)
	dc.DrawStringAnchored(layout.FirstDate, layout.PlotX, footerY, 0, 0.5)
	dc.DrawStringAnchored(layout.LastDate, layout.PlotX+layout.PlotW, footerY, 1, 0.5)

	return dc.SavePNG(path)
}

func drawHeader(dc *gg.Context, layout layoutResult) {
	dc.SetColor(layout.Colors.Text)
	dc.DrawStringAnchored(layout.Title, 24, 32, 0, 0.5)
	dc.DrawStringAnchored(layout.Subtitle, 24, 54, 0, 0.5)
}

func drawCandle(dc *gg.Context, layout layoutResult, c layoutCandle) {
	col := layout.Colors.Down
	if c.Up {
		col = layout.Colors.Up
	}
	dc.SetColor(col)
	dc.SetLineWidth(1)
	dc.DrawLine(c.X, c.WickTop, c.X, c.WickBottom)
	dc.Stroke()

	h := math.Max(c.BodyBottom-c.BodyTop, 1)
	dc.DrawRectangle(c.X-layout.BodyW/2, c.BodyTop, layout.BodyW, h)
	dc.Fill()
}

func renderSVG(path string, layout layoutResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, layout)
}

func renderSVGToWriter(w io.Writer, layout layoutResult) error {
	text := fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(layout.Colors.Text))

	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(layout.Colors.Background)))
	canvas.Text(24, 36, layout.Title,
		fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(layout.Colors.Text)))
	canvas.Text(24, 58, layout.Subtitle, text)

	right := int(layout.PlotX + layout.PlotW)
	for _, g := range layout.GridLines {
		y := int(g.Y)
		canvas.Line(int(layout.PlotX), y, right, y, fmt.Sprintf("stroke:%s;stroke-width:1", css(layout.Colors.Grid)))
		canvas.Text(right+8, y+4, g.Label, text)
	}

	for _, c := range layout.Candles {
		col := css(layout.Colors.Down)
		if c.Up {
			col = css(layout.Colors.Up)
		}
		x := int(math.Round(c.X))
		canvas.Line(x, int(c.WickTop), x, int(c.WickBottom), fmt.Sprintf("stroke:%s;stroke-width:1", col))
		h := int(math.Max(c.BodyBottom-c.BodyTop, 1))
		canvas.Rect(int(c.X-layout.BodyW/2), int(c.BodyTop), int(math.Max(layout.BodyW, 1)), h, fmt.Sprintf("fill:%s", col))
	}

	footerY := int(layout.PlotY + layout.PlotH + 22)
	canvas.Text(int(layout.PlotX), footerY, layout.FirstDate, text)
	canvas.Text(right, footerY, layout.LastDate, text+";text-anchor:end")

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
