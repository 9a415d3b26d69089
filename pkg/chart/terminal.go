package chart

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/candlecourse/pkg/debug"
	"github.com/vanderheijden86/candlecourse/pkg/metrics"
	"github.com/vanderheijden86/candlecourse/pkg/model"
)

const (
	minWidth  = 12
	minHeight = 5
	// Rows below the plot: time-axis border and date labels.
	axisRows = 2
)

// Cell kinds.
const (
	cellEmpty = iota
	cellGrid
	cellWickUp
	cellWickDown
	cellBodyUp
	cellBodyDown
	cellAxis
	cellText
)

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithRenderer sets the lipgloss renderer used for colors.
func WithRenderer(r *lipgloss.Renderer) TerminalOption {
	return func(t *Terminal) {
		t.renderer = r
	}
}

// WithSize sets the initial size in cells.
func WithSize(width, height int) TerminalOption {
	return func(t *Terminal) {
		t.width, t.height = width, height
	}
}

// Terminal draws a candlestick chart into a character grid. Each candle is
// one column: a wick from high to low and a body from open to close. When
// the dataset is wider than the pane, the view shows a window of candles
// that can be scrolled.
type Terminal struct {
	opts     Options
	palette  Palette
	renderer *lipgloss.Renderer
	styles   map[int]lipgloss.Style

	points []model.Point
	offset int // index of the first visible candle
	width  int
	height int
}

// NewTerminal builds the terminal engine. It fails with ErrDisabled or
// ErrInvalidColor, in which case callers run without a chart.
func NewTerminal(opts Options, options ...TerminalOption) (*Terminal, error) {
	if opts.Disabled {
		return nil, ErrDisabled
	}
	pal, err := opts.Palette()
	if err != nil {
		return nil, err
	}
	t := &Terminal{
		opts:    opts,
		palette: pal,
		width:   80,
		height:  16,
	}
	for _, o := range options {
		o(t)
	}
	if t.renderer == nil {
		t.renderer = lipgloss.DefaultRenderer()
	}
	t.styles = t.buildStyles()
	return t, nil
}

func (t *Terminal) buildStyles() map[int]lipgloss.Style {
	base := t.renderer.NewStyle().Background(lipgloss.Color(t.opts.Layout.Background))
	return map[int]lipgloss.Style{
		cellEmpty:    base,
		cellGrid:     base.Foreground(lipgloss.Color(t.opts.Grid.HorzLines)),
		cellWickUp:   base.Foreground(lipgloss.Color(t.opts.Series.WickUpColor)),
		cellWickDown: base.Foreground(lipgloss.Color(t.opts.Series.WickDownColor)),
		cellBodyUp:   base.Foreground(lipgloss.Color(t.opts.Series.UpColor)),
		cellBodyDown: base.Foreground(lipgloss.Color(t.opts.Series.DownColor)),
		cellAxis:     base.Foreground(lipgloss.Color(t.opts.TimeScale.BorderColor)),
		cellText:     base.Foreground(lipgloss.Color(t.opts.Layout.TextColor)),
	}
}

// Options returns the configuration the engine was built with.
func (t *Terminal) Options() Options {
	return t.opts
}

// Palette returns the parsed colors.
func (t *Terminal) Palette() Palette {
	return t.palette
}

// SetSeries replaces the dataset. The visible window is kept (clamped)
// until FitViewport runs.
func (t *Terminal) SetSeries(points []model.Point) {
	t.points = slices.Clone(points)
	t.clampOffset()
}

// Series returns the current dataset.
func (t *Terminal) Series() []model.Point {
	return t.points
}

// FitViewport shows the whole dataset, or its most recent candles when it
// does not fit the pane.
func (t *Terminal) FitViewport() {
	t.offset = max(0, len(t.points)-t.capacity())
}

// Resize sets the pane size in cells and keeps the newest candle in view.
func (t *Terminal) Resize(width, height int) {
	atEnd := t.offset+t.capacity() >= len(t.points)
	t.width, t.height = width, height
	if atEnd {
		t.FitViewport()
		return
	}
	t.clampOffset()
}

// Size returns the pane size in cells.
func (t *Terminal) Size() (width, height int) {
	return t.width, t.height
}

// Scroll moves the visible window by delta candles; negative is earlier.
func (t *Terminal) Scroll(delta int) {
	t.offset += delta
	t.clampOffset()
}

// VisibleRange returns the half-open index range of visible candles.
func (t *Terminal) VisibleRange() (from, to int) {
	from = t.offset
	to = min(len(t.points), t.offset+t.capacity())
	return from, to
}

func (t *Terminal) clampOffset() {
	maxOffset := max(0, len(t.points)-t.capacity())
	t.offset = min(max(t.offset, 0), maxOffset)
}

// priceAxisWidth is the column count reserved for price labels.
func (t *Terminal) priceAxisWidth() int {
	return 9
}

// capacity is the number of candles that fit in the plot area.
func (t *Terminal) capacity() int {
	plot := t.width - t.priceAxisWidth()
	if plot <= 0 {
		return 1
	}
	// Candles are separated by a blank column.
	return max(1, (plot+1)/2)
}

// View renders the chart at its current size.
func (t *Terminal) View() string {
	defer metrics.TimerWithCallback(metrics.ChartRender, func(d time.Duration) {
		debug.LogTiming("chart render", d)
	})()

	if t.width < minWidth || t.height < minHeight {
		return t.styles[cellText].Render(runewidth.Truncate("chart too small", max(t.width, 0), ""))
	}
	if len(t.points) == 0 {
		return t.placeholder("no chart data")
	}

	grid := t.plot()
	return t.renderGrid(grid)
}

type cell struct {
	ch   rune
	kind int
}

func (t *Terminal) newGrid() [][]cell {
	grid := make([][]cell, t.height)
	for y := range grid {
		grid[y] = make([]cell, t.width)
		for x := range grid[y] {
			grid[y][x] = cell{' ', cellEmpty}
		}
	}
	return grid
}

func (t *Terminal) plot() [][]cell {
	grid := t.newGrid()
	rows := t.height - axisRows
	plotWidth := t.width - t.priceAxisWidth()
	from, to := t.VisibleRange()
	visible := t.points[from:to]

	hi, lo := math.Inf(-1), math.Inf(1)
	for _, p := range visible {
		hi = max(hi, p.High)
		lo = min(lo, p.Low)
	}
	rowOf := func(price float64) int {
		if hi == lo {
			return rows / 2
		}
		r := int(math.Round((hi - price) / (hi - lo) * float64(rows-1)))
		return min(max(r, 0), rows-1)
	}

	// Horizontal grid lines at the labelled prices.
	labelRows := []int{0, (rows - 1) / 2, rows - 1}
	for _, y := range labelRows {
		for x := 0; x < plotWidth; x++ {
			grid[y][x] = cell{'┈', cellGrid}
		}
	}

	for i, p := range visible {
		x := i * 2
		if x >= plotWidth {
			break
		}
		wick, body := cellWickDown, cellBodyDown
		if p.Bullish() {
			wick, body = cellWickUp, cellBodyUp
		}
		top, bottom := rowOf(p.BodyTop()), rowOf(p.BodyBottom())
		for y := rowOf(p.High); y <= rowOf(p.Low); y++ {
			grid[y][x] = cell{'│', wick}
		}
		bodyRune := '█'
		if top == bottom {
			bodyRune = '┃'
		}
		for y := top; y <= bottom; y++ {
			grid[y][x] = cell{bodyRune, body}
		}
	}

	// Price axis.
	for y := 0; y < rows; y++ {
		grid[y][plotWidth] = cell{'│', cellAxis}
	}
	for _, y := range labelRows {
		price := hi
		if hi != lo {
			price = hi - (hi-lo)*float64(y)/float64(rows-1)
		}
		t.write(grid[y], plotWidth+1, fmt.Sprintf("%.2f", price), cellText)
	}

	// Time axis.
	for x := 0; x < t.width; x++ {
		grid[rows][x] = cell{'─', cellAxis}
	}
	grid[rows][plotWidth] = cell{'┴', cellAxis}
	first := visible[0].Time.String()
	t.write(grid[rows+1], 0, first, cellText)
	if len(visible) > 1 {
		last := visible[len(visible)-1].Time.String()
		if start := plotWidth - runewidth.StringWidth(last); start > runewidth.StringWidth(first) {
			t.write(grid[rows+1], start, last, cellText)
		}
	}
	return grid
}

func (t *Terminal) write(row []cell, x int, s string, kind int) {
	for _, r := range s {
		if x >= len(row) {
			return
		}
		row[x] = cell{r, kind}
		x++
	}
}

func (t *Terminal) renderGrid(grid [][]cell) string {
	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		kind := row[0].kind
		for _, c := range row {
			if c.kind != kind {
				b.WriteString(t.styles[kind].Render(run.String()))
				run.Reset()
				kind = c.kind
			}
			run.WriteRune(c.ch)
		}
		b.WriteString(t.styles[kind].Render(run.String()))
	}
	return b.String()
}

func (t *Terminal) placeholder(msg string) string {
	return t.renderer.NewStyle().
		Width(t.width).
		Height(t.height).
		Align(lipgloss.Center, lipgloss.Center).
		Background(lipgloss.Color(t.opts.Layout.Background)).
		Foreground(lipgloss.Color(t.opts.Layout.TextColor)).
		Render(msg)
}
