package chart

import (
	"fmt"
	"slices"

	"github.com/vanderheijden86/candlecourse/pkg/model"
)

// Recorder is an Adapter that records every call. Tests use it in place of
// a real engine.
type Recorder struct {
	Calls  []string
	Points []model.Point
	Fits   int
	Width  int
	Height int
}

// SetSeries records the dataset.
func (r *Recorder) SetSeries(points []model.Point) {
	r.Calls = append(r.Calls, fmt.Sprintf("SetSeries(%d)", len(points)))
	r.Points = slices.Clone(points)
}

// FitViewport counts viewport fits.
func (r *Recorder) FitViewport() {
	r.Calls = append(r.Calls, "FitViewport")
	r.Fits++
}

// Resize records the last size.
func (r *Recorder) Resize(width, height int) {
	r.Calls = append(r.Calls, fmt.Sprintf("Resize(%d,%d)", width, height))
	r.Width, r.Height = width, height
}

// Reset clears the recorded calls and keeps the dataset.
func (r *Recorder) Reset() {
	r.Calls = nil
}

var (
	_ Adapter = (*Recorder)(nil)
	_ Adapter = (*Terminal)(nil)
)
