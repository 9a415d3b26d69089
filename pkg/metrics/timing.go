// Package metrics keeps in-process timing statistics for lesson selection,
// chart rendering and curriculum loading. Export workers record from many
// goroutines, so every counter is atomic. CANDLE_METRICS=0 turns recording
// off.
//
//	defer metrics.Timer(metrics.Select)()
package metrics

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vanderheijden86/candlecourse/pkg/debug"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("CANDLE_METRICS") != "0")
}

// Enabled reports whether recording is on.
func Enabled() bool { return enabled.Load() }

// SetEnabled switches recording on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric aggregates durations of one operation.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
	min   atomic.Int64 // 0 until the first sample
}

var (
	registryMu sync.Mutex
	registry   []*TimingMetric
)

// newTimingMetric creates a metric. Package-level metrics are registered so
// LogAll and ResetAll see them.
func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

func register(name string) *TimingMetric {
	m := newTimingMetric(name)
	registryMu.Lock()
	registry = append(registry, m)
	registryMu.Unlock()
	return m
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	for cur := m.max.Load(); ns > cur; cur = m.max.Load() {
		if m.max.CompareAndSwap(cur, ns) {
			break
		}
	}
	for cur := m.min.Load(); cur == 0 || ns < cur; cur = m.min.Load() {
		if m.min.CompareAndSwap(cur, ns) {
			break
		}
	}
}

func (m *TimingMetric) Name() string { return m.name }
func (m *TimingMetric) Count() int64 { return m.count.Load() }
func (m *TimingMetric) MaxNs() int64 { return m.max.Load() }

// MinNs is 0 when nothing was recorded.
func (m *TimingMetric) MinNs() int64 { return m.min.Load() }

// AvgNs is 0 when nothing was recorded.
func (m *TimingMetric) AvgNs() int64 {
	n := m.count.Load()
	if n == 0 {
		return 0
	}
	return m.total.Load() / n
}

// TimingStats is a point-in-time copy of a metric in milliseconds.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

func ms(ns int64) float64 { return float64(ns) / float64(time.Millisecond) }

func (m *TimingMetric) Stats() TimingStats {
	return TimingStats{
		Name:    m.name,
		Count:   m.Count(),
		TotalMs: ms(m.total.Load()),
		AvgMs:   ms(m.AvgNs()),
		MaxMs:   ms(m.MaxNs()),
		MinMs:   ms(m.MinNs()),
	}
}

func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

// Timer starts a measurement; call the result to record it. A nil metric or
// disabled recording yields a no-op.
func Timer(m *TimingMetric) func() {
	return TimerWithCallback(m, nil)
}

// TimerWithCallback is Timer that also hands the duration to cb.
func TimerWithCallback(m *TimingMetric, cb func(time.Duration)) func() {
	if m == nil || !Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		m.Record(d)
		if cb != nil {
			cb(d)
		}
	}
}

var (
	Select         = register("select")
	ChartRender    = register("chart_render")
	CurriculumLoad = register("curriculum_load")
	SnapshotRender = register("snapshot_render")
	UIRender       = register("ui_render")
)

// AllTimingMetrics returns the registered metrics in registration order.
func AllTimingMetrics() []*TimingMetric {
	registryMu.Lock()
	defer registryMu.Unlock()
	return append([]*TimingMetric(nil), registry...)
}

func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats skips metrics with no samples.
func AllTimingStats() []TimingStats {
	var out []TimingStats
	for _, m := range AllTimingMetrics() {
		if m.Count() > 0 {
			out = append(out, m.Stats())
		}
	}
	return out
}

// LogAll writes the non-empty metrics to the process logger at debug level.
func LogAll() {
	log := debug.Logger().Named("metrics")
	for _, s := range AllTimingStats() {
		log.Debug("timing",
			zap.String("name", s.Name),
			zap.Int64("count", s.Count),
			zap.Float64("avg_ms", s.AvgMs),
			zap.Float64("max_ms", s.MaxMs),
		)
	}
}
