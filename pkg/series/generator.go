// Package series produces and inspects the daily OHLC series shown on lesson
// charts: the sample generator used by synthetic lessons, invariant checks
// for hand-authored data, and summary statistics for the details panel.
package series

import (
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanderheijden86/candlecourse/pkg/model"
)

// pricePlaces is the number of decimal places kept on generated prices.
const pricePlaces = 2

// Spec describes a generated series. It is the "generate" block of a
// curriculum file.
type Spec struct {
	Start      model.Date `json:"start" yaml:"start"`
	Count      int        `json:"count" yaml:"count" validate:"gte=1,lte=5000"`
	Base       float64    `json:"base" yaml:"base" validate:"gt=0"`
	Range      float64    `json:"range" yaml:"range" validate:"gte=0"`
	Volatility float64    `json:"volatility" yaml:"volatility" validate:"gte=0"`
}

// Generate produces the series described by s.
func (s Spec) Generate(rng *rand.Rand) []model.Point {
	return Generate(s.Start, s.Count, s.Base, s.Range, s.Volatility, rng)
}

// NewRand returns a PCG-backed generator. A zero seed selects a time-based
// seed, so output differs between runs.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate returns count daily candles starting at start. The previous close
// seeds each open, so the series is a correlated random walk:
//
//	open  = lastClose + (u-0.5)*volatility
//	close = open      + (u-0.5)*priceRange
//	high  = max(open, close) + u*volatility
//	low   = min(open, close) - u*volatility
//
// Prices are rounded to two decimals. Rounding is monotone, so
// high >= max(open, close) and low <= min(open, close) survive it.
// A nil rng uses a time-seeded generator; count <= 0 yields an empty series.
func Generate(start model.Date, count int, basePrice, priceRange, volatility float64, rng *rand.Rand) []model.Point {
	if count <= 0 {
		return []model.Point{}
	}
	if rng == nil {
		rng = NewRand(0)
	}

	points := make([]model.Point, 0, count)
	day := model.NewDate(start.Time)
	lastClose := basePrice

	for i := 0; i < count; i++ {
		open := lastClose + (rng.Float64()-0.5)*volatility
		close := open + (rng.Float64()-0.5)*priceRange
		high := max(open, close) + rng.Float64()*volatility
		low := min(open, close) - rng.Float64()*volatility

		points = append(points, model.Point{
			Time:  day,
			Open:  round(open),
			High:  round(high),
			Low:   round(low),
			Close: round(close),
		})

		day = day.AddDays(1)
		lastClose = close
	}
	return points
}

func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(pricePlaces).InexactFloat64()
}
