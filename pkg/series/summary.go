package series

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/candlecourse/pkg/model"
)

// Summary describes a series at a glance.
type Summary struct {
	Count        int
	First, Last  model.Date
	Open, Close  float64 // first open, last close
	High, Low    float64 // period extremes
	ChangePct    float64 // last close vs first open, percent
	MeanClose    float64
	ReturnStdDev float64 // sample stddev of daily close-to-close returns, percent
	Bullish      int
	Bearish      int
}

// Summarize computes a Summary. The zero Summary is returned for an empty
// series; ReturnStdDev stays 0 when fewer than three closes exist.
func Summarize(points []model.Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}

	closes := make([]float64, len(points))
	highs := make([]float64, len(points))
	lows := make([]float64, len(points))
	s := Summary{
		Count: len(points),
		First: points[0].Time,
		Last:  points[len(points)-1].Time,
		Open:  points[0].Open,
		Close: points[len(points)-1].Close,
	}
	for i, p := range points {
		closes[i] = p.Close
		highs[i] = p.High
		lows[i] = p.Low
		if p.Bullish() {
			s.Bullish++
		} else {
			s.Bearish++
		}
	}

	s.High = floats.Max(highs)
	s.Low = floats.Min(lows)
	s.MeanClose = stat.Mean(closes, nil)
	if s.Open != 0 {
		s.ChangePct = (s.Close - s.Open) / s.Open * 100
	}

	if len(closes) >= 3 {
		returns := make([]float64, 0, len(closes)-1)
		for i := 1; i < len(closes); i++ {
			if closes[i-1] == 0 {
				continue
			}
			returns = append(returns, (closes[i]-closes[i-1])/closes[i-1]*100)
		}
		if len(returns) >= 2 {
			s.ReturnStdDev = stat.StdDev(returns, nil)
		}
	}
	return s
}
