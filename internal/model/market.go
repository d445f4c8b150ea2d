package model

import (
	"math"
	"time"
)

// OHLCV represents a single daily bar. Missing price or volume fields are NaN.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Complete reports whether every OHLC field is present.
func (b OHLCV) Complete() bool {
	return !math.IsNaN(b.Open) && !math.IsNaN(b.High) && !math.IsNaN(b.Low) && !math.IsNaN(b.Close)
}

// Series is the normalized daily history of one instrument, oldest bar first.
type Series struct {
	Symbol string
	Bars   []OHLCV
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }
