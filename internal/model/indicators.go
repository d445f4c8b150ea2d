package model

import "math"

// IndicatorFrame holds indicator series aligned with Series.Bars.
// A NaN entry means the value is not yet defined at that index.
// Value i depends only on bars 0..i.
type IndicatorFrame struct {
	SMA50      []float64
	SMA100     []float64
	SMA200     []float64
	RSI        []float64
	MACD       []float64
	MACDSignal []float64
	ATR        []float64
	AvgVol     []float64
}

// Len returns the number of rows in the frame.
func (f *IndicatorFrame) Len() int { return len(f.RSI) }

// Mature reports whether every required field is defined at i.
// SMA200 is optional: it only gates the SMA50/SMA200 crossover.
func (f *IndicatorFrame) Mature(i int) bool {
	if i < 0 || i >= f.Len() {
		return false
	}
	for _, s := range [][]float64{f.SMA50, f.SMA100, f.RSI, f.MACD, f.MACDSignal, f.ATR, f.AvgVol} {
		if math.IsNaN(s[i]) {
			return false
		}
	}
	return true
}

// MatureIndices returns every mature index in ascending order.
func (f *IndicatorFrame) MatureIndices() []int {
	var idx []int
	for i := 0; i < f.Len(); i++ {
		if f.Mature(i) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Row is the snapshot of the frame at one index.
type Row struct {
	SMA50      float64
	SMA100     float64
	SMA200     float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	ATR        float64
	AvgVol     float64
}

// At returns the row at index i.
func (f *IndicatorFrame) At(i int) Row {
	return Row{
		SMA50:      f.SMA50[i],
		SMA100:     f.SMA100[i],
		SMA200:     f.SMA200[i],
		RSI:        f.RSI[i],
		MACD:       f.MACD[i],
		MACDSignal: f.MACDSignal[i],
		ATR:        f.ATR[i],
		AvgVol:     f.AvgVol[i],
	}
}
