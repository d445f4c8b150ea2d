package calculator

import (
	"math"
	"testing"
	"time"

	"SignalSentinel/internal/model"

	"github.com/markcheno/go-talib"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (diff=%.6f)", label, got, want, math.Abs(got-want))
	}
}

func barsFromCloses(closes []float64) []model.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 10*math.Sin(float64(i)/7) + float64(i%5)
	}
	return out
}

func TestSMA_Period3(t *testing.T) {
	got := SMA([]float64{100, 102, 104, 103, 105}, 3)
	want := []float64{math.NaN(), math.NaN(), 102, 103, 104}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Errorf("index %d: expected missing, got %.4f", i, got[i])
			}
			continue
		}
		assertClose(t, "SMA(3)", got[i], want[i], 1e-9)
	}
}

func TestSMA_ConstantSeries(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 123.45
	}
	for _, period := range []int{1, 14, 50, 100, 200} {
		sma := SMA(closes, period)
		for i := period - 1; i < len(closes); i++ {
			assertClose(t, "SMA constant", sma[i], 123.45, 1e-9)
		}
	}
}

func TestSMA_MatchesTalib(t *testing.T) {
	closes := wave(220)
	for _, period := range []int{20, 50, 100} {
		ours := SMA(closes, period)
		ref := talib.Sma(closes, period)
		for i := period - 1; i < len(closes); i++ {
			assertClose(t, "SMA vs talib", ours[i], ref[i], 1e-6)
		}
	}
}

func TestSMA_NaNPoisonsWindowOnly(t *testing.T) {
	values := []float64{1, 2, math.NaN(), 4, 5, 6, 7}
	sma := SMA(values, 3)
	for i := 2; i <= 4; i++ {
		if !math.IsNaN(sma[i]) {
			t.Errorf("index %d: window holds NaN, expected missing", i)
		}
	}
	assertClose(t, "SMA after NaN", sma[5], 5, 1e-9)
	assertClose(t, "SMA after NaN", sma[6], 6, 1e-9)
}

func TestEMA_SeededWithFirstValue(t *testing.T) {
	ema := EMA([]float64{10, 20, 30}, 3) // alpha = 0.5
	assertClose(t, "EMA[0]", ema[0], 10, 1e-9)
	assertClose(t, "EMA[1]", ema[1], 15, 1e-9)
	assertClose(t, "EMA[2]", ema[2], 22.5, 1e-9)
}

func TestMACD_Maturity(t *testing.T) {
	closes := wave(60)
	macd, signal := MACD(closes, 12, 26, 9)
	for i := 0; i < 25; i++ {
		if !math.IsNaN(macd[i]) {
			t.Fatalf("MACD defined too early at %d", i)
		}
	}
	if math.IsNaN(macd[25]) {
		t.Fatal("MACD should be defined once 26 bars are available")
	}
	for i := 0; i < 33; i++ {
		if !math.IsNaN(signal[i]) {
			t.Fatalf("signal defined too early at %d", i)
		}
	}
	if math.IsNaN(signal[33]) {
		t.Fatal("signal should be defined after 9 MACD values")
	}
}

func TestRSI_Bounds(t *testing.T) {
	rsi := RSI(wave(200), 14)
	for i, v := range rsi {
		if math.IsNaN(v) {
			if i >= 14 {
				t.Fatalf("RSI missing at %d", i)
			}
			continue
		}
		if v < 0 || v > 100 {
			t.Fatalf("RSI out of range at %d: %.4f", i, v)
		}
	}
}

func TestRSI_EdgeCases(t *testing.T) {
	rising := make([]float64, 30)
	flat := make([]float64, 30)
	for i := range rising {
		rising[i] = float64(100 + i)
		flat[i] = 100
	}
	if got := RSI(rising, 14)[29]; got != 100 {
		t.Errorf("no losses with gains: expected 100, got %.4f", got)
	}
	if got := RSI(flat, 14)[29]; got != 50 {
		t.Errorf("no movement: expected 50, got %.4f", got)
	}
	falling := make([]float64, 30)
	for i := range falling {
		falling[i] = float64(200 - i)
	}
	if got := RSI(falling, 14)[29]; got != 0 {
		t.Errorf("no gains with losses: expected 0, got %.4f", got)
	}
}

func TestRSI_HandComputed(t *testing.T) {
	// changes over the last 2 periods: +2, -1 -> avgGain 1, avgLoss 0.5, rs 2
	rsi := RSI([]float64{10, 12, 11}, 2)
	assertClose(t, "RSI(2)", rsi[2], 100-100.0/3, 1e-9)
}

func TestTrueRange_MatchesTalib(t *testing.T) {
	bars := barsFromCloses(wave(50))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		highs[i], lows[i], closes[i] = b.High, b.Low, b.Close
	}
	ours := TrueRange(bars)
	ref := talib.TRange(highs, lows, closes)
	assertClose(t, "TR[0]", ours[0], 2, 1e-9)
	for i := 1; i < len(bars); i++ {
		assertClose(t, "TR vs talib", ours[i], ref[i], 1e-9)
	}
}

func TestATR_GapUsesPreviousClose(t *testing.T) {
	bars := []model.OHLCV{
		{High: 11, Low: 9, Close: 10},
		{High: 21, Low: 19, Close: 20}, // gap: |21-10| = 11
	}
	atr := ATR(bars, 2)
	assertClose(t, "ATR(2)", atr[1], (2+11)/2.0, 1e-9)
}

func TestBuildFrame_NoLookAhead(t *testing.T) {
	bars := barsFromCloses(wave(150))
	full := BuildFrame(bars, DefaultFrameConfig())
	for _, cut := range []int{60, 100, 120} {
		prefix := BuildFrame(bars[:cut], DefaultFrameConfig())
		for i := 0; i < cut; i++ {
			a, b := full.At(i), prefix.At(i)
			if !sameFloat(a.SMA50, b.SMA50) || !sameFloat(a.RSI, b.RSI) ||
				!sameFloat(a.MACD, b.MACD) || !sameFloat(a.MACDSignal, b.MACDSignal) ||
				!sameFloat(a.ATR, b.ATR) || !sameFloat(a.AvgVol, b.AvgVol) {
				t.Fatalf("row %d differs when computed on a %d-bar prefix", i, cut)
			}
		}
	}
}

func TestBuildFrame_Maturity(t *testing.T) {
	bars := barsFromCloses(wave(120))
	frame := BuildFrame(bars, DefaultFrameConfig())
	if frame.Mature(98) {
		t.Error("frame should not be mature before SMA100 is defined")
	}
	if !frame.Mature(99) {
		t.Error("frame should be mature at index 99")
	}
	if got := len(frame.MatureIndices()); got != 21 {
		t.Errorf("expected 21 mature rows, got %d", got)
	}
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}
