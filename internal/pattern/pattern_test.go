package pattern

import (
	"math"
	"testing"

	"SignalSentinel/internal/model"
)

func bar(open, high, low, close float64) model.OHLCV {
	return model.OHLCV{Open: open, High: high, Low: low, Close: close, Volume: 1000}
}

func hasKind(signals []model.Signal, kind model.SignalKind) bool {
	for _, s := range signals {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

func TestCandlesticks_Engulfing(t *testing.T) {
	d := NewDetector(DefaultConfig())

	bull := d.Candlesticks([]model.OHLCV{
		bar(100, 101, 89, 90),
		bar(88, 103, 87, 102),
	})
	if !hasKind(bull, model.KindBullishEngulfing) {
		t.Errorf("expected bullish engulfing, got %v", bull)
	}
	if hasKind(bull, model.KindBearishEngulfing) {
		t.Error("bearish engulfing must not fire on a bullish setup")
	}

	// same bodies with the colors swapped
	bear := d.Candlesticks([]model.OHLCV{
		bar(90, 101, 89, 100),
		bar(102, 103, 87, 88),
	})
	if !hasKind(bear, model.KindBearishEngulfing) {
		t.Errorf("expected bearish engulfing, got %v", bear)
	}
	if hasKind(bear, model.KindBullishEngulfing) {
		t.Error("bullish engulfing must clear when colors are swapped")
	}
}

func TestCandlesticks_Hammer(t *testing.T) {
	d := NewDetector(DefaultConfig())
	tests := []struct {
		name string
		bar  model.OHLCV
		want bool
	}{
		{"upper shadow equals body", bar(100, 101, 90, 99), false},
		{"upper shadow below body", bar(100, 100.5, 90, 99), true},
		{"lower shadow exactly twice body", bar(100, 100.2, 97, 99), false},
		{"doji", bar(100, 100, 95, 100), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hasKind(d.Candlesticks([]model.OHLCV{tt.bar}), model.KindHammer)
			if got != tt.want {
				t.Errorf("hammer = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCandlesticks_ShootingStar(t *testing.T) {
	d := NewDetector(DefaultConfig())
	signals := d.Candlesticks([]model.OHLCV{bar(100, 110, 99.5, 101)})
	if !hasKind(signals, model.KindShootingStar) {
		t.Errorf("expected shooting star, got %v", signals)
	}
	if hasKind(signals, model.KindHammer) {
		t.Error("a shooting star is not a hammer")
	}
}

func TestCandlesticks_Stars(t *testing.T) {
	d := NewDetector(DefaultConfig())

	morning := d.Candlesticks([]model.OHLCV{
		bar(110, 111, 99, 100),
		bar(99, 100, 98.5, 99.5),
		bar(100, 108, 99.5, 107),
	})
	if !hasKind(morning, model.KindMorningStar) {
		t.Errorf("expected morning star, got %v", morning)
	}
	if hasKind(morning, model.KindEveningStar) {
		t.Error("evening star must not fire on a morning star setup")
	}

	evening := d.Candlesticks([]model.OHLCV{
		bar(100, 111, 99, 110),
		bar(111, 111.5, 110, 110.5),
		bar(110, 110.5, 102, 103),
	})
	if !hasKind(evening, model.KindEveningStar) {
		t.Errorf("expected evening star, got %v", evening)
	}

	// third candle does not reach the first body's midpoint
	weak := d.Candlesticks([]model.OHLCV{
		bar(110, 111, 99, 100),
		bar(99, 100, 98.5, 99.5),
		bar(100, 105, 99.5, 104),
	})
	if hasKind(weak, model.KindMorningStar) {
		t.Error("morning star requires a close above the first body's midpoint")
	}
}

func TestCandlesticks_MissingFieldsNeverMatch(t *testing.T) {
	d := NewDetector(DefaultConfig())
	nan := math.NaN()
	bars := []model.OHLCV{
		bar(100, 101, 89, 90),
		bar(88, 103, 87, nan),
	}
	if got := d.Candlesticks(bars); len(got) != 0 {
		t.Errorf("expected no matches with a missing close, got %v", got)
	}
	if got := d.Candlesticks(nil); len(got) != 0 {
		t.Errorf("expected no matches on empty input, got %v", got)
	}
}

// flatBars returns n bars closing at 100 with a one-point range.
func flatBars(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = bar(100, 101, 99, 100)
	}
	return bars
}

func TestChartPatterns_LabelsUseWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChartWindow = 5
	d := NewDetector(cfg)

	up := d.ChartPatterns(append(flatBars(5), bar(100, 103, 100, 102)))
	down := d.ChartPatterns(append(flatBars(5), bar(100, 100, 97, 98)))
	labels := map[model.SignalKind]string{}
	for _, s := range append(up, down...) {
		labels[s.Kind] = s.Label
	}
	if got := labels[model.KindBreakout]; got != "Breakout above 5-day range" {
		t.Errorf("breakout label = %q", got)
	}
	if got := labels[model.KindBreakdown]; got != "Breakdown below 5-day range" {
		t.Errorf("breakdown label = %q", got)
	}
}

func TestChartPatterns_Breakout(t *testing.T) {
	d := NewDetector(DefaultConfig())

	up := append(flatBars(20), bar(100, 103, 100, 102))
	if got := d.ChartPatterns(up); !hasKind(got, model.KindBreakout) {
		t.Errorf("expected breakout, got %v", got)
	}

	// 100.9 stays inside 100 * 1.01
	inside := append(flatBars(20), bar(100, 101, 99, 100.9))
	if got := d.ChartPatterns(inside); hasKind(got, model.KindBreakout) {
		t.Error("close within the breakout factor must not flag")
	}

	down := append(flatBars(20), bar(100, 100, 97, 98))
	got := d.ChartPatterns(down)
	if !hasKind(got, model.KindBreakdown) {
		t.Errorf("expected breakdown, got %v", got)
	}
	if hasKind(got, model.KindBreakout) {
		t.Error("breakdown bar must not also be a breakout")
	}
}

func TestChartPatterns_Triangles(t *testing.T) {
	d := NewDetector(DefaultConfig())

	asc := make([]model.OHLCV, 21)
	for i := range asc {
		low := 95 + float64(i)*0.5
		asc[i] = bar(low+0.5, 110, low, low+1)
	}
	got := d.ChartPatterns(asc)
	if !hasKind(got, model.KindAscendingTriangle) {
		t.Errorf("expected ascending triangle, got %v", got)
	}
	if hasKind(got, model.KindDescendingTriangle) {
		t.Error("rising lows must not form a descending triangle")
	}

	desc := make([]model.OHLCV, 21)
	for i := range desc {
		high := 115 - float64(i)*0.5
		desc[i] = bar(high-0.5, high, 100, high-0.5)
	}
	got = d.ChartPatterns(desc)
	if !hasKind(got, model.KindDescendingTriangle) {
		t.Errorf("expected descending triangle, got %v", got)
	}
	if hasKind(got, model.KindAscendingTriangle) {
		t.Error("falling highs must not form an ascending triangle")
	}
}

func TestChartPatterns_ShortInput(t *testing.T) {
	d := NewDetector(DefaultConfig())
	bars := append(flatBars(19), bar(100, 103, 100, 110))
	if got := d.ChartPatterns(bars); len(got) != 0 {
		t.Errorf("expected no chart patterns with fewer than window+1 bars, got %v", got)
	}
}

func TestDetect_OrdersCandlesticksFirst(t *testing.T) {
	d := NewDetector(DefaultConfig())
	bars := append(flatBars(19), bar(100, 101, 89, 90), bar(88, 103, 87, 102))
	got := d.Detect(bars)
	if len(got) < 2 {
		t.Fatalf("expected engulfing and breakout, got %v", got)
	}
	if got[0].Kind != model.KindBullishEngulfing {
		t.Errorf("first signal = %s, want %s", got[0].Kind, model.KindBullishEngulfing)
	}
	if !hasKind(got, model.KindBreakout) {
		t.Errorf("expected breakout after the engulfing bar, got %v", got)
	}
}
