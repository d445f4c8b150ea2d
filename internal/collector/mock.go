package collector

import (
	"context"
	"math"
	"time"

	"SignalSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.OHLCV // per-symbol override
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) (*RawTable, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	bars, ok := m.Bars[symbol]
	if !ok {
		bars = generateMockBars(m.Price, days)
	}
	return TableFromBars(bars), nil
}

// TableFromBars wraps already-canonical bars in a RawTable.
func TableFromBars(bars []model.OHLCV) *RawTable {
	table := NewRawTable("Date", "Open", "High", "Low", "Close", "Volume")
	for _, b := range bars {
		table.Append(b.Time, b.Open, b.High, b.Low, b.Close, b.Volume)
	}
	return table
}

// generateMockBars produces a gentle oscillation around basePrice.
func generateMockBars(basePrice float64, count int) []model.OHLCV {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/9) + float64(i-count/2)*0.0005)
		bars[i] = model.OHLCV{
			Time:   today.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.998,
			High:   p * 1.006,
			Low:    p * 0.994,
			Close:  p,
			Volume: 1000000 + float64(i%7)*50000,
		}
	}
	return bars
}
