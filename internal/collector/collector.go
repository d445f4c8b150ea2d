package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"SignalSentinel/internal/model"
)

// BarCache stores normalized bars between runs. A miss is (nil, false, nil).
type BarCache interface {
	GetBars(ctx context.Context, symbol string) ([]model.OHLCV, bool, error)
	PutBars(ctx context.Context, symbol string, bars []model.OHLCV) error
}

// Collector orchestrates fetching and normalization for one instrument at a time.
type Collector struct {
	Fetcher Fetcher
	Days    int
	MinBars int
	Cache   BarCache // optional
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, days, minBars int) *Collector {
	if minBars <= 0 {
		minBars = DefaultMinBars
	}
	return &Collector{Fetcher: fetcher, Days: days, MinBars: minBars}
}

// Collect returns the normalized series for symbol. Errors wrapping
// ErrEmptyInput or ErrInsufficientHistory mean the instrument should be skipped.
func (c *Collector) Collect(ctx context.Context, symbol string) (model.Series, error) {
	if c.Cache != nil {
		bars, ok, err := c.Cache.GetBars(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache read failed")
		} else if ok {
			return Normalize(symbol, TableFromBars(bars), c.MinBars)
		}
	}

	table, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.Days)
	if err != nil {
		return model.Series{Symbol: symbol}, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), err)
	}
	series, err := Normalize(symbol, table, c.MinBars)
	if err != nil {
		return series, err
	}

	if c.Cache != nil {
		if err := c.Cache.PutBars(ctx, symbol, series.Bars); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache write failed")
		}
	}
	return series, nil
}
