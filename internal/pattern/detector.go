// Package pattern recognizes candlestick and chart patterns at the latest bar.
// Detection never fails: short input or missing fields simply yield no match.
package pattern

import (
	"fmt"

	"SignalSentinel/internal/model"
)

// Config holds the pattern thresholds. The defaults come from field use and
// have not been calibrated.
type Config struct {
	StarBodyRatio         float64 `yaml:"star_body_ratio"`
	ChartWindow           int     `yaml:"chart_window"`
	BreakoutFactor        float64 `yaml:"breakout_factor"`
	BreakdownFactor       float64 `yaml:"breakdown_factor"`
	TriangleLowRise       float64 `yaml:"triangle_low_rise"`
	TriangleHighFall      float64 `yaml:"triangle_high_fall"`
	TriangleFlatTolerance float64 `yaml:"triangle_flat_tolerance"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		StarBodyRatio:         0.3,
		ChartWindow:           20,
		BreakoutFactor:        1.01,
		BreakdownFactor:       0.99,
		TriangleLowRise:       1.02,
		TriangleHighFall:      0.98,
		TriangleFlatTolerance: 0.5,
	}
}

// Validate checks the thresholds for obviously unusable values.
func (c Config) Validate() error {
	if c.StarBodyRatio <= 0 {
		return fmt.Errorf("star_body_ratio must be positive")
	}
	if c.ChartWindow < 3 {
		return fmt.Errorf("chart_window must be at least 3, got %d", c.ChartWindow)
	}
	if c.BreakoutFactor <= 0 || c.BreakdownFactor <= 0 || c.TriangleLowRise <= 0 || c.TriangleHighFall <= 0 {
		return fmt.Errorf("pattern factors must be positive")
	}
	if c.TriangleFlatTolerance < 0 {
		return fmt.Errorf("triangle_flat_tolerance must not be negative")
	}
	return nil
}

// Detector runs every matcher against a bar series.
type Detector struct {
	cfg Config
}

// NewDetector creates a Detector with the given thresholds.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect returns candlestick matches followed by chart matches for the last bar.
func (d *Detector) Detect(bars []model.OHLCV) []model.Signal {
	signals := d.Candlesticks(bars)
	return append(signals, d.ChartPatterns(bars)...)
}

func candlestick(kind model.SignalKind, dir model.Direction, label string) model.Signal {
	return model.Signal{Kind: kind, Category: model.CategoryCandlestick, Direction: dir, Label: label}
}

func chart(kind model.SignalKind, dir model.Direction, label string) model.Signal {
	return model.Signal{Kind: kind, Category: model.CategoryChart, Direction: dir, Label: label}
}
