package calculator

import (
	"fmt"

	"SignalSentinel/internal/model"
)

// Moving-average periods behind the SMA50/SMA100/SMA200 columns.
const (
	SMAFastPeriod = 50
	SMAMidPeriod  = 100
	SMASlowPeriod = 200
)

// FrameConfig holds the tunable indicator periods.
type FrameConfig struct {
	RSIPeriod    int `yaml:"rsi_period"`
	MACDFast     int `yaml:"macd_fast"`
	MACDSlow     int `yaml:"macd_slow"`
	MACDSignal   int `yaml:"macd_signal"`
	ATRPeriod    int `yaml:"atr_period"`
	VolumePeriod int `yaml:"volume_period"`
}

// DefaultFrameConfig returns the standard periods (RSI 14, MACD 12/26/9, ATR 14, volume 20).
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{
		RSIPeriod:    14,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		ATRPeriod:    14,
		VolumePeriod: 20,
	}
}

// Validate checks that every period is usable.
func (c FrameConfig) Validate() error {
	for name, v := range map[string]int{
		"rsi_period":    c.RSIPeriod,
		"macd_fast":     c.MACDFast,
		"macd_slow":     c.MACDSlow,
		"macd_signal":   c.MACDSignal,
		"atr_period":    c.ATRPeriod,
		"volume_period": c.VolumePeriod,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be below macd_slow (%d)", c.MACDFast, c.MACDSlow)
	}
	return nil
}

// BuildFrame derives the indicator frame for bars. The input is never modified.
func BuildFrame(bars []model.OHLCV, cfg FrameConfig) *model.IndicatorFrame {
	closes := extractCloses(bars)
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		volumes[i] = b.Volume
	}

	macd, signal := MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	return &model.IndicatorFrame{
		SMA50:      SMA(closes, SMAFastPeriod),
		SMA100:     SMA(closes, SMAMidPeriod),
		SMA200:     SMA(closes, SMASlowPeriod),
		RSI:        RSI(closes, cfg.RSIPeriod),
		MACD:       macd,
		MACDSignal: signal,
		ATR:        ATR(bars, cfg.ATRPeriod),
		AvgVol:     SMA(volumes, cfg.VolumePeriod),
	}
}
