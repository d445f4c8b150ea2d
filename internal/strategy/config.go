package strategy

import (
	"fmt"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/pattern"
)

// Target/stop policies.
const (
	LevelPolicyPercent = "percent"
	LevelPolicyATR     = "atr"
)

// Config is every tunable the engine reads. Zero values are not meaningful;
// start from DefaultConfig.
type Config struct {
	Indicators calculator.FrameConfig `yaml:",inline"`
	Patterns   pattern.Config         `yaml:",inline"`

	MinBars     int `yaml:"min_bars"`
	SwingWindow int `yaml:"swing_window"`

	RSIOversold           float64 `yaml:"rsi_oversold"`
	RSIOverbought         float64 `yaml:"rsi_overbought"`
	VolumeSurgeMultiplier float64 `yaml:"volume_surge_multiplier"`
	NearSupportFactor     float64 `yaml:"near_support_factor"`

	// TriggerThreshold is the number of counted indicator flags that fires an
	// alert on its own. Any pattern match fires regardless.
	TriggerThreshold int  `yaml:"trigger_threshold"`
	CountRSIExtremes bool `yaml:"count_rsi_extremes"`
	CountVolumeSurge bool `yaml:"count_volume_surge"`

	LevelPolicy       string  `yaml:"level_policy"`
	StopLossPct       float64 `yaml:"stop_loss_pct"`
	TargetPct         float64 `yaml:"target_pct"`
	ATRStopMultiple   float64 `yaml:"atr_stop_multiple"`
	ATRTargetMultiple float64 `yaml:"atr_target_multiple"`
}

// DefaultConfig returns the standard engine settings.
func DefaultConfig() Config {
	return Config{
		Indicators:            calculator.DefaultFrameConfig(),
		Patterns:              pattern.DefaultConfig(),
		MinBars:               100,
		SwingWindow:           calculator.DefaultSwingWindow,
		RSIOversold:           30,
		RSIOverbought:         70,
		VolumeSurgeMultiplier: 1.5,
		NearSupportFactor:     1.03,
		TriggerThreshold:      2,
		CountRSIExtremes:      true,
		CountVolumeSurge:      false,
		LevelPolicy:           LevelPolicyPercent,
		StopLossPct:           0.03,
		TargetPct:             0.05,
		ATRStopMultiple:       1,
		ATRTargetMultiple:     2,
	}
}

// Validate checks the engine settings, including the embedded frame and
// pattern settings.
func (c Config) Validate() error {
	if err := c.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	if err := c.Patterns.Validate(); err != nil {
		return fmt.Errorf("patterns: %w", err)
	}
	if c.MinBars < 2 {
		return fmt.Errorf("min_bars must be at least 2, got %d", c.MinBars)
	}
	if c.SwingWindow < 1 {
		return fmt.Errorf("swing_window must be positive, got %d", c.SwingWindow)
	}
	if c.RSIOversold <= 0 || c.RSIOverbought >= 100 || c.RSIOversold >= c.RSIOverbought {
		return fmt.Errorf("rsi thresholds must satisfy 0 < oversold < overbought < 100, got %.1f/%.1f",
			c.RSIOversold, c.RSIOverbought)
	}
	if c.VolumeSurgeMultiplier <= 0 {
		return fmt.Errorf("volume_surge_multiplier must be positive")
	}
	if c.NearSupportFactor < 1 {
		return fmt.Errorf("near_support_factor must be at least 1")
	}
	if c.TriggerThreshold < 1 {
		return fmt.Errorf("trigger_threshold must be at least 1, got %d", c.TriggerThreshold)
	}
	switch c.LevelPolicy {
	case LevelPolicyPercent:
		if c.StopLossPct <= 0 || c.StopLossPct >= 1 || c.TargetPct <= 0 {
			return fmt.Errorf("stop_loss_pct must be in (0,1) and target_pct positive")
		}
	case LevelPolicyATR:
		if c.ATRStopMultiple <= 0 || c.ATRTargetMultiple <= 0 {
			return fmt.Errorf("atr multiples must be positive")
		}
	default:
		return fmt.Errorf("unknown level_policy %q (want %q or %q)", c.LevelPolicy, LevelPolicyPercent, LevelPolicyATR)
	}
	return nil
}
