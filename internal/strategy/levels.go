package strategy

import (
	"math"

	"SignalSentinel/internal/model"
)

// tradeLevels suggests a long-side target and stop for the close. It returns
// nil when the inputs needed by the configured policy are missing.
func tradeLevels(cfg Config, close, atr float64) *model.TradeLevels {
	if math.IsNaN(close) {
		return nil
	}
	switch cfg.LevelPolicy {
	case LevelPolicyATR:
		if math.IsNaN(atr) {
			return nil
		}
		return &model.TradeLevels{
			Target:   close + cfg.ATRTargetMultiple*atr,
			StopLoss: close - cfg.ATRStopMultiple*atr,
		}
	default:
		return &model.TradeLevels{
			Target:   close * (1 + cfg.TargetPct),
			StopLoss: close * (1 - cfg.StopLossPct),
		}
	}
}
