package calculator

import "math"

// RSI computes the relative strength index from trailing arithmetic means of
// gains and losses over period close-to-close changes.
// When the average loss is zero the RSI is 100 if there was any gain and 50
// if there was no movement at all.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	gains := nanSlice(len(closes))
	losses := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if math.IsNaN(change) {
			continue
		}
		gains[i] = math.Max(change, 0)
		losses[i] = math.Max(-change, 0)
	}

	avgGain := SMA(gains, period)
	avgLoss := SMA(losses, period)
	for i := range out {
		out[i] = rsiFromAverages(avgGain[i], avgLoss[i])
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if math.IsNaN(avgGain) || math.IsNaN(avgLoss) {
		return math.NaN()
	}
	if avgLoss == 0 {
		if avgGain > 0 {
			return 100.0
		}
		return 50.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
