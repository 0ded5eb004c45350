package indicators

// RSI computes the relative strength index from a simple rolling mean of
// gains and losses over the trailing period deltas. This intentionally is not
// Wilder's smoothing.
//
// The first defined index is period (it needs period deltas). When the average
// loss over the window is zero the value is NaN, not 100.
func RSI(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := period; i < len(closes); i++ {
		var sumGain, sumLoss float64
		for j := i - period + 1; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}
		avgGain := sumGain / float64(period)
		avgLoss := sumLoss / float64(period)
		if avgLoss == 0 {
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// StochRSI rescales RSI into [0,1] against its own min/max over the trailing
// period. Windows containing an undefined RSI, or a flat window, yield NaN.
func StochRSI(rsi []float64, period int) []float64 {
	out := nanSeries(len(rsi))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(rsi); i++ {
		lo, hi := rsi[i], rsi[i]
		defined := true
		for j := i - period + 1; j <= i; j++ {
			v := rsi[j]
			if !isFinite(v) {
				defined = false
				break
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if !defined || hi == lo {
			continue
		}
		out[i] = (rsi[i] - lo) / (hi - lo)
	}
	return out
}
