package indicators

import (
	"github.com/markcheno/go-talib"
)

// EMA computes the exponential moving average with smoothing factor 2/(span+1).
// It is seeded by the first value, so every index is defined.
// NaN inputs before the first finite value are carried through as NaN and the
// recurrence starts at the first finite value.
func EMA(values []float64, span int) []float64 {
	out := nanSeries(len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)

	seeded := false
	var ema float64
	for i, v := range values {
		if !seeded {
			if !isFinite(v) {
				continue
			}
			ema = v
			seeded = true
			out[i] = ema
			continue
		}
		ema = alpha*v + (1-alpha)*ema
		out[i] = ema
	}
	return out
}

// SMA computes the simple moving average over a full trailing window.
// Indices before the window fills are NaN.
func SMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sma := talib.Sma(values, period)
	for i := period - 1; i < len(values) && i < len(sma); i++ {
		out[i] = sma[i]
	}
	return out
}
