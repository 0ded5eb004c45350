package indicators

import (
	"github.com/markcheno/go-talib"
)

// Bollinger returns the upper, middle and lower bands: a period SMA plus and
// minus k population standard deviations over the same trailing window.
func Bollinger(closes []float64, period int, k float64) (upper, middle, lower []float64) {
	upper, middle, lower = nanSeries(len(closes)), nanSeries(len(closes)), nanSeries(len(closes))
	if period <= 1 || len(closes) < period {
		return upper, middle, lower
	}

	u, m, l := talib.BBands(closes, period, k, k, talib.SMA)
	for i := period - 1; i < len(closes); i++ {
		upper[i], middle[i], lower[i] = u[i], m[i], l[i]
	}
	return upper, middle, lower
}
