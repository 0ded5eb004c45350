package domain

import (
	"math"
	"time"
)

// Kline represents a single OHLCV candle. Klines are immutable once produced
// and are always handled as chronologically ordered slices.
type Kline struct {
	OpenTime  time.Time // Start time of the interval
	CloseTime time.Time // End time of the interval
	Symbol    string    // Trading symbol
	Interval  string    // Kline interval (e.g., "15m")
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	IsFinal   bool // False for the candle that is still forming
}

// Valid reports whether the kline carries finite, positive prices and a non-negative volume.
func (k *Kline) Valid() bool {
	if k == nil {
		return false
	}
	for _, v := range []float64{k.Open, k.High, k.Low, k.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	return k.Volume >= 0 && !math.IsNaN(k.Volume) && !math.IsInf(k.Volume, 0)
}
