// Package indicators derives the per-candle indicator frame the signal
// classifier reads. Every series function is causal: output index i only
// depends on inputs at indices <= i. Undefined values are NaN.
package indicators

import (
	"fmt"
	"math"
)

// Config holds the indicator periods.
type Config struct {
	EMAFastSpan  int     // e.g., 9
	EMASlowSpan  int     // e.g., 21
	RSIPeriod    int     // e.g., 14
	MACDFast     int     // e.g., 12
	MACDSlow     int     // e.g., 26
	MACDSignal   int     // e.g., 9
	BBPeriod     int     // e.g., 20
	BBStdDev     float64 // e.g., 2.0
	VolumePeriod int     // e.g., 20
}

// DefaultConfig returns the periods the bot ships with.
func DefaultConfig() Config {
	return Config{
		EMAFastSpan:  9,
		EMASlowSpan:  21,
		RSIPeriod:    14,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		BBPeriod:     20,
		BBStdDev:     2.0,
		VolumePeriod: 20,
	}
}

// Validate checks the periods are usable.
func (c Config) Validate() error {
	if c.EMAFastSpan <= 0 || c.EMASlowSpan <= 0 || c.RSIPeriod <= 0 ||
		c.MACDFast <= 0 || c.MACDSlow <= 0 || c.MACDSignal <= 0 ||
		c.BBPeriod <= 0 || c.VolumePeriod <= 0 {
		return fmt.Errorf("indicator periods must be positive")
	}
	if c.EMAFastSpan >= c.EMASlowSpan {
		return fmt.Errorf("fast EMA span (%d) must be less than slow EMA span (%d)", c.EMAFastSpan, c.EMASlowSpan)
	}
	if c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("MACD fast span (%d) must be less than MACD slow span (%d)", c.MACDFast, c.MACDSlow)
	}
	if c.BBPeriod < 2 {
		return fmt.Errorf("bollinger period must be at least 2")
	}
	if c.BBStdDev <= 0 {
		return fmt.Errorf("bollinger deviation multiplier must be positive")
	}
	return nil
}

// WarmUp returns the number of candles needed before a row is fully defined:
// the longest rolling window, where RSI needs one extra candle for its first delta.
func (c Config) WarmUp() int {
	longest := c.EMASlowSpan
	for _, p := range []int{c.MACDSlow, c.BBPeriod, c.VolumePeriod, c.RSIPeriod + 1} {
		if p > longest {
			longest = p
		}
	}
	return longest
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
