package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoSignalBot/internal/domain"
)

func makeKlines(closes []float64, volumes []float64) []*domain.Kline {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	klines := make([]*domain.Kline, len(closes))
	for i, c := range closes {
		vol := 100.0
		if volumes != nil {
			vol = volumes[i]
		}
		klines[i] = &domain.Kline{
			OpenTime: start.Add(time.Duration(i) * 15 * time.Minute),
			Symbol:   "SOLUSDT",
			Interval: "15m",
			Open:     c,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   vol,
			IsFinal:  true,
		}
	}
	return klines
}

func zigzag(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/3) + float64(i%4)
	}
	return closes
}

func TestBollinger_PopulationStdDev(t *testing.T) {
	nan := math.NaN()
	upper, middle, lower := Bollinger([]float64{1, 2, 3, 4, 5}, 5, 2)
	std := math.Sqrt(2) // population variance of 1..5 is 2
	assertSeries(t, []float64{nan, nan, nan, nan, 3 + 2*std}, upper)
	assertSeries(t, []float64{nan, nan, nan, nan, 3}, middle)
	assertSeries(t, []float64{nan, nan, nan, nan, 3 - 2*std}, lower)
}

func TestVolumeRatio(t *testing.T) {
	nan := math.NaN()
	sma, ratio := VolumeRatio([]float64{10, 10, 10, 40}, 3)
	assertSeries(t, []float64{nan, nan, 10, 20}, sma)
	assertSeries(t, []float64{nan, nan, 1, 2}, ratio)

	_, zero := VolumeRatio([]float64{0, 0, 0}, 3)
	assert.True(t, math.IsNaN(zero[2]))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "zero period", mutate: func(c *Config) { c.RSIPeriod = 0 }, wantErr: true},
		{name: "fast not below slow", mutate: func(c *Config) { c.EMAFastSpan = 21 }, wantErr: true},
		{name: "macd fast not below slow", mutate: func(c *Config) { c.MACDFast = 30 }, wantErr: true},
		{name: "bollinger period one", mutate: func(c *Config) { c.BBPeriod = 1 }, wantErr: true},
		{name: "non-positive deviation", mutate: func(c *Config) { c.BBStdDev = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewEngine(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEngine_WarmUp(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	warmUp := DefaultConfig().WarmUp()
	require.Equal(t, 26, warmUp)
	require.Equal(t, 27, engine.RequiredDataPoints())

	t.Run("shorter than warm-up has no warm rows", func(t *testing.T) {
		frame := engine.Compute(makeKlines(zigzag(warmUp-1), nil))
		assert.Len(t, frame.Rows, warmUp-1)
		assert.Equal(t, 0, frame.WarmRows())
		assert.False(t, frame.Ready())
		_, _, ok := frame.LastTwo()
		assert.False(t, ok)
	})

	t.Run("exactly warm-up has a single warm row", func(t *testing.T) {
		frame := engine.Compute(makeKlines(zigzag(warmUp), nil))
		assert.Equal(t, 1, frame.WarmRows())
		assert.False(t, frame.Ready())
	})

	t.Run("required data points is ready", func(t *testing.T) {
		frame := engine.Compute(makeKlines(zigzag(engine.RequiredDataPoints()), nil))
		assert.True(t, frame.Ready())
		prev, last, ok := frame.LastTwo()
		require.True(t, ok)
		assert.True(t, prev.Warm)
		assert.True(t, last.Warm)
		assert.False(t, math.IsNaN(last.BBUpper))
		assert.False(t, math.IsNaN(last.VolumeRatio))
		assert.False(t, math.IsNaN(last.RSI))
	})

	t.Run("empty input", func(t *testing.T) {
		frame := engine.Compute(nil)
		assert.Empty(t, frame.Rows)
		assert.False(t, frame.Ready())
	})
}

func TestEngine_IsCausal(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	closes := zigzag(100)
	full := engine.Compute(makeKlines(closes, nil))
	prefix := engine.Compute(makeKlines(closes[:60], nil))

	same := func(a, b float64) bool {
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.IsNaN(a) && math.IsNaN(b)
		}
		return math.Abs(a-b) < 1e-9
	}
	for i := range prefix.Rows {
		p, f := prefix.Rows[i], full.Rows[i]
		assert.True(t, same(p.EMAFast, f.EMAFast), "ema fast %d", i)
		assert.True(t, same(p.RSI, f.RSI), "rsi %d", i)
		assert.True(t, same(p.MACDSignal, f.MACDSignal), "macd signal %d", i)
		assert.True(t, same(p.BBLower, f.BBLower), "bb lower %d", i)
		assert.True(t, same(p.VolumeRatio, f.VolumeRatio), "volume ratio %d", i)
		assert.Equal(t, p.Warm, f.Warm)
	}
}

func TestEngine_RowValues(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	closes := zigzag(40)
	volumes := make([]float64, 40)
	for i := range volumes {
		volumes[i] = 100
	}
	volumes[39] = 300
	frame := engine.Compute(makeKlines(closes, volumes))
	last, ok := frame.Last()
	require.True(t, ok)

	assert.InDelta(t, EMA(closes, 9)[39], last.EMAFast, 1e-12)
	assert.InDelta(t, EMA(closes, 21)[39], last.EMASlow, 1e-12)
	assert.InDelta(t, 300.0/110.0, last.VolumeRatio, 1e-9) // (19*100+300)/20 = 110
	assert.InDelta(t, last.MACD-last.MACDSignal, last.MACDHistogram, 1e-12)
	assert.Equal(t, closes[39], last.Close())
}
