package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSeries(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.Truef(t, math.IsNaN(got[i]), "index %d: expected NaN, got %f", i, got[i])
			continue
		}
		assert.InDeltaf(t, want[i], got[i], 1e-6, "index %d", i)
	}
}

func TestEMA(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		values []float64
		span   int
		want   []float64
	}{
		{
			name:   "seeded by first value",
			values: []float64{1, 2, 3},
			span:   3, // alpha = 0.5
			want:   []float64{1, 1.5, 2.25},
		},
		{
			name:   "leading NaN carried until first finite value",
			values: []float64{nan, 4, 8},
			span:   3,
			want:   []float64{nan, 4, 6},
		},
		{
			name:   "empty input",
			values: []float64{},
			span:   9,
			want:   []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSeries(t, tt.want, EMA(tt.values, tt.span))
		})
	}
}

func TestEMA_ConvergesOnConstantSeries(t *testing.T) {
	values := make([]float64, 300)
	values[0] = 50
	for i := 1; i < len(values); i++ {
		values[i] = 100
	}

	for _, span := range []int{9, 21, 26} {
		ema := EMA(values, span)
		assert.InDelta(t, 100.0, ema[len(ema)-1], 1e-9, "span %d", span)
	}
}

func TestSMA(t *testing.T) {
	nan := math.NaN()
	assertSeries(t, []float64{nan, nan, 2, 3, 4}, SMA([]float64{1, 2, 3, 4, 5}, 3))
	assertSeries(t, []float64{nan, nan}, SMA([]float64{1, 2}, 3))
}

func TestMACD_ConstantSeriesIsFlat(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 42
	}
	macd, signal, hist := MACD(closes, 12, 26, 9)
	for i := range closes {
		assert.InDelta(t, 0.0, macd[i], 1e-12)
		assert.InDelta(t, 0.0, signal[i], 1e-12)
		assert.InDelta(t, 0.0, hist[i], 1e-12)
	}
}

func TestMACD_HistogramIsDifference(t *testing.T) {
	closes := []float64{10, 11, 12, 11, 13, 14, 13, 15, 16, 15}
	macd, signal, hist := MACD(closes, 2, 4, 3)
	for i := range closes {
		assert.InDelta(t, macd[i]-signal[i], hist[i], 1e-12)
	}
	fast, slow := EMA(closes, 2), EMA(closes, 4)
	assert.InDelta(t, fast[9]-slow[9], macd[9], 1e-12)
}
