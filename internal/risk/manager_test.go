package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoSignalBot/internal/domain"
	"cryptoSignalBot/internal/ports"
)

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(DefaultConfig())
	require.NoError(t, err)
	return calc
}

func TestCalculator_Calculate(t *testing.T) {
	calc := newCalculator(t)

	tests := []struct {
		name     string
		entry    float64
		side     domain.Side
		wantSL   float64
		wantTPs  [TakeProfitLevels]float64
		wantErrs bool
	}{
		{
			name:    "long",
			entry:   100,
			side:    domain.Buy,
			wantSL:  98,
			wantTPs: [TakeProfitLevels]float64{101.5, 103, 104.5, 106},
		},
		{
			name:    "short",
			entry:   100,
			side:    domain.Sell,
			wantSL:  102,
			wantTPs: [TakeProfitLevels]float64{98.5, 97, 95.5, 94},
		},
		{name: "zero entry", entry: 0, side: domain.Buy, wantErrs: true},
		{name: "negative entry", entry: -5, side: domain.Sell, wantErrs: true},
		{name: "flat side", entry: 100, side: domain.Flat, wantErrs: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ladder, err := calc.Calculate(tt.entry, tt.side)
			if tt.wantErrs {
				assert.ErrorIs(t, err, ports.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSL, ladder.StopLoss, 1e-9)
			for i := range tt.wantTPs {
				assert.InDelta(t, tt.wantTPs[i], ladder.TakeProfits[i], 1e-9)
			}
		})
	}
}

func TestCalculator_Antisymmetric(t *testing.T) {
	calc := newCalculator(t)
	for _, entry := range []float64{0.0001, 1, 142.37, 65000} {
		long, err := calc.Calculate(entry, domain.Buy)
		require.NoError(t, err)
		short, err := calc.Calculate(entry, domain.Sell)
		require.NoError(t, err)

		assert.InDelta(t, entry-long.StopLoss, short.StopLoss-entry, entry*1e-12)
		for i := range long.TakeProfits {
			assert.InDelta(t, long.TakeProfits[i]-entry, entry-short.TakeProfits[i], entry*1e-12)
		}
	}
}

func TestCalculator_LadderIsOrdered(t *testing.T) {
	calc := newCalculator(t)
	long, err := calc.Calculate(50, domain.Buy)
	require.NoError(t, err)
	short, err := calc.Calculate(50, domain.Sell)
	require.NoError(t, err)
	for i := 1; i < TakeProfitLevels; i++ {
		assert.Greater(t, long.TakeProfits[i], long.TakeProfits[i-1])
		assert.Less(t, short.TakeProfits[i], short.TakeProfits[i-1])
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "zero stop", cfg: Config{StopLossPercent: 0, TakeProfitPercents: []float64{1, 2, 3, 4}}, wantErr: true},
		{name: "three targets", cfg: Config{StopLossPercent: 1, TakeProfitPercents: []float64{1, 2, 3}}, wantErr: true},
		{name: "descending targets", cfg: Config{StopLossPercent: 1, TakeProfitPercents: []float64{4, 3, 2, 1}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCalculator(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCalculator_ForPosition(t *testing.T) {
	calc := newCalculator(t)
	_, err := calc.ForPosition(&domain.Position{Side: domain.Flat})
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)

	ladder, err := calc.ForPosition(&domain.Position{Side: domain.Sell, EntryPrice: 200})
	require.NoError(t, err)
	assert.InDelta(t, 204.0, ladder.StopLoss, 1e-9)
}
