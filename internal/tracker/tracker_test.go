package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoSignalBot/internal/domain"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func buy(strength float64) domain.Verdict {
	return domain.Verdict{Direction: domain.DirectionBuy, Strength: strength, Conditions: []string{"x", "y"}}
}

func sell(strength float64) domain.Verdict {
	return domain.Verdict{Direction: domain.DirectionSell, Strength: strength, Conditions: []string{"x", "y"}}
}

func TestNew(t *testing.T) {
	t.Run("no persisted state starts flat", func(t *testing.T) {
		tr := New("SOLUSDT", nil)
		assert.Equal(t, domain.Flat, tr.Side())
		assert.Equal(t, "SOLUSDT", tr.Position().Symbol)
	})

	t.Run("restores persisted position", func(t *testing.T) {
		tr := New("SOLUSDT", &domain.Position{EntryPrice: 150, Side: domain.Sell, EntryTime: t0, SignalStrength: 4})
		pos := tr.Position()
		assert.Equal(t, domain.Sell, pos.Side)
		assert.Equal(t, 150.0, pos.EntryPrice)
		assert.Equal(t, "SOLUSDT", pos.Symbol)
	})

	t.Run("persisted flat record is flat", func(t *testing.T) {
		tr := New("SOLUSDT", &domain.Position{Side: domain.Flat, EntryPrice: 99})
		assert.Equal(t, domain.Flat, tr.Side())
		assert.Zero(t, tr.Position().EntryPrice)
	})
}

func TestApply_Transitions(t *testing.T) {
	tests := []struct {
		name        string
		start       *domain.Position
		verdict     domain.Verdict
		price       float64
		wantChanged bool
		wantSide    domain.Side
		wantEntry   float64
	}{
		{name: "flat + hold", verdict: domain.Hold(), price: 100, wantSide: domain.Flat},
		{name: "flat + buy enters long", verdict: buy(3.5), price: 100, wantChanged: true, wantSide: domain.Buy, wantEntry: 100},
		{name: "flat + sell enters short", verdict: sell(3), price: 90, wantChanged: true, wantSide: domain.Sell, wantEntry: 90},
		{
			name:     "long + hold keeps entry",
			start:    &domain.Position{Side: domain.Buy, EntryPrice: 100, EntryTime: t0},
			verdict:  domain.Hold(),
			price:    120,
			wantSide: domain.Buy, wantEntry: 100,
		},
		{
			name:     "long + buy is not re-entered",
			start:    &domain.Position{Side: domain.Buy, EntryPrice: 100, EntryTime: t0},
			verdict:  buy(5),
			price:    120,
			wantSide: domain.Buy, wantEntry: 100,
		},
		{
			name:        "long + sell flips and overwrites",
			start:       &domain.Position{Side: domain.Buy, EntryPrice: 100, EntryTime: t0},
			verdict:     sell(4),
			price:       110,
			wantChanged: true, wantSide: domain.Sell, wantEntry: 110,
		},
		{
			name:        "short + buy flips",
			start:       &domain.Position{Side: domain.Sell, EntryPrice: 100, EntryTime: t0},
			verdict:     buy(3),
			price:       95,
			wantChanged: true, wantSide: domain.Buy, wantEntry: 95,
		},
		{name: "non-positive price is ignored", verdict: buy(3), price: 0, wantSide: domain.Flat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New("SOLUSDT", tt.start)
			at := t0.Add(time.Hour)
			tr1, changed := tr.Apply(tt.verdict, tt.price, at)

			assert.Equal(t, tt.wantChanged, changed)
			pos := tr.Position()
			assert.Equal(t, tt.wantSide, pos.Side)
			assert.Equal(t, tt.wantEntry, pos.EntryPrice)
			if changed {
				assert.Equal(t, at, pos.EntryTime)
				assert.Equal(t, tt.verdict.Strength, pos.SignalStrength)
				assert.Equal(t, tt.wantSide, tr1.To)
				assert.Equal(t, pos, tr1.Current)
			}
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	tr := New("SOLUSDT", nil)

	_, changed := tr.Apply(buy(3.5), 100, t0)
	require.True(t, changed)

	_, changed = tr.Apply(buy(4.5), 130, t0.Add(15*time.Minute))
	assert.False(t, changed)
	pos := tr.Position()
	assert.Equal(t, 100.0, pos.EntryPrice)
	assert.Equal(t, t0, pos.EntryTime)
	assert.Equal(t, 3.5, pos.SignalStrength)
}

func TestUnrealizedPnL(t *testing.T) {
	long := New("SOLUSDT", &domain.Position{Side: domain.Buy, EntryPrice: 100})
	assert.InDelta(t, 5.0, long.UnrealizedPnL(105), 1e-9)
	assert.InDelta(t, -2.0, long.UnrealizedPnL(98), 1e-9)

	short := New("SOLUSDT", &domain.Position{Side: domain.Sell, EntryPrice: 100})
	assert.InDelta(t, -5.0, short.UnrealizedPnL(105), 1e-9)
	assert.InDelta(t, 2.0, short.UnrealizedPnL(98), 1e-9)

	flat := New("SOLUSDT", nil)
	assert.Zero(t, flat.UnrealizedPnL(105))
}
