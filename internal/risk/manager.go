package risk

import (
	"fmt"
	"sort"

	"cryptoSignalBot/internal/domain"
	"cryptoSignalBot/internal/ports"
)

// TakeProfitLevels is the fixed length of the take-profit ladder.
const TakeProfitLevels = 4

// Config holds risk parameters. Percentages are in percent (1.5 means 1.5%).
type Config struct {
	StopLossPercent    float64
	TakeProfitPercents []float64 // ascending, TakeProfitLevels entries
}

// DefaultConfig returns the stop-loss and the 1.5/3.0/4.5/6.0 take-profit ladder.
func DefaultConfig() Config {
	return Config{
		StopLossPercent:    2.0,
		TakeProfitPercents: []float64{1.5, 3.0, 4.5, 6.0},
	}
}

// Validate checks the risk parameters.
func (c Config) Validate() error {
	if c.StopLossPercent <= 0 || c.StopLossPercent >= 100 {
		return fmt.Errorf("stop loss percent must be between 0 and 100 (exclusive), got %v", c.StopLossPercent)
	}
	if len(c.TakeProfitPercents) != TakeProfitLevels {
		return fmt.Errorf("expected %d take profit percents, got %d", TakeProfitLevels, len(c.TakeProfitPercents))
	}
	for _, p := range c.TakeProfitPercents {
		if p <= 0 || p >= 100 {
			return fmt.Errorf("take profit percent must be between 0 and 100 (exclusive), got %v", p)
		}
	}
	if !sort.Float64sAreSorted(c.TakeProfitPercents) {
		return fmt.Errorf("take profit percents must be ascending: %v", c.TakeProfitPercents)
	}
	return nil
}

// Ladder is the stop-loss and take-profit prices for an entry.
// It is derived on demand and never persisted.
type Ladder struct {
	StopLoss    float64
	TakeProfits [TakeProfitLevels]float64
}

// Calculator derives risk ladders.
type Calculator struct {
	config Config
}

// NewCalculator validates config and returns a calculator.
func NewCalculator(config Config) (*Calculator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	tps := make([]float64, len(config.TakeProfitPercents))
	copy(tps, config.TakeProfitPercents)
	config.TakeProfitPercents = tps
	return &Calculator{config: config}, nil
}

// Calculate returns the ladder for an entry on side. BUY places the stop below
// and the targets above entry; SELL mirrors it.
func (c *Calculator) Calculate(entryPrice float64, side domain.Side) (Ladder, error) {
	if entryPrice <= 0 {
		return Ladder{}, fmt.Errorf("entry price must be positive, got %v: %w", entryPrice, ports.ErrInvalidRequest)
	}

	var sign float64
	switch side {
	case domain.Buy:
		sign = 1
	case domain.Sell:
		sign = -1
	default:
		return Ladder{}, fmt.Errorf("cannot derive risk ladder for side %q: %w", side, ports.ErrInvalidRequest)
	}

	ladder := Ladder{StopLoss: entryPrice * (1 - sign*c.config.StopLossPercent/100)}
	for i, pct := range c.config.TakeProfitPercents {
		ladder.TakeProfits[i] = entryPrice * (1 + sign*pct/100)
	}
	return ladder, nil
}

// ForPosition returns the ladder for an open position.
func (c *Calculator) ForPosition(pos *domain.Position) (Ladder, error) {
	if !pos.IsOpen() {
		return Ladder{}, fmt.Errorf("position is flat: %w", ports.ErrInvalidRequest)
	}
	return c.Calculate(pos.EntryPrice, pos.Side)
}
