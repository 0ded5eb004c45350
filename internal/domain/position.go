package domain

import "time"

// Position is the single hypothetical position tracked across polling cycles.
// The zero value is a flat position.
type Position struct {
	Symbol         string    // Trading symbol (e.g., "SOLUSDT")
	EntryPrice     float64   // Close price of the candle that opened the position
	Side           Side      // BUY, SELL or FLAT
	EntryTime      time.Time // When the position was (re)entered
	SignalStrength float64   // Strength of the verdict that opened it
}

// IsOpen reports whether the position is long or short.
func (p *Position) IsOpen() bool {
	return p != nil && (p.Side == Buy || p.Side == Sell)
}

// UnrealizedPnLPercent returns the unrealized profit in percent of entry at price.
// Flat positions (and positions without a usable entry) yield 0.
func (p *Position) UnrealizedPnLPercent(price float64) float64 {
	if !p.IsOpen() || p.EntryPrice <= 0 {
		return 0
	}
	switch p.Side {
	case Buy:
		return (price - p.EntryPrice) / p.EntryPrice * 100
	case Sell:
		return (p.EntryPrice - price) / p.EntryPrice * 100
	}
	return 0
}
