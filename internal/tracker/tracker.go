// Package tracker holds the single hypothetical position and moves it
// between FLAT, LONG and SHORT as verdicts arrive.
package tracker

import (
	"time"

	"cryptoSignalBot/internal/domain"
)

// Transition describes a position change made by Apply.
type Transition struct {
	From     domain.Side
	To       domain.Side
	Previous domain.Position
	Current  domain.Position
}

// Tracker is not safe for concurrent use; the polling loop is its only caller.
type Tracker struct {
	position domain.Position
}

// New creates a tracker for symbol, restoring persisted when non-nil.
// Without persisted state the position is FLAT.
func New(symbol string, persisted *domain.Position) *Tracker {
	pos := domain.Position{Symbol: symbol, Side: domain.Flat}
	if persisted != nil && persisted.IsOpen() {
		pos = *persisted
		pos.Symbol = symbol
	}
	return &Tracker{position: pos}
}

// Position returns a copy of the tracked position.
func (t *Tracker) Position() domain.Position {
	return t.position
}

// Side returns the tracked side.
func (t *Tracker) Side() domain.Side {
	return t.position.Side
}

// Apply feeds a fresh verdict. HOLD and verdicts matching the current side
// leave the position untouched. Any other direction overwrites the position
// with an entry at price, without settling the one it replaces.
func (t *Tracker) Apply(verdict domain.Verdict, price float64, at time.Time) (Transition, bool) {
	if !verdict.IsActionable() || price <= 0 {
		return Transition{}, false
	}
	next := verdict.Direction.Side()
	if next == t.position.Side {
		return Transition{}, false
	}

	previous := t.position
	t.position = domain.Position{
		Symbol:         previous.Symbol,
		EntryPrice:     price,
		Side:           next,
		EntryTime:      at,
		SignalStrength: verdict.Strength,
	}
	return Transition{From: previous.Side, To: next, Previous: previous, Current: t.position}, true
}

// UnrealizedPnL returns the percent P&L of the tracked position at price.
func (t *Tracker) UnrealizedPnL(price float64) float64 {
	return t.position.UnrealizedPnLPercent(price)
}
