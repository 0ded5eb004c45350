// Package notify decides when a message is due and renders it.
package notify

import (
	"time"

	"cryptoSignalBot/internal/domain"
)

// DefaultCooldown is the minimum gap between repeated notifications for an unchanged side.
const DefaultCooldown = time.Hour

// Gate throttles outbound notifications. Its clock only advances through
// MarkSent, so a failed dispatch is retried under the same decision next cycle.
type Gate struct {
	cooldown time.Duration
	lastSent time.Time
}

// NewGate returns a gate with the given cooldown; non-positive values use DefaultCooldown.
func NewGate(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{cooldown: cooldown}
}

// Due reports whether a message should be dispatched this cycle. HOLD is never
// due. BUY/SELL is due when the tracked side changed or the cooldown elapsed
// since the last successful dispatch (never dispatched counts as elapsed).
func (g *Gate) Due(verdict domain.Verdict, sideChanged bool, now time.Time) bool {
	if !verdict.IsActionable() {
		return false
	}
	if sideChanged || g.lastSent.IsZero() {
		return true
	}
	return now.Sub(g.lastSent) >= g.cooldown
}

// MarkSent records a successful dispatch at t.
func (g *Gate) MarkSent(t time.Time) {
	g.lastSent = t
}

// LastSent returns the time of the last successful dispatch (zero if none).
func (g *Gate) LastSent() time.Time {
	return g.lastSent
}

// Cooldown returns the configured cooldown.
func (g *Gate) Cooldown() time.Duration {
	return g.cooldown
}
