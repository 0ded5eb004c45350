package domain

// Verdict is the classification produced fresh every cycle.
type Verdict struct {
	Direction  Direction
	Strength   float64  // 0..5, forced to 0 for HOLD
	Conditions []string // Human readable trigger names, buy side first
	// Conflict is set when buy and sell both qualified; the verdict is then HOLD.
	Conflict bool
}

// Hold returns an empty HOLD verdict.
func Hold() Verdict {
	return Verdict{Direction: DirectionHold, Conditions: []string{}}
}

// IsActionable reports whether the verdict is BUY or SELL.
func (v Verdict) IsActionable() bool {
	return v.Direction == DirectionBuy || v.Direction == DirectionSell
}
