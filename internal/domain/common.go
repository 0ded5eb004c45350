package domain

// Side represents the side of the tracked position.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
	Flat Side = "FLAT"
)

// Direction is the directional outcome of a signal classification.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// Side maps a directional verdict onto the position side it would open.
// HOLD maps to Flat.
func (d Direction) Side() Side {
	switch d {
	case DirectionBuy:
		return Buy
	case DirectionSell:
		return Sell
	default:
		return Flat
	}
}

// ParseSide converts a persisted side string, treating anything unknown as Flat.
func ParseSide(s string) Side {
	switch Side(s) {
	case Buy:
		return Buy
	case Sell:
		return Sell
	default:
		return Flat
	}
}
