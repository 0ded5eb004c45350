// Package strategy classifies the latest two indicator rows into a scored
// BUY/SELL/HOLD verdict.
package strategy

import (
	"fmt"
	"math"

	"cryptoSignalBot/internal/domain"
	"cryptoSignalBot/internal/strategy/indicators"
)

// Detector weights.
const (
	WeightEMACross       = 2.0
	WeightRSIReversal    = 1.0
	WeightMACDCross      = 1.5
	WeightBollingerTouch = 1.0
	WeightVolume         = 0.5

	MaxStrength = 5.0

	minTriggers = 2
	minStrength = 3.0
)

// Condition names reported on verdicts.
const (
	CondEMABullish     = "EMA Bullish Cross"
	CondEMABearish     = "EMA Bearish Cross"
	CondRSIOversold    = "RSI Oversold Recovery"
	CondRSIOverbought  = "RSI Overbought Reversal"
	CondMACDBullish    = "MACD Bullish Cross"
	CondMACDBearish    = "MACD Bearish Cross"
	CondBollingerLower = "Bollinger Lower Band Touch"
	CondBollingerUpper = "Bollinger Upper Band Touch"
	CondHighVolume     = "High Volume Confirmation"
)

// Config holds the classifier thresholds.
type Config struct {
	RSIOversold          float64 // e.g., 30.0
	RSIOverbought        float64 // e.g., 70.0
	VolumeRatioThreshold float64 // e.g., 1.5
}

// DefaultConfig returns the thresholds the bot ships with.
func DefaultConfig() Config {
	return Config{RSIOversold: 30, RSIOverbought: 70, VolumeRatioThreshold: 1.5}
}

// Strategy evaluates crossover detectors on the last two rows of a frame.
// It holds no mutable state; Classify is deterministic.
type Strategy struct {
	cfg Config
}

// New creates a new Strategy instance.
func New(cfg Config) (*Strategy, error) {
	if cfg.RSIOverbought <= cfg.RSIOversold || cfg.RSIOverbought > 100 || cfg.RSIOversold < 0 {
		return nil, fmt.Errorf("invalid RSI thresholds (overbought must be > oversold, between 0-100)")
	}
	if cfg.VolumeRatioThreshold <= 0 {
		return nil, fmt.Errorf("volume ratio threshold must be positive")
	}
	return &Strategy{cfg: cfg}, nil
}

// Classify returns the verdict for a frame. Frames without two warm rows are HOLD.
func (s *Strategy) Classify(frame *indicators.Frame) domain.Verdict {
	prev, last, ok := frame.LastTwo()
	if !ok {
		return domain.Hold()
	}
	return s.Evaluate(prev, last)
}

type tally struct {
	triggers   int
	strength   float64
	conditions []string
}

func (t *tally) add(weight float64, condition string) {
	t.triggers++
	t.strength += weight
	t.conditions = append(t.conditions, condition)
}

func (t *tally) qualifies() bool {
	return t.triggers >= minTriggers && t.strength >= minStrength
}

// Evaluate scores the transition from prev to last.
func (s *Strategy) Evaluate(prev, last indicators.Row) domain.Verdict {
	var buy, sell tally

	switch cross(prev.EMAFast, prev.EMASlow, last.EMAFast, last.EMASlow) {
	case crossedAbove:
		buy.add(WeightEMACross, CondEMABullish)
	case crossedBelow:
		sell.add(WeightEMACross, CondEMABearish)
	}

	if cross(prev.RSI, s.cfg.RSIOversold, last.RSI, s.cfg.RSIOversold) == crossedAbove {
		buy.add(WeightRSIReversal, CondRSIOversold)
	} else if cross(prev.RSI, s.cfg.RSIOverbought, last.RSI, s.cfg.RSIOverbought) == crossedBelow {
		sell.add(WeightRSIReversal, CondRSIOverbought)
	}

	switch cross(prev.MACD, prev.MACDSignal, last.MACD, last.MACDSignal) {
	case crossedAbove:
		buy.add(WeightMACDCross, CondMACDBullish)
	case crossedBelow:
		sell.add(WeightMACDCross, CondMACDBearish)
	}

	if defined(prev.Close(), prev.BBLower, last.Close(), last.BBLower, prev.BBUpper, last.BBUpper) {
		if last.Close() < last.BBLower && prev.Close() >= prev.BBLower {
			buy.add(WeightBollingerTouch, CondBollingerLower)
		} else if last.Close() > last.BBUpper && prev.Close() <= prev.BBUpper {
			sell.add(WeightBollingerTouch, CondBollingerUpper)
		}
	}

	// Volume only confirms a side that already fired, and never both.
	if defined(last.VolumeRatio) && last.VolumeRatio >= s.cfg.VolumeRatioThreshold {
		switch {
		case buy.triggers >= 1 && buy.triggers > sell.triggers:
			buy.strength += WeightVolume
			buy.conditions = append(buy.conditions, CondHighVolume)
		case sell.triggers >= 1 && sell.triggers > buy.triggers:
			sell.strength += WeightVolume
			sell.conditions = append(sell.conditions, CondHighVolume)
		}
	}

	buyOK, sellOK := buy.qualifies(), sell.qualifies()
	switch {
	case buyOK && !sellOK:
		return domain.Verdict{Direction: domain.DirectionBuy, Strength: capStrength(buy.strength), Conditions: buy.conditions}
	case sellOK && !buyOK:
		return domain.Verdict{Direction: domain.DirectionSell, Strength: capStrength(sell.strength), Conditions: sell.conditions}
	}

	verdict := domain.Hold()
	verdict.Conditions = append(verdict.Conditions, buy.conditions...)
	verdict.Conditions = append(verdict.Conditions, sell.conditions...)
	verdict.Conflict = buyOK && sellOK
	return verdict
}

type crossing int

const (
	noCross crossing = iota
	crossedAbove
	crossedBelow
)

// cross detects a moving above or below b between the previous and last sample.
// Touching counts as the starting side, so a series resting on b and then
// leaving it is a cross. NaN inputs never cross.
func cross(prevA, prevB, lastA, lastB float64) crossing {
	if !defined(prevA, prevB, lastA, lastB) {
		return noCross
	}
	switch {
	case prevA <= prevB && lastA > lastB:
		return crossedAbove
	case prevA >= prevB && lastA < lastB:
		return crossedBelow
	}
	return noCross
}

func defined(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func capStrength(v float64) float64 {
	return math.Min(v, MaxStrength)
}
