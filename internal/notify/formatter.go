package notify

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptoSignalBot/internal/domain"
	"cryptoSignalBot/internal/risk"
	"cryptoSignalBot/internal/strategy/indicators"
)

// SignalReport is everything a signal message renders.
type SignalReport struct {
	Symbol   string
	Interval string
	Verdict  domain.Verdict
	Price    float64
	Position domain.Position
	PnL      float64
	Ladder   *risk.Ladder // nil when the position is flat
	Row      indicators.Row
	At       time.Time
}

var directionIcon = map[domain.Direction]string{
	domain.DirectionBuy:  "🟢",
	domain.DirectionSell: "🔴",
	domain.DirectionHold: "⚪",
}

// FormatSignal renders the Telegram HTML message for a verdict.
func FormatSignal(r SignalReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s <b>%s %s</b> | %s\n", directionIcon[r.Verdict.Direction], r.Verdict.Direction, r.Symbol, r.Interval))
	b.WriteString(fmt.Sprintf("Strength: %s/%s\n", decimal.NewFromFloat(r.Verdict.Strength).StringFixed(1), decimal.NewFromFloat(5).StringFixed(1)))
	b.WriteString(fmt.Sprintf("Price: %s\n", FormatPrice(r.Price)))

	if len(r.Verdict.Conditions) > 0 {
		b.WriteString("\n<b>Conditions:</b>\n")
		for _, c := range r.Verdict.Conditions {
			b.WriteString(fmt.Sprintf("  • %s\n", c))
		}
	}

	b.WriteString("\n<b>Indicators:</b>\n")
	b.WriteString(fmt.Sprintf("  EMA fast/slow: %s / %s\n", FormatPrice(r.Row.EMAFast), FormatPrice(r.Row.EMASlow)))
	b.WriteString(fmt.Sprintf("  RSI: %s", formatFixed(r.Row.RSI, 1)))
	if !math.IsNaN(r.Row.StochRSI) {
		b.WriteString(fmt.Sprintf(" | StochRSI: %s", formatFixed(r.Row.StochRSI, 2)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  MACD: %s (signal %s)\n", formatFixed(r.Row.MACD, 4), formatFixed(r.Row.MACDSignal, 4)))
	b.WriteString(fmt.Sprintf("  BB: %s - %s\n", FormatPrice(r.Row.BBLower), FormatPrice(r.Row.BBUpper)))
	b.WriteString(fmt.Sprintf("  Volume ratio: %sx\n", formatFixed(r.Row.VolumeRatio, 2)))

	if r.Position.IsOpen() {
		b.WriteString("\n<b>Position:</b>\n")
		b.WriteString(fmt.Sprintf("  Side: %s @ %s (since %s)\n", r.Position.Side, FormatPrice(r.Position.EntryPrice), r.Position.EntryTime.UTC().Format("2006-01-02 15:04")))
		b.WriteString(fmt.Sprintf("  Unrealized P&L: %s%%\n", formatSigned(r.PnL, 2)))
		if r.Ladder != nil {
			b.WriteString(fmt.Sprintf("  Stop loss: %s\n", FormatPrice(r.Ladder.StopLoss)))
			for i, tp := range r.Ladder.TakeProfits {
				b.WriteString(fmt.Sprintf("  TP%d: %s\n", i+1, FormatPrice(tp)))
			}
		}
	}

	b.WriteString(fmt.Sprintf("\n%s UTC", r.At.UTC().Format("2006-01-02 15:04")))
	return b.String()
}

// FormatStartup renders the message sent when the bot starts.
func FormatStartup(symbol, interval string, pos domain.Position) string {
	msg := fmt.Sprintf("🚀 <b>Signal bot started</b> | %s %s\n", symbol, interval)
	if pos.IsOpen() {
		msg += fmt.Sprintf("Tracking %s @ %s", pos.Side, FormatPrice(pos.EntryPrice))
	} else {
		msg += "No open position"
	}
	return msg
}

// FormatShutdown renders the message sent when the bot stops.
func FormatShutdown(symbol string) string {
	return fmt.Sprintf("🛑 <b>Signal bot stopped</b> | %s", symbol)
}

// FormatPrice rounds a price to a precision that suits its magnitude.
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	abs := math.Abs(v)
	places := int32(6)
	switch {
	case abs >= 1000:
		places = 2
	case abs >= 1:
		places = 4
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func formatFixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func formatSigned(v float64, places int32) string {
	s := formatFixed(v, places)
	if v >= 0 && s != "n/a" {
		return "+" + s
	}
	return s
}
