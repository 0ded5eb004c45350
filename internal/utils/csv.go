package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cryptoSignalBot/internal/strategy/indicators"
)

var frameHeader = []string{
	"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume", "is_final",
	"ema_fast", "ema_slow", "rsi", "stoch_rsi", "macd", "macd_signal", "macd_histogram",
	"bb_upper", "bb_middle", "bb_lower", "volume_sma", "volume_ratio", "warm",
}

// WriteFrameToCSV writes the frame to filename, creating parent directories.
func WriteFrameToCSV(frame *indicators.Frame, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	return writeAndClose(file, frame)
}

// writeAndClose reports the close error when the write itself succeeded.
func writeAndClose(wc io.WriteCloser, frame *indicators.Frame) (err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()
	return WriteFrameCSV(wc, frame)
}

// WriteFrameCSV writes one line per candle with its indicator values.
// Undefined values are left empty.
func WriteFrameCSV(w io.Writer, frame *indicators.Frame) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(frameHeader); err != nil {
		return err
	}
	if frame != nil {
		for _, r := range frame.Rows {
			k := r.Kline
			if k == nil {
				continue
			}
			if err := writer.Write([]string{
				k.OpenTime.UTC().Format(time.RFC3339),
				k.CloseTime.UTC().Format(time.RFC3339),
				k.Symbol,
				k.Interval,
				formatFloat(k.Open),
				formatFloat(k.High),
				formatFloat(k.Low),
				formatFloat(k.Close),
				formatFloat(k.Volume),
				strconv.FormatBool(k.IsFinal),
				formatFloat(r.EMAFast),
				formatFloat(r.EMASlow),
				formatFloat(r.RSI),
				formatFloat(r.StochRSI),
				formatFloat(r.MACD),
				formatFloat(r.MACDSignal),
				formatFloat(r.MACDHistogram),
				formatFloat(r.BBUpper),
				formatFloat(r.BBMiddle),
				formatFloat(r.BBLower),
				formatFloat(r.VolumeSMA),
				formatFloat(r.VolumeRatio),
				strconv.FormatBool(r.Warm),
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
