package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoSignalBot/internal/domain"
	"cryptoSignalBot/internal/strategy/indicators"
)

func sampleFrame() *indicators.Frame {
	open := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	k := &domain.Kline{
		OpenTime: open, CloseTime: open.Add(15 * time.Minute), Symbol: "SOLUSDT", Interval: "15m",
		Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1234.5, IsFinal: true,
	}
	return &indicators.Frame{
		WarmUp: 1,
		Rows: []indicators.Row{{
			Kline: k, EMAFast: 100.25, EMASlow: 100.1, RSI: math.NaN(), StochRSI: math.NaN(),
			MACD: 0.15, MACDSignal: 0.1, MACDHistogram: 0.05,
			BBUpper: 102, BBMiddle: 100, BBLower: 98, VolumeSMA: 1000, VolumeRatio: 1.2345, Warm: true,
		}},
	}
}

func TestWriteFrameCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrameCSV(&buf, sampleFrame()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, frameHeader, records[0])

	row := records[1]
	require.Len(t, row, len(frameHeader))
	assert.Equal(t, "2024-01-01T00:00:00Z", row[0])
	assert.Equal(t, "100.5", row[7])
	assert.Equal(t, "true", row[9])
	assert.Equal(t, "", row[12], "NaN RSI is left empty")
	assert.Equal(t, "1.2345", row[21])
	assert.Equal(t, "true", row[22])
}

func TestWriteFrameCSV_NilFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrameCSV(&buf, nil))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestWriteFrameToCSV_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "frame.csv")
	require.NoError(t, WriteFrameToCSV(sampleFrame(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SOLUSDT")
}

type closeRecorder struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.closeErr
}

type failingWriter struct{ closeRecorder }

func (f *failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteAndClose(t *testing.T) {
	t.Run("close error surfaces", func(t *testing.T) {
		errClose := errors.New("close failed")
		wc := &closeRecorder{closeErr: errClose}
		err := writeAndClose(wc, sampleFrame())
		assert.ErrorIs(t, err, errClose)
		assert.True(t, wc.closed)
	})

	t.Run("write error wins", func(t *testing.T) {
		wc := &failingWriter{closeRecorder{closeErr: errors.New("close failed")}}
		err := writeAndClose(wc, sampleFrame())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.True(t, wc.closed)
	})

	t.Run("clean close", func(t *testing.T) {
		wc := &closeRecorder{}
		require.NoError(t, writeAndClose(wc, sampleFrame()))
		assert.True(t, wc.closed)
		assert.Contains(t, wc.String(), "open_time")
	})
}

func TestWriteFrameToCSV_TargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, WriteFrameToCSV(sampleFrame(), dir))
}
