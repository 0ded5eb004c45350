package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestStdLogger_FiltersAndFormats(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLoggerTo(&buf, LevelInfo)
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	l.Info(ctx, "cycle done", map[string]interface{}{"symbol": "SOLUSDT", "close": 142.5})
	l.Error(ctx, errors.New("boom"), "dispatch failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] cycle done | close=142.5 symbol=SOLUSDT")
	assert.Contains(t, out, "[ERROR] dispatch failed | error: boom")
}

func TestZapLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewZapLoggerTo(&buf, LevelDebug)

	l.Warn(context.Background(), "data unavailable", map[string]interface{}{"attempt": 2})
	require.NoError(t, l.Sync())

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "data unavailable", entry["msg"])
	assert.EqualValues(t, 2, entry["attempt"])
}
