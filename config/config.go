package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cryptoSignalBot/internal/adapters/logger"
	"cryptoSignalBot/internal/risk"
	"cryptoSignalBot/internal/strategy"
	"cryptoSignalBot/internal/strategy/indicators"
)

// State backends accepted by STATE_BACKEND.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	// Market
	Symbol         string
	Interval       string
	Window         int
	BinanceBaseURL string

	// Indicators and classifier
	Indicators indicators.Config
	Strategy   strategy.Config

	// Risk
	Risk risk.Config

	// Loop timing
	CycleInterval      time.Duration
	ErrorRetry         time.Duration
	NotifyCooldown     time.Duration
	HTTPTimeout        time.Duration
	DispatchRetries    int
	DispatchRetryDelay time.Duration

	// Telegram; both empty selects the log-only notifier
	TelegramBotToken string
	TelegramChatID   string

	// State
	StateBackend string
	StatePath    string
	DBPath       string

	// Health listener
	Port int

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string // text|json
}

// TelegramEnabled reports whether Telegram credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// source resolves a key from the process environment first, then from the
// optional YAML file.
type source struct {
	file map[string]string
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

// LoadConfig loads configuration from defaults, an optional YAML file
// (CONFIG_FILE, default config.yaml), a .env file and environment variables,
// later sources winning.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars).
	// godotenv never overrides variables already set in the environment.
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}
	file, err := readYAML(path, explicit)
	if err != nil {
		return nil, err
	}
	return load(source{file: file})
}

// readYAML flattens a YAML mapping into upper-cased keys. A missing file is
// tolerated unless it was named explicitly.
func readYAML(path string, required bool) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToUpper(strings.TrimSpace(k))
		switch val := v.(type) {
		case nil:
			continue
		case []interface{}:
			parts := make([]string, len(val))
			for i, p := range val {
				parts[i] = fmt.Sprint(p)
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return out, nil
}

func load(src source) (*Config, error) {
	cfg := &Config{}
	var errs []string // Collect validation errors

	intVar := func(key string, def int) int {
		v, err := src.int(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	floatVar := func(key string, def float64) float64 {
		v, err := src.float(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	secondsVar := func(key string, def int) time.Duration {
		n := intVar(key, def)
		if n <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive", key))
		}
		return time.Duration(n) * time.Second
	}

	// Market
	cfg.Symbol = strings.ToUpper(src.str("SYMBOL", "SOLUSDT"))
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.Interval = src.str("INTERVAL", "15m")
	if !validInterval(cfg.Interval) {
		errs = append(errs, fmt.Sprintf("unsupported INTERVAL %q", cfg.Interval))
	}
	cfg.Window = intVar("WINDOW", 100)
	cfg.BinanceBaseURL = src.str("BINANCE_BASE_URL", "")

	// Indicators
	cfg.Indicators = indicators.Config{
		EMAFastSpan:  intVar("EMA_FAST", 9),
		EMASlowSpan:  intVar("EMA_SLOW", 21),
		RSIPeriod:    intVar("RSI_PERIOD", 14),
		MACDFast:     intVar("MACD_FAST", 12),
		MACDSlow:     intVar("MACD_SLOW", 26),
		MACDSignal:   intVar("MACD_SIGNAL", 9),
		BBPeriod:     intVar("BB_PERIOD", 20),
		BBStdDev:     floatVar("BB_STDDEV", 2.0),
		VolumePeriod: intVar("VOLUME_PERIOD", 20),
	}
	if err := cfg.Indicators.Validate(); err != nil {
		errs = append(errs, err.Error())
	} else if cfg.Window < cfg.Indicators.WarmUp()+1 {
		errs = append(errs, fmt.Sprintf("WINDOW (%d) must be at least %d for the configured periods", cfg.Window, cfg.Indicators.WarmUp()+1))
	}
	if cfg.Window > 1000 {
		errs = append(errs, "WINDOW cannot exceed 1000 (exchange limit)")
	}

	// Classifier
	cfg.Strategy = strategy.Config{
		RSIOversold:          floatVar("RSI_OVERSOLD", 30),
		RSIOverbought:        floatVar("RSI_OVERBOUGHT", 70),
		VolumeRatioThreshold: floatVar("VOLUME_RATIO_THRESHOLD", 1.5),
	}
	if cfg.Strategy.RSIOverbought <= cfg.Strategy.RSIOversold || cfg.Strategy.RSIOverbought > 100 || cfg.Strategy.RSIOversold < 0 {
		errs = append(errs, "invalid RSI thresholds (RSI_OVERBOUGHT must be > RSI_OVERSOLD, between 0-100)")
	}
	if cfg.Strategy.VolumeRatioThreshold <= 0 {
		errs = append(errs, "VOLUME_RATIO_THRESHOLD must be positive")
	}

	// Risk
	tps, err := src.floatList("TAKE_PROFIT_PCTS", "1.5,3.0,4.5,6.0")
	if err != nil {
		errs = append(errs, err.Error())
	}
	cfg.Risk = risk.Config{
		StopLossPercent:    floatVar("STOP_LOSS_PCT", 2.0),
		TakeProfitPercents: tps,
	}
	if err == nil {
		if vErr := cfg.Risk.Validate(); vErr != nil {
			errs = append(errs, vErr.Error())
		}
	}

	// Loop timing
	cfg.CycleInterval = secondsVar("CYCLE_INTERVAL_SECONDS", 900)
	cfg.ErrorRetry = secondsVar("ERROR_RETRY_SECONDS", 60)
	cfg.NotifyCooldown = secondsVar("NOTIFY_COOLDOWN_SECONDS", 3600)
	cfg.HTTPTimeout = secondsVar("HTTP_TIMEOUT_SECONDS", 10)
	cfg.DispatchRetries = intVar("DISPATCH_RETRIES", 3)
	if cfg.DispatchRetries < 1 {
		errs = append(errs, "DISPATCH_RETRIES must be at least 1")
	}
	delay := intVar("DISPATCH_RETRY_DELAY_SECONDS", 5)
	if delay < 0 {
		errs = append(errs, "DISPATCH_RETRY_DELAY_SECONDS cannot be negative")
	}
	cfg.DispatchRetryDelay = time.Duration(delay) * time.Second

	// Telegram
	cfg.TelegramBotToken = src.str("TELEGRAM_BOT_TOKEN", "")
	cfg.TelegramChatID = src.str("TELEGRAM_CHAT_ID", "")
	if (cfg.TelegramBotToken == "") != (cfg.TelegramChatID == "") {
		errs = append(errs, "TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	// State
	cfg.StateBackend = strings.ToLower(src.str("STATE_BACKEND", BackendJSON))
	if cfg.StateBackend != BackendJSON && cfg.StateBackend != BackendSQLite {
		errs = append(errs, fmt.Sprintf("STATE_BACKEND must be %q or %q", BackendJSON, BackendSQLite))
	}
	cfg.StatePath = src.str("STATE_PATH", "./data/position.json")
	cfg.DBPath = src.str("DB_PATH", "./data/signal_bot.db")

	// Health listener
	cfg.Port = intVar("PORT", 8000)
	if cfg.Port < 0 || cfg.Port > 65535 {
		errs = append(errs, "PORT must be between 0 and 65535")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(src.str("LOG_LEVEL", "INFO"))
	cfg.LogFormat = strings.ToLower(src.str("LOG_FORMAT", "text"))
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, "LOG_FORMAT must be text or json")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Binance kline intervals.
var intervals = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

func validInterval(s string) bool {
	return intervals[s]
}

// --- Lookup helpers ---

func (s source) str(key, defaultValue string) string {
	value := strings.TrimSpace(s.lookup(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func (s source) int(key string, defaultValue int) (int, error) {
	valueStr := strings.TrimSpace(s.lookup(key))
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid integer value '%s' for key %s", valueStr, key)
	}
	return value, nil
}

func (s source) float(key string, defaultValue float64) (float64, error) {
	valueStr := strings.TrimSpace(s.lookup(key))
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid float value '%s' for key %s", valueStr, key)
	}
	return value, nil
}

func (s source) floatList(key, defaultValue string) ([]float64, error) {
	raw := s.str(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s' in %s", p, key)
		}
		out = append(out, v)
	}
	return out, nil
}
