package cli

import (
	"context"
	"fmt"
	"io"

	"cryptoSignalBot/config"
	"cryptoSignalBot/internal/adapters/binanceclient"
	"cryptoSignalBot/internal/adapters/filestore"
	"cryptoSignalBot/internal/adapters/logger"
	"cryptoSignalBot/internal/adapters/sqlite"
	"cryptoSignalBot/internal/adapters/telegram"
	"cryptoSignalBot/internal/ports"
)

// appLogger is the logger plus an optional flush hook.
type appLogger struct {
	ports.Logger
	sync func() error
}

func newLogger(cfg *config.Config, w io.Writer) *appLogger {
	if cfg.LogFormat == "json" {
		z := logger.NewZapLoggerTo(w, cfg.LogLevel)
		return &appLogger{Logger: z, sync: z.Sync}
	}
	return &appLogger{Logger: logger.NewStdLoggerTo(w, cfg.LogLevel), sync: func() error { return nil }}
}

func openStore(cfg *config.Config, log ports.Logger) (ports.PositionStore, error) {
	switch cfg.StateBackend {
	case config.BackendSQLite:
		return sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: log})
	default:
		return filestore.New(filestore.Config{Path: cfg.StatePath, Logger: log})
	}
}

func newMarket(cfg *config.Config, log ports.Logger) (*binanceclient.Client, error) {
	return binanceclient.New(binanceclient.Config{
		BaseURL: cfg.BinanceBaseURL,
		Timeout: cfg.HTTPTimeout,
		Logger:  log,
	})
}

// newNotifier returns the Telegram notifier, or the log-only one when
// credentials are missing or logOnly is set.
func newNotifier(cfg *config.Config, log ports.Logger, logOnly bool) (ports.Notifier, error) {
	if logOnly || !cfg.TelegramEnabled() {
		log.Warn(context.Background(), "Telegram not configured, notifications go to the log only")
		return telegram.NewLogNotifier(log), nil
	}
	n, err := telegram.New(telegram.Config{
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		Timeout:  cfg.HTTPTimeout,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram notifier: %w", err)
	}
	return n, nil
}
