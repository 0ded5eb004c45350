package ports

import (
	"context"

	"cryptoSignalBot/internal/domain"
)

// MarketData retrieves candle windows from an exchange.
type MarketData interface {
	// GetKlines returns up to limit of the most recent klines, oldest first.
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error)
}
