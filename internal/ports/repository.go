package ports

import (
	"context"

	"cryptoSignalBot/internal/domain"
)

// PositionStore persists the singleton tracked position.
type PositionStore interface {
	// Load returns the persisted position for symbol.
	// Returns nil, nil if nothing has been persisted yet.
	Load(ctx context.Context, symbol string) (*domain.Position, error)
	// Save overwrites the persisted position for pos.Symbol.
	Save(ctx context.Context, pos *domain.Position) error
	// Close releases any underlying resources.
	Close() error
}
