// Package filestore persists the tracked position as a JSON document keyed by symbol.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cryptoSignalBot/internal/domain"
	"cryptoSignalBot/internal/ports"
)

// Record is the persisted shape of a position.
type Record struct {
	EntryPrice     float64 `json:"entry_price"`
	Side           string  `json:"side"`
	EntryTime      string  `json:"entry_time"` // RFC 3339
	SignalStrength float64 `json:"signal_strength"`
}

// Store implements ports.PositionStore on a single JSON file.
type Store struct {
	path   string
	logger ports.Logger
	mu     sync.Mutex
}

// Config holds configuration for the JSON store.
type Config struct {
	Path   string
	Logger ports.Logger
}

// New creates a JSON store, creating the parent directory if needed.
func New(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for file store")
	}
	path := cfg.Path
	if path == "" {
		path = "./data/position.json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory '%s': %w: %w", filepath.Dir(path), ports.ErrPersistence, err)
	}
	cfg.Logger.Info(context.Background(), "JSON position store ready", map[string]interface{}{"path": path})
	return &Store{path: path, logger: cfg.Logger}, nil
}

func (s *Store) readAll() (map[string]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Record{}, nil
		}
		return nil, fmt.Errorf("read %s: %w: %w", s.path, ports.ErrPersistence, err)
	}
	records := map[string]Record{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", s.path, ports.ErrPersistence, err)
	}
	return records, nil
}

// Load returns the position stored for symbol, or nil, nil if there is none.
func (s *Store) Load(ctx context.Context, symbol string) (*domain.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	rec, ok := records[symbol]
	if !ok {
		return nil, nil
	}
	return FromRecord(symbol, rec)
}

// Save overwrites the record for pos.Symbol. The file is replaced atomically.
func (s *Store) Save(ctx context.Context, pos *domain.Position) error {
	if pos == nil {
		return fmt.Errorf("nil position: %w", ports.ErrInvalidRequest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		// A corrupt file is replaced rather than blocking every future save.
		s.logger.Warn(ctx, "Discarding unreadable position file", map[string]interface{}{"path": s.path, "error": err.Error()})
		records = map[string]Record{}
	}
	records[pos.Symbol] = ToRecord(pos)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode position: %w: %w", ports.ErrPersistence, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w: %w", tmp, ports.ErrPersistence, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w: %w", s.path, ports.ErrPersistence, err)
	}
	s.logger.Debug(ctx, "Position saved", map[string]interface{}{"symbol": pos.Symbol, "side": pos.Side})
	return nil
}

// Close is a no-op for the file store.
func (s *Store) Close() error {
	return nil
}

// ToRecord converts a position into its persisted shape.
func ToRecord(pos *domain.Position) Record {
	rec := Record{
		EntryPrice:     pos.EntryPrice,
		Side:           string(pos.Side),
		SignalStrength: pos.SignalStrength,
	}
	if !pos.EntryTime.IsZero() {
		rec.EntryTime = pos.EntryTime.UTC().Format(time.RFC3339)
	}
	return rec
}

// FromRecord converts a persisted record back into a position.
func FromRecord(symbol string, rec Record) (*domain.Position, error) {
	pos := &domain.Position{
		Symbol:         symbol,
		EntryPrice:     rec.EntryPrice,
		Side:           domain.ParseSide(rec.Side),
		SignalStrength: rec.SignalStrength,
	}
	if rec.EntryTime != "" {
		t, err := time.Parse(time.RFC3339, rec.EntryTime)
		if err != nil {
			return nil, fmt.Errorf("parse entry_time %q: %w: %w", rec.EntryTime, ports.ErrPersistence, err)
		}
		pos.EntryTime = t
	}
	return pos, nil
}
