package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cryptoSignalBot/internal/domain"
	"cryptoSignalBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.PositionStore using SQLite. Besides the current
// position per symbol it keeps an append-only history of every saved flip.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// HistoryEntry is one row of position_history.
type HistoryEntry struct {
	ID             int64
	Symbol         string
	Side           domain.Side
	EntryPrice     float64
	EntryTime      time.Time
	SignalStrength float64
	RecordedAt     time.Time
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/signal_bot.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w: %w", filepath.Dir(dbPath), ports.ErrPersistence, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrPersistence, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrPersistence, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// One writer; the loop is the only user.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w: %w", ports.ErrPersistence, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS positions (
		symbol TEXT PRIMARY KEY,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		entry_time TIMESTAMP NULL,
		signal_strength REAL NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS position_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		entry_time TIMESTAMP NULL,
		signal_strength REAL NOT NULL DEFAULT 0,
		recorded_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_position_history_symbol ON position_history (symbol, id);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Load retrieves the current position for symbol. It returns nil, nil when
// nothing has been saved yet.
func (r *Repository) Load(ctx context.Context, symbol string) (*domain.Position, error) {
	const query = `
	SELECT symbol, side, entry_price, entry_time, signal_strength
	FROM positions
	WHERE symbol = ?`

	var (
		pos       domain.Position
		side      string
		entryTime sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, symbol).Scan(&pos.Symbol, &side, &pos.EntryPrice, &entryTime, &pos.SignalStrength)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query position for symbol %s: %w: %w", symbol, ports.ErrPersistence, err)
	}
	pos.Side = domain.ParseSide(side)
	if entryTime.Valid {
		pos.EntryTime = entryTime.Time
	}
	return &pos, nil
}

// Save upserts the current position and appends it to the history in one transaction.
func (r *Repository) Save(ctx context.Context, pos *domain.Position) error {
	if pos == nil {
		return fmt.Errorf("nil position: %w", ports.ErrInvalidRequest)
	}
	const upsert = `
	INSERT INTO positions (symbol, side, entry_price, entry_time, signal_strength, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(symbol) DO UPDATE SET
		side = excluded.side,
		entry_price = excluded.entry_price,
		entry_time = excluded.entry_time,
		signal_strength = excluded.signal_strength,
		updated_at = excluded.updated_at`
	const history = `
	INSERT INTO position_history (symbol, side, entry_price, entry_time, signal_strength, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	var entryTime sql.NullTime
	if !pos.EntryTime.IsZero() {
		entryTime = sql.NullTime{Time: pos.EntryTime.UTC(), Valid: true}
	}
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", ports.ErrPersistence, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, upsert, pos.Symbol, string(pos.Side), pos.EntryPrice, entryTime, pos.SignalStrength, now); err != nil {
		return fmt.Errorf("failed to upsert position for symbol %s: %w: %w", pos.Symbol, ports.ErrPersistence, err)
	}
	if _, err := tx.ExecContext(ctx, history, pos.Symbol, string(pos.Side), pos.EntryPrice, entryTime, pos.SignalStrength, now); err != nil {
		return fmt.Errorf("failed to record history for symbol %s: %w: %w", pos.Symbol, ports.ErrPersistence, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit position for symbol %s: %w: %w", pos.Symbol, ports.ErrPersistence, err)
	}
	r.logger.Debug(ctx, "Position saved", map[string]interface{}{"symbol": pos.Symbol, "side": pos.Side})
	return nil
}

// History returns up to limit saved positions for symbol, newest first.
func (r *Repository) History(ctx context.Context, symbol string, limit int) ([]*HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
	SELECT id, symbol, side, entry_price, entry_time, signal_strength, recorded_at
	FROM position_history
	WHERE symbol = ?
	ORDER BY id DESC
	LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query position history for symbol %s: %w: %w", symbol, ports.ErrPersistence, err)
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		var (
			e         HistoryEntry
			side      string
			entryTime sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.Symbol, &side, &e.EntryPrice, &entryTime, &e.SignalStrength, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position history row: %w: %w", ports.ErrPersistence, err)
		}
		e.Side = domain.ParseSide(side)
		if entryTime.Valid {
			e.EntryTime = entryTime.Time
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position history: %w: %w", ports.ErrPersistence, err)
	}
	return entries, nil
}
