// Package catalog maps ticker symbols to stable instrument ids.
//
// Creation is race tolerant: inserts use ON CONFLICT DO NOTHING on the
// unique symbol constraint and re-read the winner, so concurrent callers
// racing on the same symbol all receive the same id and never see a
// constraint violation.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/nse-data/internal/fault"
)

// Catalog is the instrument registry.
type Catalog struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Catalog.
func New(db *pgxpool.Pool, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{db: db, logger: logger}
}

// ResolveOrCreate returns the instrument id for symbol, creating the
// instrument when absent.
func (c *Catalog) ResolveOrCreate(ctx context.Context, symbol string) (uuid.UUID, error) {
	if symbol == "" {
		return uuid.Nil, fault.Validation("symbol is required")
	}

	_, err := c.db.Exec(ctx, `
		INSERT INTO instruments (id, symbol)
		VALUES ($1, $2)
		ON CONFLICT (symbol) DO NOTHING
	`, uuid.New(), symbol)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert instrument %s: %w", symbol, err)
	}

	// Re-read regardless of whether our insert won the race.
	return c.Resolve(ctx, symbol)
}

// Resolve returns the instrument id for an existing symbol.
func (c *Catalog) Resolve(ctx context.Context, symbol string) (uuid.UUID, error) {
	var id uuid.UUID
	err := c.db.QueryRow(ctx, `SELECT id FROM instruments WHERE symbol = $1`, symbol).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fault.NotFound("no instrument for symbol %q", symbol)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("select instrument %s: %w", symbol, err)
	}
	return id, nil
}

// EnsureSymbols bulk-creates any absent symbols and returns the id for every
// requested symbol. Used by the ingestion pipeline, which resolves a whole
// batch's distinct symbols at once.
func (c *Catalog) EnsureSymbols(ctx context.Context, symbols []string) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(symbols))
	if len(symbols) == 0 {
		return ids, nil
	}

	for _, s := range symbols {
		if s == "" {
			return nil, fault.Validation("symbol is required")
		}
	}

	batch := &pgx.Batch{}
	for _, s := range symbols {
		batch.Queue(`
			INSERT INTO instruments (id, symbol)
			VALUES ($1, $2)
			ON CONFLICT (symbol) DO NOTHING
		`, uuid.New(), s)
	}
	results := c.db.SendBatch(ctx, batch)
	for range symbols {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return nil, fmt.Errorf("bulk insert instruments: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("close instrument batch: %w", err)
	}

	rows, err := c.db.Query(ctx, `SELECT symbol, id FROM instruments WHERE symbol = ANY($1)`, symbols)
	if err != nil {
		return nil, fmt.Errorf("select instruments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol string
		var id uuid.UUID
		if err := rows.Scan(&symbol, &id); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		ids[symbol] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instruments: %w", err)
	}

	for _, s := range symbols {
		if _, ok := ids[s]; !ok {
			return nil, fault.Consistency("symbol %q missing after bulk create", s)
		}
	}

	return ids, nil
}
