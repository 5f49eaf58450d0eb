package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/nse-data/internal/database"
	"github.com/rickgao/nse-data/internal/fault"
	"github.com/rickgao/nse-data/internal/model"
)

// DefaultChunkSize bounds rows per bulk-insert chunk.
const DefaultChunkSize = 3000

// Config holds tick ledger settings.
type Config struct {
	ChunkSize int
}

// Ledger is the append-only tick store.
type Ledger struct {
	cfg    Config
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Ledger.
func New(cfg Config, db *pgxpool.Pool, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &Ledger{cfg: cfg, db: db, logger: logger}
}

const insertTickSQL = `
	INSERT INTO ticks (id, instrument_id, ts, last_traded_price,
	                   buy_price, buy_qty, sell_price, sell_qty,
	                   remaining_qty, open_interest)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// InsertTicks bulk-inserts rows in chunks. Each row must carry its
// InstrumentID and Timestamp; ids are assigned here, seq by the database.
// Rows are append-only: no conflict handling, re-inserting the same input
// duplicates it.
func (l *Ledger) InsertTicks(ctx context.Context, rows []model.Tick) error {
	for _, chunk := range chunkTicks(rows, l.cfg.ChunkSize) {
		start := time.Now()

		batch := &pgx.Batch{}
		for _, r := range chunk {
			id := r.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			batch.Queue(insertTickSQL,
				id, r.InstrumentID, r.Timestamp, r.LastTradedPrice,
				r.BuyPrice, r.BuyQty, r.SellPrice, r.SellQty,
				r.RemainingQty, r.OpenInterest)
		}

		results := l.db.SendBatch(ctx, batch)
		for range chunk {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("insert tick chunk: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("close tick chunk: %w", err)
		}

		l.logger.Debug("inserted tick chunk",
			"count", len(chunk),
			"duration", time.Since(start),
		)
	}
	return nil
}

// InsertOne appends a single tick on q (typically a transaction) and
// returns it with id, seq, and timestamp populated.
func (l *Ledger) InsertOne(ctx context.Context, q database.Querier, row model.Tick) (model.Tick, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	err := q.QueryRow(ctx, `
		INSERT INTO ticks (id, instrument_id, ts, last_traded_price,
		                   buy_price, buy_qty, sell_price, sell_qty,
		                   remaining_qty, open_interest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq
	`, row.ID, row.InstrumentID, row.Timestamp, row.LastTradedPrice,
		row.BuyPrice, row.BuyQty, row.SellPrice, row.SellQty,
		row.RemainingQty, row.OpenInterest).Scan(&row.Seq)
	if err != nil {
		return model.Tick{}, fmt.Errorf("insert tick: %w", err)
	}
	return row, nil
}

const tickColumns = `id, instrument_id, seq, ts, last_traded_price,
	buy_price, buy_qty, sell_price, sell_qty, remaining_qty, open_interest`

func scanTick(row pgx.Row) (model.Tick, error) {
	var t model.Tick
	err := row.Scan(&t.ID, &t.InstrumentID, &t.Seq, &t.Timestamp,
		&t.LastTradedPrice, &t.BuyPrice, &t.BuyQty, &t.SellPrice,
		&t.SellQty, &t.RemainingQty, &t.OpenInterest)
	return t, err
}

// LatestTick resolves the instrument's latest-tick pointer on q. Returns
// nil when the instrument has no ticks yet, a NotFound failure for an
// unknown instrument, and a Consistency failure when the pointer does not
// resolve to a tick row.
func (l *Ledger) LatestTick(ctx context.Context, q database.Querier, instrumentID uuid.UUID) (*model.Tick, error) {
	var latest uuid.UUID
	err := q.QueryRow(ctx, `
		SELECT COALESCE(latest_tick_id, '00000000-0000-0000-0000-000000000000'::uuid)
		FROM instruments WHERE id = $1
	`, instrumentID).Scan(&latest)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("no instrument %s", instrumentID)
	}
	if err != nil {
		return nil, fmt.Errorf("select latest pointer: %w", err)
	}
	if latest == uuid.Nil {
		return nil, nil
	}

	t, err := scanTick(q.QueryRow(ctx, `SELECT `+tickColumns+` FROM ticks WHERE id = $1`, latest))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.Consistency("latest pointer %s of instrument %s resolves to no tick", latest, instrumentID)
	}
	if err != nil {
		return nil, fmt.Errorf("select latest tick: %w", err)
	}
	return &t, nil
}

// ListRecent lists an instrument's ticks newest-first, optionally bounded to
// the last interval minutes, with the unpaginated total.
func (l *Ledger) ListRecent(ctx context.Context, instrumentID uuid.UUID, skip, limit, intervalMinutes int) ([]model.Tick, int, error) {
	if skip < 0 || limit < 1 {
		return nil, 0, fault.Validation("skip must be >= 0 and limit >= 1")
	}
	if intervalMinutes < 0 {
		return nil, 0, fault.Validation("interval must be a positive number")
	}

	var exists bool
	if err := l.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM instruments WHERE id = $1)`, instrumentID).Scan(&exists); err != nil {
		return nil, 0, fmt.Errorf("check instrument: %w", err)
	}
	if !exists {
		return nil, 0, fault.NotFound("no instrument %s", instrumentID)
	}

	cutoff := time.Time{}
	if intervalMinutes > 0 {
		cutoff = time.Now().UTC().Add(-time.Duration(intervalMinutes) * time.Minute)
	}

	rows, err := l.db.Query(ctx, `
		SELECT `+tickColumns+`, count(*) OVER () AS total
		FROM ticks
		WHERE instrument_id = $1 AND ($2::timestamptz IS NULL OR ts >= $2)
		ORDER BY ts DESC, seq DESC
		OFFSET $3 LIMIT $4
	`, instrumentID, nullableTime(cutoff), skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("select recent ticks: %w", err)
	}
	defer rows.Close()

	var ticks []model.Tick
	total := 0
	for rows.Next() {
		var t model.Tick
		if err := rows.Scan(&t.ID, &t.InstrumentID, &t.Seq, &t.Timestamp,
			&t.LastTradedPrice, &t.BuyPrice, &t.BuyQty, &t.SellPrice,
			&t.SellQty, &t.RemainingQty, &t.OpenInterest, &total); err != nil {
			return nil, 0, fmt.Errorf("scan tick: %w", err)
		}
		ticks = append(ticks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ticks: %w", err)
	}

	return ticks, total, nil
}

// chunkTicks splits rows into slices of at most size rows.
func chunkTicks(rows []model.Tick, size int) [][]model.Tick {
	if size <= 0 || len(rows) == 0 {
		if len(rows) == 0 {
			return nil
		}
		return [][]model.Tick{rows}
	}
	chunks := make([][]model.Tick, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
