package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/nse-data/internal/fault"
	"github.com/rickgao/nse-data/internal/model"
)

// Options filters the snapshot. The zero value selects everything.
type Options struct {
	Search string    // Case-insensitive symbol substring match
	Start  time.Time // Latest-tick timestamp lower bound, inclusive
	End    time.Time // Latest-tick timestamp upper bound, inclusive
}

// Source reads the latest-tick-per-instrument view. Rows come back in
// symbol order so pages are stable between reads.
type Source struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewSource creates a Source.
func NewSource(db *pgxpool.Pool, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{db: db, logger: logger}
}

// Latest returns one page of the snapshot. Instruments without a latest
// tick are excluded; the pointer join does the filtering.
func (s *Source) Latest(ctx context.Context, opts Options, skip, limit int) (model.SnapshotPage, error) {
	if skip < 0 || limit < 1 {
		return model.SnapshotPage{}, fault.Validation("skip must be >= 0 and limit >= 1")
	}
	if !opts.Start.IsZero() && !opts.End.IsZero() && opts.End.Before(opts.Start) {
		return model.SnapshotPage{}, fault.Validation("end_date cannot be less than start_date")
	}

	// The zero bounds collapse to an unbounded range so one query covers
	// every filter combination.
	start := opts.Start
	end := opts.End
	if end.IsZero() {
		end = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	rows, err := s.db.Query(ctx, `
		SELECT i.id, i.symbol, t.ts,
		       t.last_traded_price, t.buy_price, t.buy_qty,
		       t.sell_price, t.sell_qty, t.remaining_qty, t.open_interest,
		       count(*) OVER () AS total
		FROM instruments i
		JOIN ticks t ON t.id = i.latest_tick_id
		WHERE ($1 = '' OR i.symbol ILIKE '%' || $1 || '%')
		  AND t.ts >= $2 AND t.ts <= $3
		ORDER BY i.symbol ASC
		OFFSET $4 LIMIT $5
	`, opts.Search, start, end, skip, limit)
	if err != nil {
		return model.SnapshotPage{}, fmt.Errorf("select snapshot: %w", err)
	}
	defer rows.Close()

	page := model.SnapshotPage{Skip: skip, Limit: limit}
	for rows.Next() {
		var r model.SnapshotRow
		if err := rows.Scan(&r.InstrumentID, &r.Symbol, &r.Timestamp,
			&r.LastTradedPrice, &r.BuyPrice, &r.BuyQty,
			&r.SellPrice, &r.SellQty, &r.RemainingQty, &r.OpenInterest,
			&page.Total); err != nil {
			return model.SnapshotPage{}, fmt.Errorf("scan snapshot row: %w", err)
		}
		page.Rows = append(page.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return model.SnapshotPage{}, fmt.Errorf("iterate snapshot: %w", err)
	}
	return page, nil
}
