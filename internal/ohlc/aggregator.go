package ohlc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/nse-data/internal/catalog"
	"github.com/rickgao/nse-data/internal/fault"
	"github.com/rickgao/nse-data/internal/model"
)

// Aggregator computes candles from the tick ledger on demand; candles are
// never stored.
type Aggregator struct {
	db      *pgxpool.Pool
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New creates an Aggregator.
func New(db *pgxpool.Pool, cat *catalog.Catalog, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{db: db, catalog: cat, logger: logger}
}

// tickPoint is the slice of a tick the bucketing needs, already in ledger
// order.
type tickPoint struct {
	Timestamp time.Time
	Price     float64
}

// Daily returns one candle per calendar day (UTC) for the symbol, covering
// start through end inclusive. Either bound may be the zero time, leaving
// that side of the range open. Days with no ticks produce no candle.
func (a *Aggregator) Daily(ctx context.Context, symbol string, start, end time.Time) ([]model.Candle, error) {
	from, before, err := resolveRange(start, end)
	if err != nil {
		return nil, err
	}

	instrumentID, err := a.catalog.Resolve(ctx, symbol)
	if err != nil {
		return nil, err
	}

	points, err := a.fetchPoints(ctx, instrumentID, from, before)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fault.NotFound("no ticks for %s in the requested date range", symbol)
	}

	candles := bucketDaily(symbol, points)
	a.logger.Debug("candles computed", "symbol", symbol, "days", len(candles), "ticks", len(points))
	return candles, nil
}

// resolveRange normalizes the optional day bounds into a half-open query
// window. A zero bound leaves its side of the window open; the inverted
// check only applies when both bounds are set.
func resolveRange(start, end time.Time) (from, before time.Time, err error) {
	if !start.IsZero() {
		from = start.UTC().Truncate(24 * time.Hour)
	}
	before = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	if !end.IsZero() {
		day := end.UTC().Truncate(24 * time.Hour)
		if !start.IsZero() && day.Before(from) {
			return time.Time{}, time.Time{}, fault.Validation("end_date cannot be less than start_date")
		}
		before = day.Add(24 * time.Hour)
	}
	return from, before, nil
}

func (a *Aggregator) fetchPoints(ctx context.Context, instrumentID uuid.UUID, start, before time.Time) ([]tickPoint, error) {
	rows, err := a.db.Query(ctx, `
		SELECT ts, last_traded_price
		FROM ticks
		WHERE instrument_id = $1 AND ts >= $2 AND ts < $3
		ORDER BY ts ASC, seq ASC
	`, instrumentID, start, before)
	if err != nil {
		return nil, fmt.Errorf("select ticks for candles: %w", err)
	}
	defer rows.Close()

	var points []tickPoint
	for rows.Next() {
		var p tickPoint
		if err := rows.Scan(&p.Timestamp, &p.Price); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticks: %w", err)
	}
	return points, nil
}

// bucketDaily folds ledger-ordered points into per-day candles. Open and
// close follow ledger order, so intraday ordering is what the database
// returned, not re-sorted here.
func bucketDaily(symbol string, points []tickPoint) []model.Candle {
	var candles []model.Candle
	var cur *model.Candle

	for _, p := range points {
		day := p.Timestamp.UTC().Truncate(24 * time.Hour)
		if cur == nil || !cur.Date.Equal(day) {
			candles = append(candles, model.Candle{
				Symbol: symbol,
				Date:   day,
				Open:   p.Price,
				High:   p.Price,
				Low:    p.Price,
				Close:  p.Price,
			})
			cur = &candles[len(candles)-1]
			continue
		}
		if p.Price > cur.High {
			cur.High = p.Price
		}
		if p.Price < cur.Low {
			cur.Low = p.Price
		}
		cur.Close = p.Price
	}
	return candles
}
