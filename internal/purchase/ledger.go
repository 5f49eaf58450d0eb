package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/nse-data/internal/cache"
	"github.com/rickgao/nse-data/internal/fault"
	"github.com/rickgao/nse-data/internal/ledger"
	"github.com/rickgao/nse-data/internal/metrics"
	"github.com/rickgao/nse-data/internal/model"
)

// Ledger records user purchase orders against instruments.
type Ledger struct {
	db     *pgxpool.Pool
	ticks  *ledger.Ledger
	pages  *cache.Pages
	logger *slog.Logger
}

// New creates a purchase Ledger.
func New(db *pgxpool.Pool, ticks *ledger.Ledger, pages *cache.Pages, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{db: db, ticks: ticks, pages: pages, logger: logger}
}

// Place reserves qty of the instrument's remaining liquidity for userID at
// price. The reservation, the derived tick, and the pointer bump commit in
// one transaction; nothing is written when the liquidity check fails.
func (l *Ledger) Place(ctx context.Context, userID, instrumentID uuid.UUID, price float64, qty int64) (model.PurchaseOrder, error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return model.PurchaseOrder{}, fmt.Errorf("begin purchase tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the instrument row: concurrent purchases against the same
	// instrument serialize here.
	var symbol string
	err = tx.QueryRow(ctx, `
		SELECT symbol FROM instruments WHERE id = $1 FOR UPDATE
	`, instrumentID).Scan(&symbol)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PurchaseOrder{}, fault.NotFound("no instrument %s", instrumentID)
	}
	if err != nil {
		return model.PurchaseOrder{}, fmt.Errorf("lock instrument: %w", err)
	}

	prev, err := l.ticks.LatestTick(ctx, tx, instrumentID)
	if err != nil {
		return model.PurchaseOrder{}, err
	}

	now := time.Now().UTC()
	derived, err := deriveTick(prev, instrumentID, price, qty, now)
	if err != nil {
		if fault.IsLiquidityConflict(err) {
			metrics.LiquidityRejections.Inc()
		}
		return model.PurchaseOrder{}, err
	}

	tick, err := l.ticks.InsertOne(ctx, tx, derived)
	if err != nil {
		return model.PurchaseOrder{}, err
	}

	order := model.PurchaseOrder{
		ID:            uuid.New(),
		UserID:        userID,
		InstrumentID:  instrumentID,
		PurchasePrice: price,
		PurchaseQty:   qty,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (id, user_id, instrument_id, purchase_price, purchase_qty, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ts
	`, order.ID, order.UserID, order.InstrumentID, order.PurchasePrice, order.PurchaseQty, now).Scan(&order.Timestamp)
	if err != nil {
		return model.PurchaseOrder{}, fmt.Errorf("insert purchase order: %w", err)
	}

	// The derived tick is usually the new maximum, but feed rows dated
	// ahead of the server clock legitimately keep the pointer where it is.
	moved, err := l.ticks.BumpLatestPointer(ctx, tx, instrumentID, tick.ID, tick.Timestamp, tick.Seq)
	if err != nil {
		return model.PurchaseOrder{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.PurchaseOrder{}, fmt.Errorf("commit purchase: %w", err)
	}

	// Post-commit: the window until invalidation is accepted staleness,
	// bounded by the cache TTL.
	if err := l.pages.InvalidateUser(ctx, userID); err != nil {
		l.logger.Warn("cache invalidation failed", "user_id", userID, "error", err)
	}

	metrics.PurchasesPlaced.Inc()
	l.logger.Info("purchase placed",
		"user_id", userID,
		"symbol", symbol,
		"price", price,
		"qty", qty,
		"remaining_qty", tick.RemainingQty,
		"latest_updated", moved,
	)
	return order, nil
}
