package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/nse-data/internal/fault"
	"github.com/rickgao/nse-data/internal/model"
)

// Calculator derives portfolios on demand; it holds no state beyond its
// connections.
type Calculator struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Calculator.
func New(db *pgxpool.Pool, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{db: db, logger: logger}
}

// orderLine is the slice of a purchase order the aggregation needs.
type orderLine struct {
	Symbol string
	Price  float64
	Qty    int64
}

// Compute builds the user's portfolio: one position per purchased symbol,
// marked against that instrument's latest tick. A user with no purchases
// is a not-found condition, matching the listing endpoints.
func (c *Calculator) Compute(ctx context.Context, userID uuid.UUID) (model.Portfolio, error) {
	orders, err := c.fetchOrders(ctx, userID)
	if err != nil {
		return model.Portfolio{}, err
	}
	if len(orders) == 0 {
		return model.Portfolio{}, fault.NotFound("no purchase orders for user %s", userID)
	}

	latest, err := c.fetchLatestPrices(ctx, userID)
	if err != nil {
		return model.Portfolio{}, err
	}

	p := aggregate(userID, orders, latest)
	c.logger.Debug("portfolio computed",
		"user_id", userID,
		"positions", len(p.Positions),
		"total_pnl", p.TotalPnL,
	)
	return p, nil
}

func (c *Calculator) fetchOrders(ctx context.Context, userID uuid.UUID) ([]orderLine, error) {
	rows, err := c.db.Query(ctx, `
		SELECT i.symbol, po.purchase_price, po.purchase_qty
		FROM purchase_orders po
		JOIN instruments i ON i.id = po.instrument_id
		WHERE po.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []orderLine
	for rows.Next() {
		var o orderLine
		if err := rows.Scan(&o.Symbol, &o.Price, &o.Qty); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase orders: %w", err)
	}
	return orders, nil
}

// fetchLatestPrices maps symbol to last traded price via the latest-tick
// pointer, for the instruments the user has purchased. Instruments whose
// pointer is unset are simply absent from the map.
func (c *Calculator) fetchLatestPrices(ctx context.Context, userID uuid.UUID) (map[string]float64, error) {
	rows, err := c.db.Query(ctx, `
		SELECT DISTINCT i.symbol, t.last_traded_price
		FROM purchase_orders po
		JOIN instruments i ON i.id = po.instrument_id
		JOIN ticks t ON t.id = i.latest_tick_id
		WHERE po.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select latest prices: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]float64)
	for rows.Next() {
		var symbol string
		var price float64
		if err := rows.Scan(&symbol, &price); err != nil {
			return nil, fmt.Errorf("scan latest price: %w", err)
		}
		latest[symbol] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest prices: %w", err)
	}
	return latest, nil
}

// aggregate folds order lines into per-symbol positions. Average price is
// quantity-weighted; PnL marks against the latest price, or 0 when no
// latest price is known.
func aggregate(userID uuid.UUID, orders []orderLine, latest map[string]float64) model.Portfolio {
	type acc struct {
		qty  int64
		cost float64
	}
	bySymbol := make(map[string]*acc)
	for _, o := range orders {
		a, ok := bySymbol[o.Symbol]
		if !ok {
			a = &acc{}
			bySymbol[o.Symbol] = a
		}
		a.qty += o.Qty
		a.cost += o.Price * float64(o.Qty)
	}

	p := model.Portfolio{UserID: userID}
	for symbol, a := range bySymbol {
		pos := model.Position{
			Symbol:       symbol,
			Quantity:     a.qty,
			CurrentPrice: latest[symbol],
		}
		if a.qty > 0 {
			pos.AveragePrice = a.cost / float64(a.qty)
		}
		pos.PnL = (pos.CurrentPrice - pos.AveragePrice) * float64(pos.Quantity)
		p.Positions = append(p.Positions, pos)
		p.TotalPnL += pos.PnL
	}

	sort.Slice(p.Positions, func(i, j int) bool {
		return p.Positions[i].Symbol < p.Positions[j].Symbol
	})
	return p
}
