package purchase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rickgao/nse-data/internal/fault"
	"github.com/rickgao/nse-data/internal/model"
)

// List returns one page of the user's purchase orders, newest first,
// symbol-enriched, read through the cache.
func (l *Ledger) List(ctx context.Context, userID uuid.UUID, skip, limit int) (model.OrderPage, error) {
	if skip < 0 || limit < 1 {
		return model.OrderPage{}, fault.Validation("skip must be >= 0 and limit >= 1")
	}

	if page, hit := l.pages.GetOrderPage(ctx, userID, skip, limit); hit {
		return page, nil
	}

	page, err := l.queryPage(ctx, userID, skip, limit)
	if err != nil {
		return model.OrderPage{}, err
	}

	l.pages.PutOrderPage(ctx, userID, skip, limit, page)
	return page, nil
}

func (l *Ledger) queryPage(ctx context.Context, userID uuid.UUID, skip, limit int) (model.OrderPage, error) {
	rows, err := l.db.Query(ctx, `
		SELECT po.id, po.user_id, po.instrument_id, i.symbol,
		       po.purchase_price, po.purchase_qty, po.ts,
		       count(*) OVER () AS total
		FROM purchase_orders po
		JOIN instruments i ON i.id = po.instrument_id
		WHERE po.user_id = $1
		ORDER BY po.ts DESC
		OFFSET $2 LIMIT $3
	`, userID, skip, limit)
	if err != nil {
		return model.OrderPage{}, fmt.Errorf("select purchase orders: %w", err)
	}
	defer rows.Close()

	page := model.OrderPage{Skip: skip, Limit: limit}
	for rows.Next() {
		var rec model.PurchaseRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.InstrumentID, &rec.Symbol,
			&rec.PurchasePrice, &rec.PurchaseQty, &rec.Timestamp, &page.Total); err != nil {
			return model.OrderPage{}, fmt.Errorf("scan purchase order: %w", err)
		}
		page.Orders = append(page.Orders, rec)
	}
	if err := rows.Err(); err != nil {
		return model.OrderPage{}, fmt.Errorf("iterate purchase orders: %w", err)
	}
	return page, nil
}
