package purchase

import (
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/nse-data/internal/fault"
	"github.com/rickgao/nse-data/internal/model"
)

// deriveTick builds the tick a reservation appends to the ledger.
//
// With a previous tick, price/quantity fields carry forward and only
// remaining_qty changes, decremented by the purchased quantity; asking for
// more than remains is a liquidity conflict. With no previous tick the
// first purchase bootstraps the instrument: the tick reflects the purchase
// itself and remaining_qty is set to the purchased quantity.
func deriveTick(prev *model.Tick, instrumentID uuid.UUID, price float64, qty int64, now time.Time) (model.Tick, error) {
	if prev == nil {
		return model.Tick{
			InstrumentID:    instrumentID,
			Timestamp:       now,
			LastTradedPrice: price,
			BuyPrice:        price,
			BuyQty:          qty,
			RemainingQty:    qty,
		}, nil
	}

	if qty > prev.RemainingQty {
		return model.Tick{}, fault.LiquidityConflict(
			"purchase qty %d exceeds remaining qty %d", qty, prev.RemainingQty)
	}

	next := *prev
	next.ID = uuid.Nil
	next.Seq = 0
	next.Timestamp = now
	next.RemainingQty = prev.RemainingQty - qty
	return next, nil
}
