package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/nse-data/internal/fault"
	"github.com/rickgao/nse-data/internal/model"
)

func TestDeriveTickBootstrap(t *testing.T) {
	instrumentID := uuid.New()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tick, err := deriveTick(nil, instrumentID, 152.5, 40, now)
	if err != nil {
		t.Fatalf("deriveTick returned error: %v", err)
	}

	if tick.InstrumentID != instrumentID {
		t.Errorf("InstrumentID = %s, want %s", tick.InstrumentID, instrumentID)
	}
	if !tick.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", tick.Timestamp, now)
	}
	if tick.LastTradedPrice != 152.5 {
		t.Errorf("LastTradedPrice = %v, want 152.5", tick.LastTradedPrice)
	}
	if tick.BuyPrice != 152.5 {
		t.Errorf("BuyPrice = %v, want 152.5", tick.BuyPrice)
	}
	if tick.BuyQty != 40 {
		t.Errorf("BuyQty = %d, want 40", tick.BuyQty)
	}
	if tick.RemainingQty != 40 {
		t.Errorf("RemainingQty = %d, want 40", tick.RemainingQty)
	}
}

func TestDeriveTickCarriesForward(t *testing.T) {
	instrumentID := uuid.New()
	prev := &model.Tick{
		ID:              uuid.New(),
		Seq:             17,
		InstrumentID:    instrumentID,
		Timestamp:       time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		LastTradedPrice: 101.5,
		BuyPrice:        101.4,
		BuyQty:          500,
		SellPrice:       101.6,
		SellQty:         450,
		OpenInterest:    9000,
		RemainingQty:    100,
	}
	now := prev.Timestamp.Add(time.Minute)

	tick, err := deriveTick(prev, instrumentID, 120.0, 30, now)
	if err != nil {
		t.Fatalf("deriveTick returned error: %v", err)
	}

	if tick.ID != uuid.Nil {
		t.Errorf("ID = %s, want zero uuid for an unwritten tick", tick.ID)
	}
	if tick.Seq != 0 {
		t.Errorf("Seq = %d, want 0 for an unwritten tick", tick.Seq)
	}
	if !tick.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", tick.Timestamp, now)
	}
	if tick.RemainingQty != 70 {
		t.Errorf("RemainingQty = %d, want 70", tick.RemainingQty)
	}

	// Everything except remaining_qty carries forward unchanged,
	// including the price fields: the purchase price never rewrites
	// the market's last traded price.
	if tick.LastTradedPrice != prev.LastTradedPrice {
		t.Errorf("LastTradedPrice = %v, want %v", tick.LastTradedPrice, prev.LastTradedPrice)
	}
	if tick.BuyPrice != prev.BuyPrice || tick.BuyQty != prev.BuyQty {
		t.Errorf("buy side = (%v, %d), want (%v, %d)",
			tick.BuyPrice, tick.BuyQty, prev.BuyPrice, prev.BuyQty)
	}
	if tick.SellPrice != prev.SellPrice || tick.SellQty != prev.SellQty {
		t.Errorf("sell side = (%v, %d), want (%v, %d)",
			tick.SellPrice, tick.SellQty, prev.SellPrice, prev.SellQty)
	}
	if tick.OpenInterest != prev.OpenInterest {
		t.Errorf("OpenInterest = %d, want %d", tick.OpenInterest, prev.OpenInterest)
	}
}

func TestDeriveTickLiquidityConflict(t *testing.T) {
	prev := &model.Tick{RemainingQty: 10}

	_, err := deriveTick(prev, uuid.New(), 99.0, 11, time.Now().UTC())
	if err == nil {
		t.Fatal("expected an error for qty exceeding remaining liquidity")
	}
	if !fault.IsLiquidityConflict(err) {
		t.Errorf("IsLiquidityConflict(%v) = false, want true", err)
	}
}

func TestDeriveTickExactDepletion(t *testing.T) {
	prev := &model.Tick{RemainingQty: 10}

	tick, err := deriveTick(prev, uuid.New(), 99.0, 10, time.Now().UTC())
	if err != nil {
		t.Fatalf("deriveTick returned error: %v", err)
	}
	if tick.RemainingQty != 0 {
		t.Errorf("RemainingQty = %d, want 0", tick.RemainingQty)
	}
}

func TestListRejectsBadPaging(t *testing.T) {
	l := New(nil, nil, nil, nil)

	cases := []struct {
		name        string
		skip, limit int
	}{
		{"negative skip", -1, 10},
		{"zero limit", 0, 0},
		{"negative limit", 0, -5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.List(context.Background(), uuid.New(), tc.skip, tc.limit)
			if !fault.IsValidation(err) {
				t.Errorf("List(skip=%d, limit=%d) err = %v, want validation fault",
					tc.skip, tc.limit, err)
			}
		})
	}
}
