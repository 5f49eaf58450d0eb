package portfolio

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateWeightedAverage(t *testing.T) {
	userID := uuid.New()
	orders := []orderLine{
		{Symbol: "RELIANCE", Price: 100, Qty: 10},
		{Symbol: "RELIANCE", Price: 200, Qty: 10},
	}
	latest := map[string]float64{"RELIANCE": 180}

	p := aggregate(userID, orders, latest)

	if p.UserID != userID {
		t.Errorf("UserID = %s, want %s", p.UserID, userID)
	}
	if len(p.Positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(p.Positions))
	}

	pos := p.Positions[0]
	if pos.Quantity != 20 {
		t.Errorf("Quantity = %d, want 20", pos.Quantity)
	}
	if !almostEqual(pos.AveragePrice, 150) {
		t.Errorf("AveragePrice = %v, want 150", pos.AveragePrice)
	}
	if !almostEqual(pos.CurrentPrice, 180) {
		t.Errorf("CurrentPrice = %v, want 180", pos.CurrentPrice)
	}
	if !almostEqual(pos.PnL, 600) {
		t.Errorf("PnL = %v, want 600", pos.PnL)
	}
	if !almostEqual(p.TotalPnL, 600) {
		t.Errorf("TotalPnL = %v, want 600", p.TotalPnL)
	}
}

func TestAggregateMissingLatestPrice(t *testing.T) {
	orders := []orderLine{
		{Symbol: "TCS", Price: 3500, Qty: 5},
	}

	p := aggregate(uuid.New(), orders, map[string]float64{})

	pos := p.Positions[0]
	if pos.CurrentPrice != 0 {
		t.Errorf("CurrentPrice = %v, want 0 when no latest tick exists", pos.CurrentPrice)
	}
	if !almostEqual(pos.PnL, -3500*5) {
		t.Errorf("PnL = %v, want %v", pos.PnL, -3500.0*5)
	}
}

func TestAggregateSortsBySymbol(t *testing.T) {
	orders := []orderLine{
		{Symbol: "TCS", Price: 3500, Qty: 1},
		{Symbol: "INFY", Price: 1500, Qty: 1},
		{Symbol: "RELIANCE", Price: 2900, Qty: 1},
	}

	p := aggregate(uuid.New(), orders, nil)

	want := []string{"INFY", "RELIANCE", "TCS"}
	for i, symbol := range want {
		if p.Positions[i].Symbol != symbol {
			t.Errorf("Positions[%d].Symbol = %s, want %s", i, p.Positions[i].Symbol, symbol)
		}
	}
}

func TestAggregateMultipleSymbols(t *testing.T) {
	orders := []orderLine{
		{Symbol: "INFY", Price: 1000, Qty: 10},
		{Symbol: "TCS", Price: 3000, Qty: 2},
	}
	latest := map[string]float64{"INFY": 1100, "TCS": 2900}

	p := aggregate(uuid.New(), orders, latest)

	if len(p.Positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(p.Positions))
	}
	// INFY +100*10, TCS -100*2
	if !almostEqual(p.TotalPnL, 800) {
		t.Errorf("TotalPnL = %v, want 800", p.TotalPnL)
	}
}
