package model

import (
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Ledger Types
// -----------------------------------------------------------------------------

// Instrument is a tradable symbol tracked by the system.
type Instrument struct {
	ID         uuid.UUID // Primary key
	Symbol     string    // Globally unique ticker symbol (".NSE" suffix stripped)
	LatestTick uuid.UUID // Back-reference to the tick with max (timestamp, seq); uuid.Nil if no ticks
	CreatedAt  time.Time
}

// Tick is one timestamped snapshot of an instrument's trade/quote state.
// Ticks are append-only: never mutated or deleted after creation.
type Tick struct {
	ID           uuid.UUID // Primary key
	InstrumentID uuid.UUID // Foreign key to Instrument
	Seq          int64     // Insertion order, assigned by the database; ties on Timestamp break on Seq
	Timestamp    time.Time // Feed timestamp (or reservation time for purchase-derived ticks)

	LastTradedPrice float64
	BuyPrice        float64
	BuyQty          int64
	SellPrice       float64
	SellQty         int64
	RemainingQty    int64 // Liquidity still available for purchase reservation, >= 0
	OpenInterest    int64
}

// Before reports whether t precedes o in ledger order (timestamp, then seq).
func (t Tick) Before(o Tick) bool {
	if !t.Timestamp.Equal(o.Timestamp) {
		return t.Timestamp.Before(o.Timestamp)
	}
	return t.Seq < o.Seq
}

// PurchaseOrder is a user's record of buying a quantity of an instrument.
// Immutable after creation; cascade-deleted with its user.
type PurchaseOrder struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	InstrumentID  uuid.UUID
	PurchasePrice float64
	PurchaseQty   int64
	Timestamp     time.Time
}

// User exists as a foreign-key target; credential handling lives outside
// this module.
type User struct {
	ID           uuid.UUID
	Email        string // Unique
	PasswordHash string
	CreatedAt    time.Time
}

// -----------------------------------------------------------------------------
// Derived / Analytics Types
// -----------------------------------------------------------------------------

// Position is a user's aggregated holding in one instrument.
type Position struct {
	Symbol       string  `json:"symbol"`
	Quantity     int64   `json:"quantity"`
	AveragePrice float64 `json:"average_price"` // Σ(price·qty) / Σqty
	CurrentPrice float64 `json:"current_price"` // Latest tick's last traded price, 0 if unavailable
	PnL          float64 `json:"pnl"`           // (current - average) * quantity
}

// Portfolio is the full mark-to-market view of a user's purchases.
type Portfolio struct {
	UserID    uuid.UUID  `json:"user_id"`
	Positions []Position `json:"positions"`
	TotalPnL  float64    `json:"total_pnl"`
}

// Candle is a daily open/high/low/close summary derived from ticks.
type Candle struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"` // Midnight UTC of the calendar day
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
}

// Severity ranks a quality issue.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// QualityIssue is one detected structural anomaly in a purchase order.
type QualityIssue struct {
	IssueID     uuid.UUID `json:"issue_id"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Timestamp   time.Time `json:"timestamp"` // Execution time of the check
}

// QualityReport is the result of scanning one user's purchase history.
type QualityReport struct {
	UserID      uuid.UUID      `json:"user_id"`
	Issues      []QualityIssue `json:"issues"`
	TotalIssues int            `json:"total_issues"`
	Timestamp   time.Time      `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// Page Types
// -----------------------------------------------------------------------------

// PurchaseRecord is a purchase order enriched with its instrument's symbol,
// as served by the paginated listing (and its cache).
type PurchaseRecord struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	InstrumentID  uuid.UUID `json:"instrument_id"`
	Symbol        string    `json:"symbol"`
	PurchasePrice float64   `json:"purchase_price"`
	PurchaseQty   int64     `json:"purchase_qty"`
	Timestamp     time.Time `json:"timestamp"`
}

// OrderPage is one page of a user's purchase-order listing.
type OrderPage struct {
	Orders []PurchaseRecord `json:"orders"`
	Total  int              `json:"total"`
	Skip   int              `json:"skip"`
	Limit  int              `json:"limit"`
}

// SnapshotRow is one instrument's latest tick, symbol-enriched.
type SnapshotRow struct {
	InstrumentID uuid.UUID `json:"instrument_id"`
	Symbol       string    `json:"symbol"`
	Timestamp    time.Time `json:"timestamp"`

	LastTradedPrice float64 `json:"last_traded_price"`
	BuyPrice        float64 `json:"buy_price"`
	BuyQty          int64   `json:"buy_qty"`
	SellPrice       float64 `json:"sell_price"`
	SellQty         int64   `json:"sell_qty"`
	RemainingQty    int64   `json:"remaining_qty"`
	OpenInterest    int64   `json:"open_interest"`
}

// SnapshotPage is one page of the latest-tick-per-instrument snapshot,
// ordered by symbol.
type SnapshotPage struct {
	Rows  []SnapshotRow `json:"rows"`
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
}
