package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the full DDL for the tick data engine.
//
// instruments.latest_tick_id is a back-reference into ticks, not ownership:
// it is a plain uuid column (no FK) to avoid a cycle with ticks.instrument_id.
// Every code path that inserts a tick updates it in the same transaction.
//
// ticks.seq is the insertion-order tiebreak: ledger order is (ts, seq).
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            uuid PRIMARY KEY,
	email         text NOT NULL UNIQUE,
	password_hash text NOT NULL,
	created_at    timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS instruments (
	id             uuid PRIMARY KEY,
	symbol         text NOT NULL,
	latest_tick_id uuid,
	created_at     timestamptz NOT NULL DEFAULT now(),
	CONSTRAINT uq_instruments_symbol UNIQUE (symbol)
);

CREATE TABLE IF NOT EXISTS ticks (
	id                uuid PRIMARY KEY,
	instrument_id     uuid NOT NULL REFERENCES instruments(id),
	seq               bigint GENERATED ALWAYS AS IDENTITY,
	ts                timestamptz NOT NULL,
	last_traded_price double precision NOT NULL,
	buy_price         double precision NOT NULL,
	buy_qty           bigint NOT NULL,
	sell_price        double precision NOT NULL,
	sell_qty          bigint NOT NULL,
	remaining_qty     bigint NOT NULL CHECK (remaining_qty >= 0),
	open_interest     bigint NOT NULL
);

CREATE INDEX IF NOT EXISTS ix_ticks_instrument_ts_seq
	ON ticks (instrument_id, ts DESC, seq DESC);

CREATE TABLE IF NOT EXISTS purchase_orders (
	id             uuid PRIMARY KEY,
	user_id        uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	instrument_id  uuid NOT NULL REFERENCES instruments(id),
	purchase_price double precision NOT NULL,
	purchase_qty   bigint NOT NULL,
	ts             timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS ix_purchase_orders_user_ts
	ON purchase_orders (user_id, ts DESC);
`

// Migrate applies the schema. All statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
