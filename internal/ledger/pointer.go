package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/nse-data/internal/database"
	"github.com/rickgao/nse-data/internal/fault"
)

// RefreshLatestPointers recomputes latest_tick_id for the given instruments
// from the tick table. The bulk ingestion path calls this once per batch
// after all chunks commit.
func (l *Ledger) RefreshLatestPointers(ctx context.Context, instrumentIDs []uuid.UUID) error {
	if len(instrumentIDs) == 0 {
		return nil
	}

	tag, err := l.db.Exec(ctx, `
		UPDATE instruments i
		SET latest_tick_id = (
			SELECT t.id FROM ticks t
			WHERE t.instrument_id = i.id
			ORDER BY t.ts DESC, t.seq DESC
			LIMIT 1
		)
		WHERE i.id = ANY($1)
	`, instrumentIDs)
	if err != nil {
		return fmt.Errorf("refresh latest pointers: %w", err)
	}
	if int(tag.RowsAffected()) != len(instrumentIDs) {
		return fault.Consistency("refreshed %d of %d latest pointers", tag.RowsAffected(), len(instrumentIDs))
	}

	l.logger.Debug("refreshed latest pointers", "instruments", len(instrumentIDs))
	return nil
}

// BumpLatestPointer points the instrument at tickID when the tick is the
// new ledger maximum, guarded so the pointer only moves forward in
// (ts, seq) order. Runs on the caller's transaction; the purchase path
// invokes it with the instrument row already locked.
//
// Returns whether the pointer moved. A tick behind the current latest
// leaves the pointer alone: feed rows can be dated ahead of the server
// clock, so a purchase-derived tick is not always the maximum. A pointer
// that neither moved nor resolves to a tick at or beyond (ts, seq) is an
// invariant violation.
func (l *Ledger) BumpLatestPointer(ctx context.Context, q database.Querier, instrumentID, tickID uuid.UUID, ts time.Time, seq int64) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE instruments i
		SET latest_tick_id = $2
		WHERE i.id = $1
		  AND (i.latest_tick_id IS NULL OR EXISTS (
			SELECT 1 FROM ticks cur
			WHERE cur.id = i.latest_tick_id
			  AND (cur.ts, cur.seq) < ($3::timestamptz, $4::bigint)
		  ))
	`, instrumentID, tickID, ts, seq)
	if err != nil {
		return false, fmt.Errorf("bump latest pointer: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var ahead bool
	err = q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM instruments i
			JOIN ticks cur ON cur.id = i.latest_tick_id
			WHERE i.id = $1
			  AND (cur.ts, cur.seq) >= ($2::timestamptz, $3::bigint)
		)
	`, instrumentID, ts, seq).Scan(&ahead)
	if err != nil {
		return false, fmt.Errorf("check latest pointer: %w", err)
	}
	if !ahead {
		return false, fault.Consistency("latest pointer of instrument %s does not resolve at or beyond tick %s", instrumentID, tickID)
	}
	return false, nil
}
