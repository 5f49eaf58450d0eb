// Package ledger implements the append-only tick store and latest-pointer
// maintenance.
//
// Ledger order is (ts, seq): seq is a database identity column, so ties on
// ts resolve by insertion order. Bulk inserts run in fixed-size chunks to
// bound batch size and memory.
//
// Latest-pointer maintenance is an explicit step, not an insert side effect:
// the ingestion pipeline calls RefreshLatestPointers after its chunks
// commit, and the purchase path calls BumpLatestPointer inside its
// transaction. Both paths leave instruments.latest_tick_id resolving to the
// tick with max (ts, seq).
package ledger
