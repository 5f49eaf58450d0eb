// Package purchase implements the purchase ledger: order placement with
// liquidity reservation, and cached paginated listings.
//
// Placement is the one read-modify-write hot path. The instrument row is
// locked with SELECT ... FOR UPDATE before the liquidity check, so two
// concurrent purchases against the same instrument serialize and cannot
// both pass the check against the same stale remaining quantity. The
// derived tick, the purchase order, and the latest-pointer bump commit
// atomically; the user's cached listing pages are invalidated after commit.
package purchase
