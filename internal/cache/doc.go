// Package cache implements the read-through cache over paginated
// purchase-order listings.
//
// Entries are keyed purchased_orders:{user_id}:{skip}:{limit} with a 300s
// TTL and carry an explicit schema version; an entry written by an older
// schema decodes as a miss and is evicted. Any mutation for a user deletes
// every entry under that user's key prefix.
//
// The cache is not transactional with respect to the ledger: a stale page
// may be served between commit and invalidation, bounded by the TTL.
package cache
