// Package database provides connection pool management and the schema for
// the tick data engine.
//
// A single PostgreSQL database holds all tables:
//   - instruments, users (relational data)
//   - ticks (append-only time-series data)
//   - purchase_orders (user mutations)
//
// Components that must run inside and outside transactions accept the
// Querier interface, satisfied by both *pgxpool.Pool and pgx.Tx.
package database
