// Package model defines shared data types used across the tick data engine.
//
// All types mirror the database schema owned by internal/database.
//
// Conventions:
//   - Prices: float64 (the upstream feed is float-denominated)
//   - Quantities: int64 contracts/shares
//   - Timestamps: time.Time in UTC
//   - IDs: uuid.UUID; uuid.Nil means unset
package model
