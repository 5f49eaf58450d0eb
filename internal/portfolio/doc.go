// Package portfolio computes a user's mark-to-market view from their
// purchase history and each instrument's latest tick.
package portfolio
