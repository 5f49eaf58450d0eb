// Package snapshot serves the latest-tick-per-instrument view and pushes
// it live to subscribers on an interval.
package snapshot
