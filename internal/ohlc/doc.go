// Package ohlc derives daily open/high/low/close candles from the tick
// ledger.
package ohlc
