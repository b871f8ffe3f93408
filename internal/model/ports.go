package model

import "context"

// ── Market Data Port ──
// The decision engine never talks to a data vendor directly. Anything that
// can turn a universe + sampling interval into per-instrument Series
// satisfies BarSource (Yahoo chart API in production, fakes in tests).

// Interval is the bar sampling interval in vendor notation, e.g. "1m", "15m".
type Interval string

// Lookback is how far back to fetch, in vendor notation, e.g. "1d", "5d".
type Lookback string

// BarSource fetches bar history for a set of instruments.
type BarSource interface {
	// FetchBars returns one Series per instrument that produced data.
	// Instruments without data are omitted from the Batch; an error is
	// returned only when nothing usable could be fetched.
	FetchBars(ctx context.Context, instruments []Instrument, interval Interval, lookback Lookback) (Batch, error)
}
