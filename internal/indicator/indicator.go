// Package indicator provides technical indicator calculations over bar data.
//
// Indicators are streaming: feed bars oldest-first through Update and read
// Value once Ready reports true. Compute runs the full signal pipeline
// (ATR, RSI, MACD, Stochastic) over a Series and returns one Row per bar.
package indicator

import "fxsignal/internal/model"

// Indicator is the interface for all bar-driven technical indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "RSI_7", "ATR_14").
	Name() string

	// Update feeds the next bar and recalculates.
	Update(bar model.Bar)

	// Value returns the current calculated value. Returns 0 if not enough data.
	Value() float64

	// Ready returns true when enough data has been accumulated.
	Ready() bool
}

// Smoother is a moving average over an arbitrary value stream. Composite
// indicators push derived values (true range, MACD line, raw %K) through one.
type Smoother interface {
	Push(v float64)
	Value() float64
	Ready() bool
}

var (
	_ Indicator = (*ATR)(nil)
	_ Indicator = (*RSI)(nil)
	_ Indicator = (*MACD)(nil)
	_ Indicator = (*Stochastic)(nil)
	_ Indicator = (*EMA)(nil)
	_ Indicator = (*SMA)(nil)
	_ Indicator = (*SMMA)(nil)

	_ Smoother = (*EMA)(nil)
	_ Smoother = (*SMA)(nil)
	_ Smoother = (*SMMA)(nil)
)
