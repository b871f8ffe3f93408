package model

import (
	"fmt"
	"time"
)

// MinBars is the shortest Series the indicator pipeline will evaluate.
// MACD(5,13,8) is the slowest indicator and needs 20 bars before its signal
// line exists; the extra bars let the smoothing settle.
const MinBars = 30

// Bar is one OHLC time step of a currency pair.
// FX quotes carry five decimals, so prices are float64 rather than minor units.
type Bar struct {
	TS    time.Time `json:"ts"` // bucket start time (UTC)
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// Series is an ordered run of bars for one instrument, oldest first.
type Series []Bar

// Last returns the most recent bar. ok is false for an empty series.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Closes returns the close prices in series order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Validate checks that timestamps are strictly ascending.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].TS.After(s[i-1].TS) {
			return fmt.Errorf("series: bar %d at %s is not after bar %d at %s",
				i, s[i].TS.Format(time.RFC3339), i-1, s[i-1].TS.Format(time.RFC3339))
		}
	}
	return nil
}

// Batch holds one Series per instrument, keyed by Instrument.Symbol().
type Batch map[string]Series
