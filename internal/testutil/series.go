// Package testutil builds deterministic bar series for tests.
package testutil

import (
	"time"

	"fxsignal/internal/model"
)

// Start is the timestamp of the first bar produced by FromDeltas.
var Start = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

// FromDeltas builds a one-minute Series starting at price start. Each delta
// moves the close; open is the previous close and the wicks extend pad
// beyond the body.
func FromDeltas(start, pad float64, deltas []float64) model.Series {
	out := make(model.Series, 0, len(deltas))
	c := start
	for i, d := range deltas {
		o := c
		c = o + d
		hi, lo := o, c
		if c > o {
			hi, lo = c, o
		}
		out = append(out, model.Bar{
			TS:    Start.Add(time.Duration(i) * time.Minute),
			Open:  o,
			High:  hi + pad,
			Low:   lo - pad,
			Close: c,
		})
	}
	return out
}

// crossoverDeltas is a 30-bar path: a quiet start, a steady climb, a
// shallow pullback, then one strong bar. Run through the default pipeline
// it ends with RSI above 50, MACD above its signal and a fresh %K/%D
// upward cross on the final bar only.
var crossoverDeltas = func() []float64 {
	d := []float64{-0.0001, 0, 0.0001, -0.0001}
	for i := 0; i < 18; i++ {
		d = append(d, 0.0005)
	}
	for i := 0; i < 7; i++ {
		d = append(d, -0.0002)
	}
	return append(d, 0.004)
}()

// BuyCrossover returns a 30-bar series whose final bar is a BUY setup.
func BuyCrossover() model.Series {
	return FromDeltas(1.08, 0.0002, crossoverDeltas)
}

// SellCrossover mirrors BuyCrossover around the start price; its final bar
// is a SELL setup.
func SellCrossover() model.Series {
	neg := make([]float64, len(crossoverDeltas))
	for i, d := range crossoverDeltas {
		neg[i] = -d
	}
	return FromDeltas(1.08, 0.0002, neg)
}

// Flat returns n bars with zero movement and no wicks.
func Flat(n int, price float64) model.Series {
	return FromDeltas(price, 0, make([]float64, n))
}
