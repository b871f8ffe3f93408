// Package strength scores currencies by medium-term momentum and gates
// signals against the resulting ranking.
package strength

import (
	"math"
	"sort"

	"fxsignal/internal/model"
)

// Reading is the latest RSI of one instrument on the strength interval.
type Reading struct {
	Instrument model.Instrument `json:"instrument"`
	RSI        float64          `json:"rsi"`
}

// Score is the mean strength of one currency across the universe.
type Score struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// Ranking is ordered strongest first.
type Ranking []Score

// Rank averages each currency's contributions and sorts descending.
//
// A pair with RSI r contributes r to its base and 100-r to its quote.
// Currencies without any contribution are absent from the result. Ties keep
// the order in which the currencies were first seen. NaN or infinite
// readings are ignored.
func Rank(readings []Reading) Ranking {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var order []string

	add := func(ccy string, v float64) {
		if counts[ccy] == 0 {
			order = append(order, ccy)
		}
		sums[ccy] += v
		counts[ccy]++
	}

	for _, r := range readings {
		if math.IsNaN(r.RSI) || math.IsInf(r.RSI, 0) {
			continue
		}
		add(r.Instrument.Base, r.RSI)
		add(r.Instrument.Quote, 100-r.RSI)
	}

	out := make(Ranking, 0, len(order))
	for _, ccy := range order {
		out = append(out, Score{Currency: ccy, Value: sums[ccy] / float64(counts[ccy])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// Top returns up to n of the strongest currencies.
func (r Ranking) Top(n int) []string {
	if n > len(r) {
		n = len(r)
	}
	if n <= 0 {
		return nil
	}
	return r[:n].Currencies()
}

// Bottom returns up to n of the weakest currencies, in ranking order.
func (r Ranking) Bottom(n int) []string {
	if n > len(r) {
		n = len(r)
	}
	if n <= 0 {
		return nil
	}
	return r[len(r)-n:].Currencies()
}

// Currencies returns the currency codes in ranking order.
func (r Ranking) Currencies() []string {
	out := make([]string, len(r))
	for i, s := range r {
		out[i] = s.Currency
	}
	return out
}
