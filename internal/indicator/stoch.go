package indicator

import (
	"fmt"
	"math"

	"fxsignal/internal/model"
)

// Stochastic is the slow stochastic oscillator.
//
//	raw %K = 100 * (close - lowestLow(k)) / (highestHigh(k) - lowestLow(k))
//	%K     = SMA(smoothK) of raw %K
//	%D     = SMA(d) of %K
//
// A flat k-bar range leaves raw %K undefined (NaN); the SMAs carry the NaN
// until it leaves their window.
type Stochastic struct {
	k, d, smoothK int

	highs []float64 // ring of the last k highs
	lows  []float64 // ring of the last k lows
	idx   int
	count int

	kSMA Smoother
	dSMA Smoother
}

// NewStochastic creates a Stochastic(k, d, smoothK) indicator.
func NewStochastic(k, d, smoothK int) *Stochastic {
	return &Stochastic{
		k:       k,
		d:       d,
		smoothK: smoothK,
		highs:   make([]float64, k),
		lows:    make([]float64, k),
		kSMA:    NewSMA(smoothK),
		dSMA:    NewSMA(d),
	}
}

func (s *Stochastic) Name() string {
	return fmt.Sprintf("STOCH_%d_%d_%d", s.k, s.d, s.smoothK)
}

func (s *Stochastic) Update(bar model.Bar) {
	s.highs[s.idx] = bar.High
	s.lows[s.idx] = bar.Low
	s.idx = (s.idx + 1) % s.k
	s.count++
	if s.count < s.k {
		return
	}

	hh, ll := s.highs[0], s.lows[0]
	for i := 1; i < s.k; i++ {
		hh = math.Max(hh, s.highs[i])
		ll = math.Min(ll, s.lows[i])
	}
	raw := math.NaN()
	if hh > ll {
		raw = 100 * (bar.Close - ll) / (hh - ll)
	}

	s.kSMA.Push(raw)
	if s.kSMA.Ready() {
		s.dSMA.Push(s.kSMA.Value())
	}
}

// Value returns %K.
func (s *Stochastic) Value() float64 { return s.kSMA.Value() }

// K returns %K.
func (s *Stochastic) K() float64 { return s.kSMA.Value() }

// D returns %D.
func (s *Stochastic) D() float64 { return s.dSMA.Value() }

// KReady reports whether %K is defined.
func (s *Stochastic) KReady() bool { return s.kSMA.Ready() }

// Ready reports whether both %K and %D are defined.
func (s *Stochastic) Ready() bool { return s.kSMA.Ready() && s.dSMA.Ready() }
