package indicator

import (
	"strconv"

	"fxsignal/internal/model"
)

// SMA calculates Simple Moving Average over a rolling window.
// Uses a preallocated circular buffer. A NaN in the window makes the value
// NaN until it rolls out.
type SMA struct {
	period  int
	buf     []float64 // preallocated circular buffer
	idx     int       // current write position
	count   int       // total values received
	current float64
}

// NewSMA creates a new SMA indicator with the given period.
func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
		buf:    make([]float64, period),
	}
}

func (s *SMA) Name() string { return "SMA_" + strconv.Itoa(s.period) }

// Update feeds the bar's close.
func (s *SMA) Update(bar model.Bar) { s.Push(bar.Close) }

// Push feeds a raw value.
func (s *SMA) Push(v float64) {
	s.buf[s.idx] = v
	s.idx = (s.idx + 1) % s.period
	s.count++

	if s.count < s.period {
		return
	}
	// Re-sum oldest to newest instead of keeping a running total so a NaN
	// does not stick forever.
	sum := 0.0
	for i := 0; i < s.period; i++ {
		sum += s.buf[(s.idx+i)%s.period]
	}
	s.current = sum / float64(s.period)
}

func (s *SMA) Value() float64 { return s.current }
func (s *SMA) Ready() bool    { return s.count >= s.period }

// Reset clears the SMA state for reuse.
func (s *SMA) Reset() {
	s.idx = 0
	s.count = 0
	s.current = 0
	for i := range s.buf {
		s.buf[i] = 0
	}
}
