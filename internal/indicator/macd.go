package indicator

import (
	"fmt"

	"fxsignal/internal/model"
)

// MACD is the fast EMA minus the slow EMA of closes (the line) plus an EMA
// of that line (the signal). The signal EMA only starts once the slow EMA
// has seeded, so the first signal value appears after slow+signal-1 bars.
type MACD struct {
	fast, slow, signalPeriod int

	fastEMA   Smoother
	slowEMA   Smoother
	signalEMA Smoother
	line      float64
}

// NewMACD creates a MACD(fast, slow, signal) indicator.
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:         fast,
		slow:         slow,
		signalPeriod: signal,
		fastEMA:      NewEMA(fast),
		slowEMA:      NewEMA(slow),
		signalEMA:    NewEMA(signal),
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD_%d_%d_%d", m.fast, m.slow, m.signalPeriod)
}

func (m *MACD) Update(bar model.Bar) {
	m.fastEMA.Push(bar.Close)
	m.slowEMA.Push(bar.Close)
	if !m.LineReady() {
		return
	}
	m.line = m.fastEMA.Value() - m.slowEMA.Value()
	m.signalEMA.Push(m.line)
}

// Value returns the MACD line.
func (m *MACD) Value() float64 { return m.line }

// Signal returns the signal line.
func (m *MACD) Signal() float64 { return m.signalEMA.Value() }

// LineReady reports whether the MACD line is defined.
func (m *MACD) LineReady() bool { return m.fastEMA.Ready() && m.slowEMA.Ready() }

// Ready reports whether both the line and the signal are defined.
func (m *MACD) Ready() bool { return m.LineReady() && m.signalEMA.Ready() }
