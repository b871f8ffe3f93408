package indicator

import (
	"math"
	"strconv"

	"fxsignal/internal/model"
)

// ATR calculates Average True Range with Wilder smoothing.
// The first bar only seeds the previous close; true range starts at bar two.
type ATR struct {
	period    int
	smooth    Smoother
	prevClose float64
	seen      bool
}

// NewATR creates a new ATR indicator with the given period (typically 14).
func NewATR(period int) *ATR {
	return &ATR{period: period, smooth: NewSMMA(period)}
}

func (a *ATR) Name() string { return "ATR_" + strconv.Itoa(a.period) }

func (a *ATR) Update(bar model.Bar) {
	if a.seen {
		a.smooth.Push(TrueRange(bar, a.prevClose))
	}
	a.prevClose = bar.Close
	a.seen = true
}

func (a *ATR) Value() float64 { return a.smooth.Value() }
func (a *ATR) Ready() bool    { return a.smooth.Ready() }

// TrueRange is max(high−low, |high−prevClose|, |low−prevClose|).
func TrueRange(bar model.Bar, prevClose float64) float64 {
	return math.Max(bar.High-bar.Low,
		math.Max(math.Abs(bar.High-prevClose), math.Abs(bar.Low-prevClose)))
}
