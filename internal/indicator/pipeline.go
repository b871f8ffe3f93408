package indicator

import (
	"errors"
	"fmt"
	"math"

	"fxsignal/internal/model"
)

var (
	// ErrInsufficientHistory means the Series is shorter than model.MinBars.
	ErrInsufficientHistory = errors.New("indicator: insufficient history")

	// ErrIndicatorUndefined means the latest bar has no ATR value.
	ErrIndicatorUndefined = errors.New("indicator: value undefined")

	// ErrLowVolatility means the latest ATR is below the volatility floor.
	// It is a liquidity filter, not a failure.
	ErrLowVolatility = errors.New("indicator: atr below volatility floor")
)

// Params configures the signal pipeline.
type Params struct {
	ATRPeriod   int     `json:"atr_period" yaml:"atr_period"`
	MinATR      float64 `json:"min_atr" yaml:"min_atr"`
	RSIPeriod   int     `json:"rsi_period" yaml:"rsi_period"`
	MACDFast    int     `json:"macd_fast" yaml:"macd_fast"`
	MACDSlow    int     `json:"macd_slow" yaml:"macd_slow"`
	MACDSignal  int     `json:"macd_signal" yaml:"macd_signal"`
	StochK      int     `json:"stoch_k" yaml:"stoch_k"`
	StochD      int     `json:"stoch_d" yaml:"stoch_d"`
	StochSmooth int     `json:"stoch_smooth_k" yaml:"stoch_smooth_k"`
}

// DefaultParams returns ATR(14), RSI(7), MACD(5,13,8), Stochastic(5,3,3)
// with a 0.00008 volatility floor.
func DefaultParams() Params {
	return Params{
		ATRPeriod:   14,
		MinATR:      0.00008,
		RSIPeriod:   7,
		MACDFast:    5,
		MACDSlow:    13,
		MACDSignal:  8,
		StochK:      5,
		StochD:      3,
		StochSmooth: 3,
	}
}

// Validate rejects non-positive periods and a fast MACD that is not faster.
func (p Params) Validate() error {
	for name, v := range map[string]int{
		"atr_period":     p.ATRPeriod,
		"rsi_period":     p.RSIPeriod,
		"macd_fast":      p.MACDFast,
		"macd_slow":      p.MACDSlow,
		"macd_signal":    p.MACDSignal,
		"stoch_k":        p.StochK,
		"stoch_d":        p.StochD,
		"stoch_smooth_k": p.StochSmooth,
	} {
		if v <= 0 {
			return fmt.Errorf("indicator: %s must be positive, got %d", name, v)
		}
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("indicator: macd_fast (%d) must be below macd_slow (%d)", p.MACDFast, p.MACDSlow)
	}
	if p.MinATR < 0 {
		return fmt.Errorf("indicator: min_atr must not be negative, got %g", p.MinATR)
	}
	return nil
}

// Row holds the indicator values attached to one bar. Values that are not
// yet defined are NaN.
type Row struct {
	ATR        float64 `json:"atr"`
	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd_line"`
	MACDSignal float64 `json:"macd_signal"`
	StochK     float64 `json:"stoch_k"`
	StochD     float64 `json:"stoch_d"`
}

// Complete reports whether every value in the row is finite.
func (r Row) Complete() bool {
	for _, v := range [...]float64{r.ATR, r.RSI, r.MACD, r.MACDSignal, r.StochK, r.StochD} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Frame is a Series with one indicator Row per bar.
type Frame struct {
	Series model.Series
	Rows   []Row
}

// Latest returns the last two rows. ok is false with fewer than two rows.
func (f *Frame) Latest() (latest, previous Row, ok bool) {
	if f == nil || len(f.Rows) < 2 {
		return Row{}, Row{}, false
	}
	n := len(f.Rows)
	return f.Rows[n-1], f.Rows[n-2], true
}

// Compute runs ATR, RSI, MACD and Stochastic over the series.
// The series is not modified. Errors:
//   - ErrInsufficientHistory when len(series) < model.MinBars
//   - ErrIndicatorUndefined when the latest ATR is not defined
//   - ErrLowVolatility when the latest ATR is below p.MinATR
//
// The returned Frame is populated for ErrLowVolatility so callers can log
// the offending value.
func Compute(series model.Series, p Params) (*Frame, error) {
	if len(series) < model.MinBars {
		return nil, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientHistory, len(series), model.MinBars)
	}

	atr := NewATR(p.ATRPeriod)
	rsi := NewRSI(p.RSIPeriod)
	macd := NewMACD(p.MACDFast, p.MACDSlow, p.MACDSignal)
	stoch := NewStochastic(p.StochK, p.StochD, p.StochSmooth)

	rows := make([]Row, len(series))
	for i, bar := range series {
		atr.Update(bar)
		rsi.Update(bar)
		macd.Update(bar)
		stoch.Update(bar)

		rows[i] = Row{
			ATR:        valueOrNaN(atr.Value(), atr.Ready()),
			RSI:        valueOrNaN(rsi.Value(), rsi.Ready()),
			MACD:       valueOrNaN(macd.Value(), macd.LineReady()),
			MACDSignal: valueOrNaN(macd.Signal(), macd.Ready()),
			StochK:     valueOrNaN(stoch.K(), stoch.KReady()),
			StochD:     valueOrNaN(stoch.D(), stoch.Ready()),
		}
	}

	frame := &Frame{Series: series, Rows: rows}
	last := rows[len(rows)-1].ATR
	if math.IsNaN(last) {
		return nil, fmt.Errorf("%w: atr", ErrIndicatorUndefined)
	}
	if last < p.MinATR {
		return frame, fmt.Errorf("%w: %.6f < %.6f", ErrLowVolatility, last, p.MinATR)
	}
	return frame, nil
}

func valueOrNaN(v float64, ready bool) float64 {
	if !ready {
		return math.NaN()
	}
	return v
}
