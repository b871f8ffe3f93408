package cadence

import (
	"errors"
	"time"

	"fxsignal/internal/indicator"
	"fxsignal/internal/model"
	"fxsignal/internal/strategy"
	"fxsignal/internal/strength"
)

// ErrDataUnavailable means the signal bar fetch failed or returned nothing.
var ErrDataUnavailable = errors.New("cadence: market data unavailable")

// Outcome is the result of one tick.
type Outcome string

const (
	OutcomeOutsideHours   Outcome = "outside_hours"
	OutcomeCooldown       Outcome = "cooldown"
	OutcomePassFailed     Outcome = "pass_failed"
	OutcomeNoRanking      Outcome = "no_ranking"
	OutcomeNoSignal       Outcome = "no_signal"
	OutcomeSignalSent     Outcome = "signal_sent"
	OutcomeDeliveryFailed Outcome = "delivery_failed" // attempted; cooldown still applies
)

// Idle reports whether the tick ended without scanning instruments.
func (o Outcome) Idle() bool {
	return o == OutcomeOutsideHours || o == OutcomeCooldown
}

// Skip reasons recorded per instrument.
const (
	SkipNoData         = "no_data"
	SkipInvalidSeries  = "invalid_series"
	SkipInsufficient   = "insufficient_history"
	SkipUndefined      = "indicator_undefined"
	SkipLowVolatility  = "low_volatility"
	SkipStrengthFilter = "strength_filter"
)

// Evaluation is what a pass concluded for one instrument.
type Evaluation struct {
	Instrument model.Instrument `json:"instrument"`
	Action     strategy.Action  `json:"action"`
	Eligible   bool             `json:"eligible"`
	Skip       string           `json:"skip,omitempty"`
	Close      float64          `json:"close,omitempty"`
	Latest     *indicator.Row   `json:"-"`
}

// Report describes one evaluation pass.
type Report struct {
	Outcome     Outcome          `json:"outcome"`
	At          time.Time        `json:"at"`
	TraceID     string           `json:"trace_id"`
	Ranking     strength.Ranking `json:"ranking,omitempty"`
	Top         []string         `json:"top,omitempty"`
	Bottom      []string         `json:"bottom,omitempty"`
	Evaluations []Evaluation     `json:"evaluations,omitempty"`
	Signal      *strategy.Signal `json:"signal,omitempty"`
	Err         error            `json:"-"`
}
