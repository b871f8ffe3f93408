// Package strategy turns indicator state into trading signals.
//
// Classify is the crossover/threshold rule: a pure function of the two most
// recent indicator rows of one instrument. Evaluate applies it to a Frame.
package strategy

import (
	"time"

	"fxsignal/internal/model"

	"github.com/google/uuid"
)

// Action represents a signal direction.
type Action string

const (
	ActionNone Action = "NONE"
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Label returns the human-readable direction used in alerts.
func (a Action) Label() string {
	switch a {
	case ActionBuy:
		return "BUY (CALL)"
	case ActionSell:
		return "SELL (PUT)"
	default:
		return "NONE"
	}
}

// Signal is a directional alert for one instrument. It is built, optionally
// delivered, then discarded.
type Signal struct {
	ID         string           `json:"id"`
	Instrument model.Instrument `json:"instrument"`
	Action     Action           `json:"action"`
	Price      float64          `json:"price"` // close of the bar that fired
	TS         time.Time        `json:"ts"`    // evaluation time
}

// NewSignal creates a signal with a fresh ID.
func NewSignal(inst model.Instrument, action Action, price float64, ts time.Time) Signal {
	return Signal{
		ID:         uuid.NewString(),
		Instrument: inst,
		Action:     action,
		Price:      price,
		TS:         ts,
	}
}
