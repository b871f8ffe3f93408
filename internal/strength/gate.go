package strength

import (
	"slices"

	"fxsignal/internal/model"
	"fxsignal/internal/strategy"
)

// Eligible reports whether a candidate signal agrees with the currency bias.
//
// BUY needs a strong base or a weak quote; SELL needs a weak base or a
// strong quote. NONE is never eligible.
func Eligible(action strategy.Action, inst model.Instrument, top, bottom []string) bool {
	switch action {
	case strategy.ActionBuy:
		return slices.Contains(top, inst.Base) || slices.Contains(bottom, inst.Quote)
	case strategy.ActionSell:
		return slices.Contains(bottom, inst.Base) || slices.Contains(top, inst.Quote)
	default:
		return false
	}
}
