package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fxsignal/internal/strategy"
)

// pricePlaces is the precision of FX quotes in alerts.
const pricePlaces = 5

// SignalPayload is the structured form of a signal alert.
type SignalPayload struct {
	ID     string    `json:"id"`
	Symbol string    `json:"symbol"`
	Action string    `json:"action"`
	Price  string    `json:"price"`
	TS     time.Time `json:"ts"`
	Strong []string  `json:"strong"`
	Weak   []string  `json:"weak"`
}

// FormatPrice rounds to five decimals and drops trailing zeros.
func FormatPrice(p float64) string {
	return decimal.NewFromFloat(p).Round(pricePlaces).String()
}

// SignalAlert formats a signal with the strongest and weakest currencies.
func SignalAlert(sig strategy.Signal, strong, weak []string) Alert {
	price := FormatPrice(sig.Price)

	arrow := ""
	switch sig.Action {
	case strategy.ActionBuy:
		arrow = " 🟢"
	case strategy.ActionSell:
		arrow = " 🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Action: %s%s\n", sig.Action.Label(), arrow)
	fmt.Fprintf(&b, "Price: %s\n\n", price)
	fmt.Fprintf(&b, "💪 Strong: %s\n", strings.Join(strong, ", "))
	fmt.Fprintf(&b, "❄️ Weak: %s", strings.Join(weak, ", "))

	return Alert{
		Level:   AlertSignal,
		Title:   "SIGNAL: " + sig.Instrument.Symbol(),
		Message: b.String(),
		Signal: &SignalPayload{
			ID:     sig.ID,
			Symbol: sig.Instrument.Symbol(),
			Action: string(sig.Action),
			Price:  price,
			TS:     sig.TS.UTC(),
			Strong: append([]string(nil), strong...),
			Weak:   append([]string(nil), weak...),
		},
	}
}

// StartupAlert is sent once when the service starts.
func StartupAlert(detail string) Alert {
	return Alert{Level: AlertInfo, Title: "Bot started", Message: detail}
}
