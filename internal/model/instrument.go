package model

import (
	"fmt"
	"strings"
)

// Instrument is a currency pair, e.g. EUR/USD.
type Instrument struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// Symbol returns the concatenated pair code: "EURUSD".
func (i Instrument) Symbol() string {
	return i.Base + i.Quote
}

func (i Instrument) String() string { return i.Symbol() }

// ParseInstrument accepts "EURUSD", "EURUSD=X" (Yahoo ticker) and "EUR/USD".
func ParseInstrument(s string) (Instrument, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	raw = strings.TrimSuffix(raw, "=X")
	raw = strings.ReplaceAll(raw, "/", "")
	if len(raw) != 6 || !isCurrency(raw[:3]) || !isCurrency(raw[3:]) {
		return Instrument{}, fmt.Errorf("instrument: invalid pair %q", s)
	}
	if raw[:3] == raw[3:] {
		return Instrument{}, fmt.Errorf("instrument: base and quote are both %s", raw[:3])
	}
	return Instrument{Base: raw[:3], Quote: raw[3:]}, nil
}

// ParseUniverse parses a comma-separated pair list, keeping the given order
// and dropping duplicates.
func ParseUniverse(s string) ([]Instrument, error) {
	var out []Instrument
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		inst, err := ParseInstrument(part)
		if err != nil {
			return nil, err
		}
		if seen[inst.Symbol()] {
			continue
		}
		seen[inst.Symbol()] = true
		out = append(out, inst)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("instrument: empty universe")
	}
	return out, nil
}

func isCurrency(code string) bool {
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}
