package strategy

import (
	"math"
	"testing"
	"time"

	"fxsignal/internal/indicator"
	"fxsignal/internal/model"
	"fxsignal/internal/testutil"
)

func buyRows() (latest, previous indicator.Row) {
	latest = indicator.Row{ATR: 0.001, RSI: 60, MACD: 0.0012, MACDSignal: 0.0010, StochK: 40, StochD: 25}
	previous = indicator.Row{ATR: 0.001, RSI: 55, MACD: 0.0011, MACDSignal: 0.0010, StochK: 15, StochD: 18}
	return
}

// mirror inverts a row around the neutral points of each oscillator.
func mirror(r indicator.Row) indicator.Row {
	return indicator.Row{
		ATR:        r.ATR,
		RSI:        100 - r.RSI,
		MACD:       -r.MACD,
		MACDSignal: -r.MACDSignal,
		StochK:     100 - r.StochK,
		StochD:     100 - r.StochD,
	}
}

func TestClassify_Buy(t *testing.T) {
	latest, prev := buyRows()
	if got := Classify(latest, prev); got != ActionBuy {
		t.Errorf("expected BUY, got %s", got)
	}
}

func TestClassify_SymmetricUnderMirror(t *testing.T) {
	latest, prev := buyRows()
	if got := Classify(mirror(latest), mirror(prev)); got != ActionSell {
		t.Errorf("expected SELL for mirrored rows, got %s", got)
	}

	// Equality on the previous bar still counts as a fresh cross.
	prev.StochK, prev.StochD = 20, 20
	if got := Classify(latest, prev); got != ActionBuy {
		t.Errorf("expected BUY with K == D on previous bar, got %s", got)
	}
	if got := Classify(mirror(latest), mirror(prev)); got != ActionSell {
		t.Errorf("expected SELL with K == D on previous bar, got %s", got)
	}
}

func TestClassify_StaleCrossIsNone(t *testing.T) {
	latest, prev := buyRows()
	prev.StochK, prev.StochD = 30, 20 // already above
	if got := Classify(latest, prev); got != ActionNone {
		t.Errorf("expected NONE for stale crossover, got %s", got)
	}
	if got := Classify(mirror(latest), mirror(prev)); got != ActionNone {
		t.Errorf("expected NONE for mirrored stale crossover, got %s", got)
	}
}

func TestClassify_ConditionsMustAllHold(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *indicator.Row)
	}{
		{"rsi exactly 50", func(l *indicator.Row) { l.RSI = 50 }},
		{"rsi below 50", func(l *indicator.Row) { l.RSI = 45 }},
		{"macd equal to signal", func(l *indicator.Row) { l.MACDSignal = l.MACD }},
		{"macd below signal", func(l *indicator.Row) { l.MACD = 0.0009 }},
		{"k equal to d", func(l *indicator.Row) { l.StochK = l.StochD }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest, prev := buyRows()
			tt.mutate(&latest)
			if got := Classify(latest, prev); got != ActionNone {
				t.Errorf("expected NONE, got %s", got)
			}
		})
	}
}

func TestClassify_IncompleteRowIsNone(t *testing.T) {
	latest, prev := buyRows()
	latest.MACDSignal = math.NaN()
	if got := Classify(latest, prev); got != ActionNone {
		t.Errorf("expected NONE for NaN in latest, got %s", got)
	}

	latest, prev = buyRows()
	prev.StochD = math.NaN()
	if got := Classify(latest, prev); got != ActionNone {
		t.Errorf("expected NONE for NaN in previous, got %s", got)
	}
}

func TestEvaluate_SyntheticSeries(t *testing.T) {
	tests := []struct {
		name   string
		series model.Series
		want   Action
	}{
		{"buy crossover", testutil.BuyCrossover(), ActionBuy},
		{"sell crossover", testutil.SellCrossover(), ActionSell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := indicator.Compute(tt.series, indicator.DefaultParams())
			if err != nil {
				t.Fatalf("compute: %v", err)
			}
			if got := Evaluate(frame); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEvaluate_OnlyFinalBarFires(t *testing.T) {
	// One more bar after the cross: the previous row already has K > D.
	series := testutil.BuyCrossover()
	extended := append(model.Series{}, series...)
	last := series[len(series)-1]
	next := last
	next.TS = last.TS.Add(time.Minute)
	next.Open = last.Close
	next.High = last.Close + 0.0003
	next.Low = last.Close - 0.0001
	next.Close = last.Close + 0.0001
	extended = append(extended, next)

	frame, err := indicator.Compute(extended, indicator.DefaultParams())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	latest, prev, _ := frame.Latest()
	if prev.StochK <= prev.StochD {
		t.Fatalf("expected the cross to have happened on the previous bar: K=%v D=%v", prev.StochK, prev.StochD)
	}
	if got := Evaluate(frame); got != ActionNone {
		t.Errorf("expected NONE one bar after the cross, got %s (latest %+v)", got, latest)
	}
}

func TestEvaluate_ShortOrNilFrame(t *testing.T) {
	if got := Evaluate(nil); got != ActionNone {
		t.Errorf("expected NONE for nil frame, got %s", got)
	}
	one := &indicator.Frame{Rows: []indicator.Row{{}}}
	if got := Evaluate(one); got != ActionNone {
		t.Errorf("expected NONE for single-row frame, got %s", got)
	}
}

func TestAction_Label(t *testing.T) {
	if ActionBuy.Label() != "BUY (CALL)" {
		t.Errorf("unexpected buy label %q", ActionBuy.Label())
	}
	if ActionSell.Label() != "SELL (PUT)" {
		t.Errorf("unexpected sell label %q", ActionSell.Label())
	}
	if ActionNone.Label() != "NONE" {
		t.Errorf("unexpected none label %q", ActionNone.Label())
	}
}

func TestNewSignal_UniqueIDs(t *testing.T) {
	inst := model.Instrument{Base: "EUR", Quote: "USD"}
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	a := NewSignal(inst, ActionBuy, 1.0855, now)
	b := NewSignal(inst, ActionBuy, 1.0855, now)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Instrument != inst || a.Action != ActionBuy || !a.TS.Equal(now) {
		t.Errorf("unexpected signal %+v", a)
	}
}
