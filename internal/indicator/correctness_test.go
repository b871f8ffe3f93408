package indicator

import (
	"math"
	"testing"

	"fxsignal/internal/model"
)

// ────────────────────────────────────────────────────────────
// Helper
// ────────────────────────────────────────────────────────────

func bar(high, low, close float64) model.Bar {
	return model.Bar{Open: close, High: high, Low: low, Close: close}
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f, diff=%.6f)", label, got, want, tol, math.Abs(got-want))
	}
}

// ────────────────────────────────────────────────────────────
// Moving averages
// ────────────────────────────────────────────────────────────

func TestSMA_Correctness_Period3(t *testing.T) {
	// Values: 1, 2, 3, 4, 5
	// SMA(3): -, -, 2, 3, 4
	sma := NewSMA(3)
	expected := []float64{0, 0, 2, 3, 4}
	ready := []bool{false, false, true, true, true}

	for i, v := range []float64{1, 2, 3, 4, 5} {
		sma.Push(v)
		if sma.Ready() != ready[i] {
			t.Errorf("value %d: Ready()=%v, want %v", i, sma.Ready(), ready[i])
		}
		if ready[i] {
			assertClose(t, "SMA(3)", sma.Value(), expected[i], 1e-9)
		}
	}
}

func TestSMA_NaNRollsOut(t *testing.T) {
	sma := NewSMA(2)
	sma.Push(1)
	sma.Push(math.NaN())
	if !math.IsNaN(sma.Value()) {
		t.Fatalf("expected NaN while NaN is in window, got %v", sma.Value())
	}
	sma.Push(3)
	if !math.IsNaN(sma.Value()) {
		t.Fatalf("expected NaN while NaN is in window, got %v", sma.Value())
	}
	sma.Push(5)
	assertClose(t, "SMA(2) after NaN", sma.Value(), 4, 1e-9)
}

func TestEMA_Correctness_Period3(t *testing.T) {
	// Seed: SMA(1,2,3) = 2; multiplier = 2/(3+1) = 0.5
	// 4 → 4*0.5 + 2*0.5 = 3
	// 5 → 4
	// 6 → 5
	ema := NewEMA(3)
	for _, v := range []float64{1, 2} {
		ema.Push(v)
		if ema.Ready() {
			t.Fatal("EMA ready too early")
		}
	}
	ema.Push(3)
	assertClose(t, "EMA seed", ema.Value(), 2, 1e-9)
	for i, want := range []float64{3, 4, 5} {
		ema.Push(float64(4 + i))
		assertClose(t, "EMA(3)", ema.Value(), want, 1e-9)
	}
	if ema.Name() != "EMA_3" {
		t.Errorf("expected name EMA_3, got %s", ema.Name())
	}
}

func TestSMMA_Correctness_Period3(t *testing.T) {
	// Seed: (1+2+3)/3 = 2
	// Next: (2*2 + 6)/3 = 10/3
	s := NewSMMA(3)
	for _, v := range []float64{1, 2, 3} {
		s.Push(v)
	}
	assertClose(t, "SMMA seed", s.Value(), 2, 1e-9)
	s.Push(6)
	assertClose(t, "SMMA(3)", s.Value(), 10.0/3.0, 1e-9)
}

// ────────────────────────────────────────────────────────────
// RSI Correctness
// ────────────────────────────────────────────────────────────

func TestRSI_Correctness_Period3(t *testing.T) {
	// Closes: 10, 11, 12, 11, 13 → deltas +1, +1, -1, +2
	// Seed after 4 closes: avgGain = 2/3, avgLoss = 1/3 → RS = 2 → RSI = 66.6667
	// Next (+2): avgGain = (2/3*2 + 2)/3 = 10/9, avgLoss = (1/3*2)/3 = 2/9
	//            RS = 5 → RSI = 83.3333
	rsi := NewRSI(3)
	for _, c := range []float64{10, 11, 12} {
		rsi.Push(c)
		if rsi.Ready() {
			t.Fatal("RSI ready too early")
		}
	}
	rsi.Push(11)
	if !rsi.Ready() {
		t.Fatal("RSI should be ready after period+1 closes")
	}
	assertClose(t, "RSI seed", rsi.Value(), 200.0/3.0, 1e-6)
	rsi.Push(13)
	assertClose(t, "RSI(3)", rsi.Value(), 250.0/3.0, 1e-6)
}

func TestRSI_AllGains(t *testing.T) {
	rsi := NewRSI(3)
	for _, c := range []float64{1, 2, 3, 4, 5} {
		rsi.Push(c)
	}
	assertClose(t, "RSI all gains", rsi.Value(), 100, 1e-9)
}

func TestRSI_Bounded(t *testing.T) {
	rsi := NewRSI(7)
	closes := []float64{1.1, 1.2, 1.05, 1.3, 1.0, 1.4, 0.9, 1.5, 0.8, 1.6, 0.7}
	for _, c := range closes {
		rsi.Push(c)
		if rsi.Ready() && (rsi.Value() < 0 || rsi.Value() > 100) {
			t.Fatalf("RSI out of bounds: %v", rsi.Value())
		}
	}
}

func TestLastRSI(t *testing.T) {
	if _, ok := LastRSI([]float64{1, 2, 3}, 3); ok {
		t.Error("expected ok=false with only 3 closes for RSI(3)")
	}
	v, ok := LastRSI([]float64{10, 11, 12, 11, 13}, 3)
	if !ok {
		t.Fatal("expected ok=true")
	}
	assertClose(t, "LastRSI", v, 250.0/3.0, 1e-6)
}

// ────────────────────────────────────────────────────────────
// ATR Correctness
// ────────────────────────────────────────────────────────────

func TestATR_Correctness_Period3(t *testing.T) {
	// Bars (h, l, c):
	//   (11, 9, 10)   seeds prevClose only
	//   (12, 10, 11)  TR = max(2, 2, 0) = 2
	//   (13, 11, 12)  TR = max(2, 2, 0) = 2
	//   (12, 8, 9)    TR = max(4, 0, 4) = 4 → seed (2+2+4)/3 = 8/3
	//   (10, 9, 9.5)  TR = max(1, 1, 0) = 1 → (8/3*2 + 1)/3 = 19/9
	atr := NewATR(3)
	bars := []model.Bar{bar(11, 9, 10), bar(12, 10, 11), bar(13, 11, 12)}
	for _, b := range bars {
		atr.Update(b)
		if atr.Ready() {
			t.Fatal("ATR ready too early")
		}
	}
	atr.Update(bar(12, 8, 9))
	if !atr.Ready() {
		t.Fatal("ATR should be ready after period+1 bars")
	}
	assertClose(t, "ATR seed", atr.Value(), 8.0/3.0, 1e-9)
	atr.Update(bar(10, 9, 9.5))
	assertClose(t, "ATR(3)", atr.Value(), 19.0/9.0, 1e-9)
}

func TestTrueRange_GapUsesPreviousClose(t *testing.T) {
	// Gap up: range 1.2010-1.2000 is tiny, prev close far below.
	tr := TrueRange(bar(1.2010, 1.2000, 1.2005), 1.1900)
	assertClose(t, "TR gap", tr, 0.0110, 1e-12)
}

// ────────────────────────────────────────────────────────────
// MACD Correctness
// ────────────────────────────────────────────────────────────

func TestMACD_Correctness_2_3_2(t *testing.T) {
	// Closes 1, 2, 3, 4, 6, 5
	// EMA(2) seeds at close 2 (1.5); EMA(3) seeds at close 3 (2.0)
	// close 3: line 0.5
	// close 4: line 0.5, signal seed (0.5+0.5)/2 = 0.5
	// close 6: line 2/3, signal 0.611111
	// close 5: line 0.305556, signal 0.407407
	m := NewMACD(2, 3, 2)
	closes := []float64{1, 2, 3, 4, 6, 5}
	wantLine := []float64{math.NaN(), math.NaN(), 0.5, 0.5, 2.0 / 3.0, 0.30555556}
	wantSig := []float64{math.NaN(), math.NaN(), math.NaN(), 0.5, 0.61111111, 0.40740741}

	for i, c := range closes {
		m.Update(bar(c, c, c))
		if math.IsNaN(wantLine[i]) {
			if m.LineReady() {
				t.Errorf("close %d: line ready too early", i)
			}
			continue
		}
		assertClose(t, "MACD line", m.Value(), wantLine[i], 1e-6)
		if math.IsNaN(wantSig[i]) {
			if m.Ready() {
				t.Errorf("close %d: signal ready too early", i)
			}
			continue
		}
		assertClose(t, "MACD signal", m.Signal(), wantSig[i], 1e-6)
	}
}

// ────────────────────────────────────────────────────────────
// Stochastic Correctness
// ────────────────────────────────────────────────────────────

func TestStochastic_Correctness_3_2_2(t *testing.T) {
	// Bars (h, l, c): (10,8,9) (11,9,10) (12,10,11) (12,9,10) (13,10,12) (12,10,11)
	// raw %K from bar 3: 75, 33.33, 75, 50
	// %K = SMA2(raw): -, 54.1667, 54.1667, 62.5
	// %D = SMA2(%K):  -, -, 54.1667, 58.3333
	s := NewStochastic(3, 2, 2)
	bars := []model.Bar{
		bar(10, 8, 9), bar(11, 9, 10), bar(12, 10, 11),
		bar(12, 9, 10), bar(13, 10, 12), bar(12, 10, 11),
	}
	for _, b := range bars[:4] {
		s.Update(b)
	}
	if !s.KReady() || s.Ready() {
		t.Fatalf("after 4 bars: KReady=%v Ready=%v, want true/false", s.KReady(), s.Ready())
	}
	assertClose(t, "%K bar4", s.K(), 54.166667, 1e-5)

	s.Update(bars[4])
	assertClose(t, "%K bar5", s.K(), 54.166667, 1e-5)
	assertClose(t, "%D bar5", s.D(), 54.166667, 1e-5)

	s.Update(bars[5])
	assertClose(t, "%K bar6", s.K(), 62.5, 1e-5)
	assertClose(t, "%D bar6", s.D(), 58.333333, 1e-5)
}

func TestStochastic_FlatRangeIsNaN(t *testing.T) {
	s := NewStochastic(3, 2, 2)
	for i := 0; i < 6; i++ {
		s.Update(bar(1.1, 1.1, 1.1))
	}
	if !s.Ready() {
		t.Fatal("expected ready after 6 bars")
	}
	if !math.IsNaN(s.K()) || !math.IsNaN(s.D()) {
		t.Errorf("expected NaN %%K/%%D on a flat range, got %v/%v", s.K(), s.D())
	}
}
