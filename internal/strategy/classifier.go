package strategy

import "fxsignal/internal/indicator"

// Neutral RSI level separating bullish from bearish momentum.
const rsiMidline = 50.0

// Classify decides the signal direction from the latest and previous rows.
//
// BUY:  RSI > 50, MACD line > signal, %K > %D now and %K <= %D on the
// previous bar (fresh upward cross).
// SELL: RSI < 50, MACD line < signal, %K < %D now and %K >= %D on the
// previous bar (fresh downward cross).
//
// Anything else, including an incomplete row, is ActionNone.
func Classify(latest, previous indicator.Row) Action {
	if !latest.Complete() || !previous.Complete() {
		return ActionNone
	}

	if latest.RSI > rsiMidline &&
		latest.MACD > latest.MACDSignal &&
		latest.StochK > latest.StochD &&
		previous.StochK <= previous.StochD {
		return ActionBuy
	}

	if latest.RSI < rsiMidline &&
		latest.MACD < latest.MACDSignal &&
		latest.StochK < latest.StochD &&
		previous.StochK >= previous.StochD {
		return ActionSell
	}

	return ActionNone
}

// Evaluate classifies the last two rows of a frame.
func Evaluate(frame *indicator.Frame) Action {
	latest, previous, ok := frame.Latest()
	if !ok {
		return ActionNone
	}
	return Classify(latest, previous)
}
