package strength

import (
	"context"
	"fmt"
	"log/slog"

	"fxsignal/internal/indicator"
	"fxsignal/internal/model"
)

// Source produces one RSI reading per instrument it has data for.
type Source interface {
	Snapshot(ctx context.Context, universe []model.Instrument) ([]Reading, error)
}

// BarSnapshot computes readings from coarser bars fetched through a
// BarSource. The RSI is computed here and not shared with the signal
// pipeline, which works on a finer interval.
type BarSnapshot struct {
	Source    model.BarSource
	Interval  model.Interval
	Lookback  model.Lookback
	RSIPeriod int
	Log       *slog.Logger
}

// NewBarSnapshot returns a snapshot source with 15m bars over 1d and RSI(7).
func NewBarSnapshot(src model.BarSource, log *slog.Logger) *BarSnapshot {
	if log == nil {
		log = slog.Default()
	}
	return &BarSnapshot{
		Source:    src,
		Interval:  "15m",
		Lookback:  "1d",
		RSIPeriod: 7,
		Log:       log.With("component", "strength"),
	}
}

// Snapshot fetches bars for the universe and returns readings in universe
// order. Instruments missing from the batch or with too few closes are
// omitted.
func (s *BarSnapshot) Snapshot(ctx context.Context, universe []model.Instrument) ([]Reading, error) {
	batch, err := s.Source.FetchBars(ctx, universe, s.Interval, s.Lookback)
	if err != nil {
		return nil, fmt.Errorf("strength snapshot: %w", err)
	}

	out := make([]Reading, 0, len(universe))
	for _, inst := range universe {
		series, ok := batch[inst.Symbol()]
		if !ok {
			continue
		}
		rsi, ok := indicator.LastRSI(series.Closes(), s.RSIPeriod)
		if !ok {
			s.Log.Debug("strength: not enough closes", "instrument", inst.Symbol(), "bars", len(series))
			continue
		}
		out = append(out, Reading{Instrument: inst, RSI: rsi})
	}
	return out, nil
}
