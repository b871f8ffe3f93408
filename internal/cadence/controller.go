// Package cadence drives the signal engine: one evaluation pass per tick,
// inside the trading window, at most one delivered signal per cooldown.
package cadence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fxsignal/internal/indicator"
	"fxsignal/internal/logger"
	"fxsignal/internal/markethours"
	"fxsignal/internal/metrics"
	"fxsignal/internal/model"
	"fxsignal/internal/notification"
	"fxsignal/internal/strategy"
	"fxsignal/internal/strength"
)

// Config for the controller.
type Config struct {
	Universe       []model.Instrument // scan order; first eligible wins
	Window         markethours.Window
	Cooldown       time.Duration
	TickInterval   time.Duration
	SignalInterval model.Interval
	SignalLookback model.Lookback
	TopN           int
	Params         indicator.Params
}

// Deps are the collaborators of a controller. Metrics, Health, Log and Now
// are optional.
type Deps struct {
	Bars     model.BarSource
	Strength strength.Source
	Notifier notification.Notifier
	Metrics  *metrics.Metrics
	Health   *metrics.HealthStatus
	Log      *slog.Logger
	Now      func() time.Time
}

// Controller owns the cooldown timestamp. It is driven by a single
// goroutine; passes never overlap.
type Controller struct {
	cfg      Config
	bars     model.BarSource
	strength strength.Source
	notifier notification.Notifier
	m        *metrics.Metrics
	health   *metrics.HealthStatus
	log      *slog.Logger
	now      func() time.Time

	// Zero until the first attempted signal, so the cooldown starts out
	// elapsed.
	lastSignalTime time.Time
}

// New creates a controller.
func New(cfg Config, deps Deps) *Controller {
	if cfg.TopN <= 0 {
		cfg.TopN = 3
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller{
		cfg:      cfg,
		bars:     deps.Bars,
		strength: deps.Strength,
		notifier: deps.Notifier,
		m:        deps.Metrics,
		health:   deps.Health,
		log:      deps.Log.With("component", "cadence"),
		now:      deps.Now,
	}
}

// LastSignalTime returns the time of the last attempted signal, or the zero
// time if none was sent yet.
func (c *Controller) LastSignalTime() time.Time {
	return c.lastSignalTime
}

// Run ticks immediately and then every TickInterval until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) {
	interval := c.cfg.TickInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.log.Info("cadence loop started",
		"pairs", len(c.cfg.Universe),
		"interval", interval,
		"cooldown", c.cfg.Cooldown,
		"window", c.cfg.Window.StatusString(c.now()),
	)
	for {
		c.Tick(ctx)
		select {
		case <-ctx.Done():
			c.log.Info("cadence loop stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick reads the clock once and either stays idle or runs a pass.
func (c *Controller) Tick(ctx context.Context) Outcome {
	now := c.now()

	open := c.cfg.Window.Contains(now)
	if c.m != nil {
		if open {
			c.m.TradingWindow.Set(1)
		} else {
			c.m.TradingWindow.Set(0)
		}
	}

	var outcome Outcome
	switch {
	case !open:
		outcome = OutcomeOutsideHours
	case !now.After(c.lastSignalTime.Add(c.cfg.Cooldown)):
		outcome = OutcomeCooldown
	default:
		if c.cfg.TickInterval > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.cfg.TickInterval)
			defer cancel()
		}
		outcome = c.RunPass(ctx, now).Outcome
	}

	if c.m != nil {
		c.m.PassesTotal.WithLabelValues(string(outcome)).Inc()
	}
	if c.health != nil {
		c.health.RecordPass(now, string(outcome))
	}
	if outcome.Idle() {
		c.log.Debug("idle", "outcome", outcome)
	}
	return outcome
}

// RunPass fetches, ranks and scans the universe once, delivering at most one
// signal. It ignores the window and the cooldown; Tick checks those. A
// failed or panicking pass leaves the cooldown untouched.
func (c *Controller) RunPass(ctx context.Context, now time.Time) (rep Report) {
	traceID := logger.GenerateTraceID("pass", now)
	ctx = logger.WithTraceID(ctx, traceID)
	log := c.log.With(logger.LogWithTrace(ctx)...)
	rep = Report{At: now, TraceID: traceID}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			rep.Outcome = OutcomePassFailed
			rep.Err = fmt.Errorf("cadence: pass panicked: %v", r)
			log.Error("pass panicked", "panic", r)
		}
		if c.m != nil {
			c.m.PassDur.Observe(time.Since(start).Seconds())
		}
		log.Info("pass finished", "outcome", rep.Outcome, "took", time.Since(start).Round(time.Millisecond))
	}()

	batch, err := c.bars.FetchBars(ctx, c.cfg.Universe, c.cfg.SignalInterval, c.cfg.SignalLookback)
	if err == nil && len(batch) == 0 {
		err = errors.New("empty batch")
	}
	if err != nil {
		rep.Outcome = OutcomePassFailed
		rep.Err = fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		log.Warn("signal bars unavailable", "error", err)
		return rep
	}

	readings, err := c.strength.Snapshot(ctx, c.cfg.Universe)
	if err != nil {
		log.Warn("strength snapshot unavailable", "error", err)
	}
	rep.Ranking = strength.Rank(readings)
	if c.m != nil {
		c.m.RankedCurrencies.Set(float64(len(rep.Ranking)))
	}
	if len(rep.Ranking) == 0 {
		rep.Outcome = OutcomeNoRanking
		rep.Err = err
		return rep
	}
	rep.Top = rep.Ranking.Top(c.cfg.TopN)
	rep.Bottom = rep.Ranking.Bottom(c.cfg.TopN)
	log.Debug("strength ranked", "top", rep.Top, "bottom", rep.Bottom)

	for _, inst := range c.cfg.Universe {
		ev := c.evaluate(batch, inst, rep.Top, rep.Bottom)
		rep.Evaluations = append(rep.Evaluations, ev)
		if ev.Skip != "" {
			c.skipped(ev.Skip)
			if ev.Skip != SkipStrengthFilter {
				log.Debug("instrument skipped", "instrument", inst.Symbol(), "reason", ev.Skip)
			} else {
				log.Info("signal filtered by strength", "instrument", inst.Symbol(), "action", ev.Action)
			}
		}
		if !ev.Eligible {
			continue
		}

		sig := strategy.NewSignal(inst, ev.Action, ev.Close, now)
		rep.Signal = &sig
		rep.Outcome = c.deliver(ctx, log, sig, rep.Top, rep.Bottom)
		return rep
	}

	rep.Outcome = OutcomeNoSignal
	return rep
}

// evaluate runs the pipeline, classifier and gate for one instrument.
func (c *Controller) evaluate(batch model.Batch, inst model.Instrument, top, bottom []string) Evaluation {
	ev := Evaluation{Instrument: inst, Action: strategy.ActionNone}

	series, ok := batch[inst.Symbol()]
	if !ok || len(series) == 0 {
		ev.Skip = SkipNoData
		return ev
	}
	if err := series.Validate(); err != nil {
		ev.Skip = SkipInvalidSeries
		return ev
	}
	last, _ := series.Last()
	ev.Close = last.Close

	frame, err := indicator.Compute(series, c.cfg.Params)
	switch {
	case errors.Is(err, indicator.ErrInsufficientHistory):
		ev.Skip = SkipInsufficient
		return ev
	case errors.Is(err, indicator.ErrIndicatorUndefined):
		ev.Skip = SkipUndefined
		return ev
	case errors.Is(err, indicator.ErrLowVolatility):
		ev.Skip = SkipLowVolatility
		return ev
	case err != nil:
		ev.Skip = SkipUndefined
		return ev
	}
	if latest, _, ok := frame.Latest(); ok {
		ev.Latest = &latest
	}

	ev.Action = strategy.Evaluate(frame)
	if ev.Action == strategy.ActionNone {
		return ev
	}
	ev.Eligible = strength.Eligible(ev.Action, inst, top, bottom)
	if !ev.Eligible {
		ev.Skip = SkipStrengthFilter
	}
	return ev
}

// deliver sends the alert and starts the cooldown. A failed send is logged
// and still counts as an attempt.
func (c *Controller) deliver(ctx context.Context, log *slog.Logger, sig strategy.Signal, top, bottom []string) Outcome {
	alert := notification.SignalAlert(sig, top, bottom)
	err := c.notifier.Send(ctx, alert)

	c.lastSignalTime = sig.TS
	if c.m != nil {
		c.m.SignalsTotal.WithLabelValues(string(sig.Action)).Inc()
		c.m.LastSignalTS.Set(float64(sig.TS.Unix()))
	}
	if c.health != nil {
		c.health.RecordSignal(sig.TS)
	}

	if err != nil {
		if c.m != nil {
			c.m.DeliveryFailures.Inc()
		}
		log.Error("signal delivery failed",
			"instrument", sig.Instrument.Symbol(), "action", sig.Action, "error", err)
		return OutcomeDeliveryFailed
	}
	log.Info("signal sent",
		"id", sig.ID,
		"instrument", sig.Instrument.Symbol(),
		"action", sig.Action,
		"price", notification.FormatPrice(sig.Price),
	)
	return OutcomeSignalSent
}

func (c *Controller) skipped(reason string) {
	if c.m != nil {
		c.m.SkippedInstruments.WithLabelValues(reason).Inc()
	}
}
