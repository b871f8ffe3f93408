// Command scan runs one evaluation pass against live market data and prints
// the report as JSON. Alerts go to the log, never to Telegram.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"fxsignal/config"
	"fxsignal/internal/breaker"
	"fxsignal/internal/cadence"
	"fxsignal/internal/logger"
	"fxsignal/internal/marketdata/yahoo"
	"fxsignal/internal/model"
	"fxsignal/internal/notification"
	"fxsignal/internal/strength"
)

func main() {
	pairs := flag.String("pairs", "", "comma-separated pairs, overrides PAIRS")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for the pass")
	flag.Parse()

	os.Setenv("DRY_RUN", "true")
	if *pairs != "" {
		os.Setenv("PAIRS", *pairs)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config invalid", "error", err)
		os.Exit(1)
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	log := logger.InitWriter(os.Stderr, "scan", level)

	universe, _ := cfg.Universe()
	window, _ := cfg.Window()
	log.Info("scanning", "pairs", len(universe), "window", window.StatusString(time.Now()))

	yc := yahoo.New(yahoo.Config{BaseURL: cfg.YahooBaseURL, RPS: cfg.FetchRPS, Burst: 2},
		breaker.New("yahoo", 5, 30*time.Second), log)
	snap := strength.NewBarSnapshot(yc, log)
	snap.Interval = model.Interval(cfg.StrengthInterval)
	snap.Lookback = model.Lookback(cfg.StrengthRange)

	ctrl := cadence.New(cadence.Config{
		Universe:       universe,
		Window:         window,
		Cooldown:       cfg.Cooldown(),
		SignalInterval: model.Interval(cfg.SignalInterval),
		SignalLookback: model.Lookback(cfg.SignalRange),
		TopN:           cfg.TopN,
		Params:         cfg.Indicators,
	}, cadence.Deps{
		Bars:     yc,
		Strength: snap,
		Notifier: notification.NewLogNotifier(log),
		Log:      log,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	rep := ctrl.RunPass(ctx, time.Now())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		log.Error("encode report", "error", err)
		os.Exit(1)
	}
	if rep.Err != nil {
		log.Error("pass failed", "outcome", rep.Outcome, "error", rep.Err)
		os.Exit(1)
	}
}
