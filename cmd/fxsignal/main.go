package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"fxsignal/config"
	"fxsignal/internal/breaker"
	"fxsignal/internal/cadence"
	"fxsignal/internal/gateway"
	"fxsignal/internal/logger"
	"fxsignal/internal/marketdata/yahoo"
	"fxsignal/internal/metrics"
	"fxsignal/internal/model"
	"fxsignal/internal/notification"
	"fxsignal/internal/strength"
)

func main() {
	startedAt := time.Now()

	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet.
		slog.Error("config invalid", "error", err)
		os.Exit(1)
	}
	level, ok := logger.ParseLevel(cfg.LogLevel)
	log := logger.Init("fxsignal", level)
	if !ok {
		log.Warn("unknown LOG_LEVEL, using info", "value", cfg.LogLevel)
	}

	universe, _ := cfg.Universe()
	window, _ := cfg.Window()
	log.Info("starting",
		"pairs", len(universe),
		"window", fmt.Sprintf("%02d-%02d %s", cfg.StartHour, cfg.EndHour, cfg.Timezone),
		"cooldown", cfg.Cooldown(),
		"dry_run", cfg.DryRun,
	)

	// ---- Context for graceful shutdown ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Metrics & health ----
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := metrics.NewMetrics(reg)
	health := metrics.NewHealthStatus()
	health.SetPairs(len(universe))

	// ---- Market data ----
	br := breaker.New("yahoo", 5, 30*time.Second)
	br.OnStateChange = func(name string, from, to breaker.State) {
		prom.BreakerState.Set(float64(to))
		if to == breaker.StateOpen {
			prom.BreakerTrips.Inc()
		}
		log.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
	}
	yc := yahoo.New(yahoo.Config{
		BaseURL: cfg.YahooBaseURL,
		RPS:     cfg.FetchRPS,
		Burst:   2,
	}, br, log)
	yc.OnFetch = func(_ string, interval model.Interval, took time.Duration, err error) {
		prom.FetchDur.WithLabelValues(string(interval)).Observe(took.Seconds())
		if err != nil {
			prom.FetchErrors.WithLabelValues(string(interval)).Inc()
		}
	}

	snap := strength.NewBarSnapshot(yc, log)
	snap.Interval = model.Interval(cfg.StrengthInterval)
	snap.Lookback = model.Lookback(cfg.StrengthRange)

	// ---- Delivery ----
	hub := gateway.NewHub(256, log)
	hub.OnClientsChanged = func(n int) { prom.WSClients.Set(float64(n)) }

	var primary notification.Notifier
	if cfg.DryRun {
		primary = notification.NewLogNotifier(log)
		log.Warn("dry run: alerts are logged, not sent to Telegram")
	} else {
		primary = notification.NewTelegramNotifier(cfg.TelegramToken, cfg.ChatID, log)
	}
	notifiers := notification.Multi{primary, hub}

	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.WebhookURL, log))
		log.Info("webhook delivery enabled")
	}

	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()
		notifiers = append(notifiers, notification.NewRedisNotifier(rdb, cfg.RedisChannel, log))
		health.StartLivenessChecker(ctx, rdb, 10*time.Second)
		log.Info("redis delivery enabled", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
	}

	// ---- HTTP: liveness, health, metrics, signal feed ----
	srv := metrics.NewServer(cfg.Addr(), health, reg, log)
	srv.Handle("/ws", hub)
	srv.Handle("/alerts/recent", http.HandlerFunc(hub.ServeRecent))
	srv.Start()
	go hub.StartStatusBroadcast(ctx, window, 5*time.Second, startedAt)

	// ---- Startup message (best effort) ----
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := notifiers.Send(startupCtx, notification.StartupAlert(window.StatusString(time.Now()))); err != nil {
		log.Warn("startup message failed", "error", err)
	}
	cancel()

	// ---- Cadence loop ----
	ctrl := cadence.New(cadence.Config{
		Universe:       universe,
		Window:         window,
		Cooldown:       cfg.Cooldown(),
		TickInterval:   cfg.TickInterval(),
		SignalInterval: model.Interval(cfg.SignalInterval),
		SignalLookback: model.Lookback(cfg.SignalRange),
		TopN:           cfg.TopN,
		Params:         cfg.Indicators,
	}, cadence.Deps{
		Bars:     yc,
		Strength: snap,
		Notifier: notifiers,
		Metrics:  prom,
		Health:   health,
		Log:      log,
	})
	ctrl.Run(ctx)

	// ---- Shutdown ----
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	log.Info("stopped", "uptime", time.Since(startedAt).Round(time.Second))
}
