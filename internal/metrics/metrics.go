package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the signal service.
type Metrics struct {
	// Cadence
	PassesTotal   *prometheus.CounterVec // labels: outcome
	PassDur       prometheus.Histogram
	TradingWindow prometheus.Gauge // 0=closed, 1=open
	LastSignalTS  prometheus.Gauge // unix seconds of the last attempted signal

	// Decisions
	SignalsTotal       *prometheus.CounterVec // labels: action
	SkippedInstruments *prometheus.CounterVec // labels: reason
	RankedCurrencies   prometheus.Gauge

	// Delivery
	DeliveryFailures prometheus.Counter

	// Market data
	FetchDur    *prometheus.HistogramVec // labels: interval
	FetchErrors *prometheus.CounterVec   // labels: interval

	// Circuit breaker
	BreakerState prometheus.Gauge // 0=closed, 1=open, 2=half-open
	BreakerTrips prometheus.Counter

	// WebSocket feed
	WSClients prometheus.Gauge
}

// NewMetrics registers all metrics on reg. A nil reg uses the default
// Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		PassesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignal_passes_total",
			Help: "Cadence ticks by outcome",
		}, []string{"outcome"}),
		PassDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxsignal_pass_duration_seconds",
			Help:    "Wall time of one evaluation pass (fetch, rank, classify, deliver)",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}),
		TradingWindow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fxsignal_trading_window_open",
			Help: "Trading window state (0=closed, 1=open)",
		}),
		LastSignalTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fxsignal_last_signal_timestamp_seconds",
			Help: "Unix time of the last attempted signal delivery",
		}),

		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignal_signals_total",
			Help: "Signals dispatched by action",
		}, []string{"action"}),
		SkippedInstruments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignal_skipped_instruments_total",
			Help: "Instruments skipped during a pass by reason",
		}, []string{"reason"}),
		RankedCurrencies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fxsignal_ranked_currencies",
			Help: "Currencies in the latest strength ranking",
		}),

		DeliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxsignal_delivery_failures_total",
			Help: "Signal alerts whose delivery failed",
		}),

		FetchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fxsignal_fetch_duration_seconds",
			Help:    "Bar fetch latency per instrument",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"interval"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignal_fetch_errors_total",
			Help: "Failed bar fetches per interval",
		}, []string{"interval"}),

		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fxsignal_circuit_breaker_state",
			Help: "Market data circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		BreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxsignal_circuit_breaker_trips_total",
			Help: "Times the market data circuit breaker tripped open",
		}),

		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fxsignal_ws_clients",
			Help: "Connected WebSocket feed clients",
		}),
	}

	reg.MustRegister(
		m.PassesTotal,
		m.PassDur,
		m.TradingWindow,
		m.LastSignalTS,
		m.SignalsTotal,
		m.SkippedInstruments,
		m.RankedCurrencies,
		m.DeliveryFailures,
		m.FetchDur,
		m.FetchErrors,
		m.BreakerState,
		m.BreakerTrips,
		m.WSClients,
	)

	return m
}
