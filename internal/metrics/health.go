package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// HealthStatus is a read-only view of the service for /healthz. It is
// informational: the endpoint always answers 200 while the process is up.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt       time.Time
	LastPassAt      time.Time
	LastPassOutcome string
	LastSignalAt    time.Time
	Pairs           int

	// Redis is only probed when the Redis notifier is enabled.
	RedisEnabled   bool
	RedisConnected bool
	RedisLatencyMs float64
	LastCheckAt    time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

// RecordPass stores the outcome of the latest cadence tick.
func (h *HealthStatus) RecordPass(at time.Time, outcome string) {
	h.mu.Lock()
	h.LastPassAt = at
	h.LastPassOutcome = outcome
	h.mu.Unlock()
}

// RecordSignal stores the time of the latest attempted signal.
func (h *HealthStatus) RecordSignal(at time.Time) {
	h.mu.Lock()
	h.LastSignalAt = at
	h.mu.Unlock()
}

func (h *HealthStatus) SetPairs(n int) {
	h.mu.Lock()
	h.Pairs = n
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisEnabled = true
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker probes Redis every interval until ctx is cancelled.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, interval time.Duration) {
	if rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			h.CheckRedis(probeCtx, rdb)
			cancel()

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if h.RedisEnabled && !h.RedisConnected {
		status = "degraded"
	}

	body := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		Pairs           int     `json:"pairs"`
		LastPassAt      string  `json:"last_pass_at,omitempty"`
		LastPassOutcome string  `json:"last_pass_outcome,omitempty"`
		LastSignalAt    string  `json:"last_signal_at,omitempty"`
		RedisConnected  *bool   `json:"redis_connected,omitempty"`
		RedisLatencyMs  float64 `json:"redis_latency_ms,omitempty"`
	}{
		Status:          status,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		Pairs:           h.Pairs,
		LastPassAt:      formatTime(h.LastPassAt),
		LastPassOutcome: h.LastPassOutcome,
		LastSignalAt:    formatTime(h.LastSignalAt),
	}
	if h.RedisEnabled {
		connected := h.RedisConnected
		body.RedisConnected = &connected
		body.RedisLatencyMs = h.RedisLatencyMs
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
