package metrics

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestServer(t *testing.T) (*Server, *Metrics, *HealthStatus) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	health := NewHealthStatus()
	return NewServer(":0", health, reg, nil), m, health
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(rec.Body)
	return rec.Code, string(body)
}

func TestServer_Liveness(t *testing.T) {
	srv, _, _ := newTestServer(t)
	code, body := get(t, srv.Handler(), "/")
	if code != http.StatusOK || body != "Bot Active" {
		t.Errorf("GET / = %d %q", code, body)
	}
	if code, _ := get(t, srv.Handler(), "/nope"); code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", code)
	}
}

func TestServer_Healthz(t *testing.T) {
	srv, _, health := newTestServer(t)
	health.SetPairs(15)
	health.RecordPass(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), "no_signal")

	code, body := get(t, srv.Handler(), "/healthz")
	if code != http.StatusOK {
		t.Fatalf("GET /healthz = %d", code)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("bad json %q: %v", body, err)
	}
	if got["status"] != "healthy" || got["pairs"] != float64(15) || got["last_pass_outcome"] != "no_signal" {
		t.Errorf("unexpected body %v", got)
	}
	if _, ok := got["redis_connected"]; ok {
		t.Error("redis_connected must be omitted when Redis is not enabled")
	}
}

func TestServer_HealthzDegradedWithoutRedis(t *testing.T) {
	srv, _, health := newTestServer(t)
	health.mu.Lock()
	health.RedisEnabled = true
	health.RedisConnected = false
	health.mu.Unlock()

	code, body := get(t, srv.Handler(), "/healthz")
	if code != http.StatusOK || !strings.Contains(body, `"status":"degraded"`) {
		t.Errorf("GET /healthz = %d %s", code, body)
	}
}

func TestServer_MetricsExposition(t *testing.T) {
	srv, m, _ := newTestServer(t)
	m.PassesTotal.WithLabelValues("signal_sent").Inc()
	m.SignalsTotal.WithLabelValues("BUY").Inc()
	m.TradingWindow.Set(1)

	code, body := get(t, srv.Handler(), "/metrics")
	if code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", code)
	}
	for _, want := range []string{
		`fxsignal_passes_total{outcome="signal_sent"} 1`,
		`fxsignal_signals_total{action="BUY"} 1`,
		`fxsignal_trading_window_open 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestServer_ExtraRoute(t *testing.T) {
	srv, _, _ := newTestServer(t)
	srv.Handle("/ws", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	if code, _ := get(t, srv.Handler(), "/ws"); code != http.StatusTeapot {
		t.Errorf("GET /ws = %d, want 418", code)
	}
}

func TestNewMetrics_IsolatedRegistries(t *testing.T) {
	// Two registries must not collide.
	NewMetrics(prometheus.NewRegistry())
	NewMetrics(prometheus.NewRegistry())
}
