// Package gateway streams alerts to WebSocket clients.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fxsignal/internal/markethours"
	"fxsignal/internal/notification"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// Hub manages WebSocket clients and fans out alerts. It implements
// notification.Notifier so it can sit next to the other delivery backends.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	seq     int64
	replay  *ReplayBuffer
	log     *slog.Logger

	// OnClientsChanged, if set, is called with the new client count.
	OnClientsChanged func(n int)
}

// envelope is the JSON frame written to clients.
type envelope struct {
	Type  string              `json:"type"`
	Seq   int64               `json:"seq,omitempty"`
	TS    time.Time           `json:"ts"`
	Alert *notification.Alert `json:"alert,omitempty"`
	State *statusFrame        `json:"status,omitempty"`
}

type statusFrame struct {
	WindowOpen   bool    `json:"window_open"`
	WindowStatus string  `json:"window_status"`
	Clients      int     `json:"clients"`
	Goroutines   int     `json:"goroutines"`
	HeapAllocMB  float64 `json:"heap_alloc_mb"`
	UptimeSec    int64   `json:"uptime_sec"`
}

// NewHub creates a hub that keeps the last replayCap alerts for late joiners.
func NewHub(replayCap int, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients: make(map[*Client]bool),
		replay:  NewReplayBuffer(replayCap),
		log:     log.With("component", "gateway"),
	}
}

// Send broadcasts an alert to every connected client. Slow clients whose
// queue is full miss the frame but can catch up from the replay buffer on
// reconnect. It never fails.
func (h *Hub) Send(ctx context.Context, alert notification.Alert) error {
	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	buf, err := json.Marshal(envelope{Type: "alert", Seq: seq, TS: time.Now().UTC(), Alert: &alert})
	if err != nil {
		return err
	}
	h.replay.Push(seq, buf)
	n := h.broadcast(buf)
	h.log.DebugContext(ctx, "broadcast alert", "seq", seq, "clients", n, "title", alert.Title)
	return nil
}

func (h *Hub) broadcast(buf []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- buf:
		default:
		}
	}
	return len(h.clients)
}

// Recent returns up to n of the newest alert envelopes.
func (h *Hub) Recent(n int) []json.RawMessage {
	frames := h.replay.Last(n)
	out := make([]json.RawMessage, len(frames))
	for i, f := range frames {
		out[i] = f
	}
	return out
}

// ServeRecent writes the newest buffered alert envelopes as a JSON array.
// The n query parameter caps the count (default 20).
func (h *Hub) ServeRecent(w http.ResponseWriter, r *http.Request) {
	n := 20
	if v := r.URL.Query().Get("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Recent(n))
}

// ServeHTTP upgrades the request and registers the client. A since_seq
// query parameter replays buffered alerts after that sequence number.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade error", "error", err)
		return
	}

	since := int64(-1)
	if v := r.URL.Query().Get("since_seq"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			since = n
		}
	}

	client := &Client{conn: conn, send: make(chan []byte, 64), hub: h}
	conn.EnableWriteCompression(true)

	// Queue the backlog before registering so it is delivered ahead of
	// live frames.
	if since >= 0 {
		for _, frame := range h.replay.Since(since) {
			select {
			case client.send <- frame:
			default:
			}
		}
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()
	h.clientsChanged(count)
	h.log.Info("ws client connected", "clients", count)

	go client.writePump()
	go client.readPump()
}

// RemoveClient unregisters a client and closes its send queue.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()
	close(c.send)
	h.clientsChanged(count)
	h.log.Info("ws client disconnected", "clients", count)
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) clientsChanged(n int) {
	if h.OnClientsChanged != nil {
		h.OnClientsChanged(n)
	}
}

// StartStatusBroadcast sends the trading-window status and a small runtime
// snapshot to all clients every interval until ctx is cancelled.
func (h *Hub) StartStatusBroadcast(ctx context.Context, window markethours.Window, interval time.Duration, start time.Time) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			buf, _ := json.Marshal(envelope{Type: "status", TS: now.UTC(), State: h.status(window, now, start)})
			h.broadcast(buf)
		}
	}
}

func (h *Hub) status(window markethours.Window, now, start time.Time) *statusFrame {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return &statusFrame{
		WindowOpen:   window.Contains(now),
		WindowStatus: window.StatusString(now),
		Clients:      h.ClientCount(),
		Goroutines:   runtime.NumGoroutine(),
		HeapAllocMB:  float64(mem.HeapAlloc) / (1024 * 1024),
		UptimeSec:    int64(now.Sub(start).Seconds()),
	}
}
