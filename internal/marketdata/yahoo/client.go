// Package yahoo fetches FX bars from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"fxsignal/internal/breaker"
	"fxsignal/internal/model"
)

const (
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// Config for the chart client.
type Config struct {
	BaseURL   string        // default: DefaultBaseURL
	Timeout   time.Duration // per request, default 10s
	RPS       float64       // request rate, <= 0 disables throttling
	Burst     int           // default 1
	UserAgent string
}

// Client implements model.BarSource with one chart request per instrument.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *breaker.Breaker
	log        *slog.Logger

	// OnFetch, if set, is called after every chart request.
	OnFetch func(symbol string, interval model.Interval, took time.Duration, err error)
}

// New creates a client. br may be nil to disable the circuit breaker.
func New(cfg Config, br *breaker.Breaker, log *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (compatible; fxsignal/1.0)"
	}
	if log == nil {
		log = slog.Default()
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		breaker:    br,
		log:        log.With("component", "yahoo"),
	}
}

// FetchBars fetches every instrument sequentially. Instruments that fail
// are logged and left out of the batch; the call fails only when none
// succeed or ctx is done.
func (c *Client) FetchBars(ctx context.Context, instruments []model.Instrument, interval model.Interval, lookback model.Lookback) (model.Batch, error) {
	batch := make(model.Batch, len(instruments))
	var lastErr error
	for _, inst := range instruments {
		series, err := c.FetchSeries(ctx, inst, interval, lookback)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("fetch failed", "instrument", inst.Symbol(), "interval", interval, "error", err)
			lastErr = err
			continue
		}
		batch[inst.Symbol()] = series
	}
	if len(batch) == 0 {
		if lastErr == nil {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("%w: all %d instruments failed, last: %v", ErrNoData, len(instruments), lastErr)
	}
	return batch, nil
}

// FetchSeries fetches one instrument.
func (c *Client) FetchSeries(ctx context.Context, inst model.Instrument, interval model.Interval, lookback model.Lookback) (model.Series, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	var series model.Series
	call := func(ctx context.Context) error {
		raw, err := c.get(ctx, inst, interval, lookback)
		if err != nil {
			return err
		}
		series, err = parseChart(raw)
		return err
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(ctx, call)
	} else {
		err = call(ctx)
	}
	if c.OnFetch != nil {
		c.OnFetch(inst.Symbol(), interval, time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", inst.Symbol(), err)
	}
	return series, nil
}

func (c *Client) get(ctx context.Context, inst model.Instrument, interval model.Interval, lookback model.Lookback) ([]byte, error) {
	q := url.Values{}
	q.Set("interval", string(interval))
	q.Set("range", string(lookback))
	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(inst.Symbol()+"=X") + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		// Yahoo answers unknown symbols with 404 and a chart.error body.
		if _, perr := parseChart(raw); perr != nil {
			return nil, perr
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d: %s", resp.StatusCode, truncate(raw, 200))
	}
	return raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
