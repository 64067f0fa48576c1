// Package market fetches quotes for the dashboard's instrument set from a
// Twelve-Data-shaped provider.
//
// Fallback policy: mock. Every instrument is fetched and fails
// independently; a missing credential, transport failure, provider error
// payload, or malformed numeric field yields that instrument's mock quote,
// tagged as such. Callers always receive a complete snapshot and never an
// error.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/agenda23/insightdash/internal/cache"
	"github.com/agenda23/insightdash/internal/config"
)

// Quote is one instrument's normalized state. Mock marks fallback values
// so the UI can flag them.
type Quote struct {
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Mock          bool    `json:"mock,omitempty"`
}

// Snapshot maps instrument key (usdJpy, btcUsd, ...) to its quote. It is
// replaced wholesale on each fetch; there are no merge semantics.
type Snapshot map[string]Quote

// KeyFunc resolves a credential slot name to its stored value. An empty
// result is a valid degraded state.
type KeyFunc func(service string) string

type Client struct {
	cfg   config.Market
	keys  KeyFunc
	http  *http.Client
	cache *cache.Cache
	log   *slog.Logger
}

func New(cfg config.Market, keys KeyFunc, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		keys: keys,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// WithCache attaches the cache layer. Fetches inside the validity window
// return the cached snapshot without touching the provider; only fully
// live snapshots are written back, so mock fallbacks never get pinned for
// a whole window.
func (c *Client) WithCache(cc *cache.Cache) *Client {
	c.cache = cc
	return c
}

// FetchAll fetches every configured instrument concurrently. All requests
// are issued before any result is collected; assembly waits for all to
// settle, so arrival order does not matter.
func (c *Client) FetchAll(ctx context.Context) Snapshot {
	if c.cache != nil {
		var cached Snapshot
		if c.cache.Get(cache.KeyMarket, &cached) {
			return cached
		}
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	snap := make(Snapshot, len(c.cfg.Instruments))

	for _, inst := range c.cfg.Instruments {
		wg.Add(1)
		go func(inst config.Instrument) {
			defer wg.Done()
			q, err := c.fetchQuote(ctx, inst.Symbol)
			if err != nil {
				c.log.Warn("quote fetch failed, using mock", "symbol", inst.Symbol, "err", err)
				q = mockQuote(inst.Symbol)
			}
			mu.Lock()
			snap[inst.Key] = q
			mu.Unlock()
		}(inst)
	}

	wg.Wait()

	if c.cache != nil && !snap.HasMock() {
		c.cache.Set(cache.KeyMarket, snap)
	}
	return snap
}

// HasMock reports whether any quote in the snapshot is a fallback value.
func (s Snapshot) HasMock() bool {
	for _, q := range s {
		if q.Mock {
			return true
		}
	}
	return false
}

// quoteResponse is the provider's quote shape. Numeric fields arrive as
// strings and must be coerced explicitly.
type quoteResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Close         string `json:"close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
}

func (c *Client) fetchQuote(ctx context.Context, symbol string) (Quote, error) {
	apiKey := c.keys("twelveData")
	if apiKey == "" {
		return Quote{}, fmt.Errorf("twelveData API key not configured")
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("apikey", apiKey)
	reqURL := c.cfg.BaseURL + "/quote?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Quote{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("fetching %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote API %d for %s", resp.StatusCode, symbol)
	}

	var qr quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return Quote{}, fmt.Errorf("decoding %s quote: %w", symbol, err)
	}
	if qr.Status == "error" {
		msg := qr.Message
		if msg == "" {
			msg = "API error"
		}
		return Quote{}, fmt.Errorf("quote API error for %s: %s", symbol, msg)
	}

	value, err := parseFloat(qr.Close)
	if err != nil {
		return Quote{}, fmt.Errorf("parsing %s close: %w", symbol, err)
	}
	change, err := parseFloat(qr.Change)
	if err != nil {
		return Quote{}, fmt.Errorf("parsing %s change: %w", symbol, err)
	}
	pct, err := parseFloat(qr.PercentChange)
	if err != nil {
		return Quote{}, fmt.Errorf("parsing %s percent_change: %w", symbol, err)
	}

	return Quote{Value: value, Change: change, ChangePercent: pct}, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty numeric field")
	}
	return strconv.ParseFloat(s, 64)
}

// mockQuotes hold the per-instrument fallback values shown when the
// provider is unreachable or unconfigured.
var mockQuotes = map[string]Quote{
	"USD/JPY": {Value: 149.85, Change: 0.12, ChangePercent: 0.08, Mock: true},
	"BTC/USD": {Value: 43250, Change: -850, ChangePercent: -1.93, Mock: true},
	"AAPL":    {Value: 185.92, Change: 2.34, ChangePercent: 1.27, Mock: true},
	"EUR/USD": {Value: 1.0876, Change: 0.0012, ChangePercent: 0.11, Mock: true},
	"N225":    {Value: 38260.8, Change: 155.3, ChangePercent: 0.41, Mock: true},
	"SPX":     {Value: 5320.5, Change: -12.4, ChangePercent: -0.23, Mock: true},
}

func mockQuote(symbol string) Quote {
	if q, ok := mockQuotes[symbol]; ok {
		return q
	}
	return Quote{Value: 100, Mock: true}
}
