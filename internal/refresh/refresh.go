// Package refresh orchestrates data updates across the market, weather
// and news domains. A manual refresh runs all three in parallel and
// collects every outcome; each domain also refreshes independently on
// its own timer (see Scheduler).
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/agenda23/insightdash/internal/market"
	"github.com/agenda23/insightdash/internal/news"
	"github.com/agenda23/insightdash/internal/weather"
)

// Domain names used for timers and last-fetch bookkeeping.
const (
	DomainMarket  = "market"
	DomainWeather = "weather"
	DomainNews    = "news"
)

// MarketSource produces the latest market snapshot. It never fails;
// unreachable instruments arrive as tagged mock quotes.
type MarketSource interface {
	FetchAll(ctx context.Context) market.Snapshot
}

// WeatherSource produces the latest weather snapshot. It never fails.
type WeatherSource interface {
	Fetch(ctx context.Context) weather.Snapshot
}

// NewsSource produces headlines, or an error once its whole provider
// chain has failed.
type NewsSource interface {
	Fetch(ctx context.Context, category string, maxItems int) ([]news.Article, error)
}

// View is a copy of the orchestrator's current data, safe to render
// without holding its lock. NewsErr carries the last news failure; News
// keeps the previous headlines so stale data stays visible alongside it.
type View struct {
	Market    market.Snapshot
	Weather   weather.Snapshot
	News      []news.Article
	NewsErr   string
	LastFetch map[string]time.Time
}

type Orchestrator struct {
	market   MarketSource
	weather  WeatherSource
	news     NewsSource
	category string
	maxItems int
	log      *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	view      View
	lastFetch map[string]time.Time
}

func NewOrchestrator(m MarketSource, w WeatherSource, n NewsSource, category string, maxItems int, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		market:    m,
		weather:   w,
		news:      n,
		category:  category,
		maxItems:  maxItems,
		log:       log,
		now:       time.Now,
		lastFetch: make(map[string]time.Time),
	}
}

// WithClock replaces the orchestrator's clock.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// RefreshAll updates every domain in parallel and waits for all of them.
// One domain failing never blocks the others from applying; the news
// error, if any, is recorded on the view rather than returned.
func (o *Orchestrator) RefreshAll(ctx context.Context) View {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		o.RefreshMarket(ctx)
	}()
	go func() {
		defer wg.Done()
		o.RefreshWeather(ctx)
	}()
	go func() {
		defer wg.Done()
		o.RefreshNews(ctx)
	}()
	wg.Wait()
	return o.View()
}

// RefreshMarket updates the market snapshot.
func (o *Orchestrator) RefreshMarket(ctx context.Context) {
	snap := o.market.FetchAll(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.view.Market = snap
	o.lastFetch[DomainMarket] = o.now()
}

// RefreshWeather updates the weather snapshot.
func (o *Orchestrator) RefreshWeather(ctx context.Context) {
	snap := o.weather.Fetch(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.view.Weather = snap
	o.lastFetch[DomainWeather] = o.now()
}

// RefreshNews updates the headlines. On failure the previous headlines
// stay in place and the error message is recorded on the view.
func (o *Orchestrator) RefreshNews(ctx context.Context) error {
	articles, err := o.news.Fetch(ctx, o.category, o.maxItems)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.log.Warn("news refresh failed", "err", err)
		o.view.NewsErr = err.Error()
		return err
	}
	o.view.News = articles
	o.view.NewsErr = ""
	o.lastFetch[DomainNews] = o.now()
	return nil
}

// View returns a copy of the current data.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	v := o.view
	v.LastFetch = make(map[string]time.Time, len(o.lastFetch))
	for k, t := range o.lastFetch {
		v.LastFetch[k] = t
	}
	return v
}
