// Package news fetches headlines through a configured provider chain.
//
// Fallback policy: propagate-after-chain. Each provider is tried exactly
// once per fetch; a missing credential, transport failure, provider error
// payload, or empty result all advance the chain. Only when every
// provider has failed does the error reach the caller — there is no mock
// fallback, so the orchestrator can keep stale data visible and surface
// the failure.
//
// Successful results are written to the cache layer; fetches inside the
// validity window bypass the providers entirely. Relative-age labels are
// computed once at fetch time and grow stale across cache hits — an
// accepted tradeoff.
package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/agenda23/insightdash/internal/cache"
	"github.com/agenda23/insightdash/internal/config"
)

// Article is one normalized headline. Time is the relative-age label
// frozen at fetch time; URLToImage is nil when the provider has no image.
type Article struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
	Time        string  `json:"time"`
	Source      string  `json:"source"`
	Category    string  `json:"category"`
}

type Client struct {
	providers []Provider
	cache     *cache.Cache
	log       *slog.Logger
	now       func() time.Time
}

func New(cfg config.News, keys KeyFunc, cc *cache.Cache, timeout time.Duration, lang, country string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	httpClient := &http.Client{Timeout: timeout}

	var providers []Provider
	for _, pc := range cfg.Providers {
		switch pc.Name {
		case "newsapi":
			providers = append(providers, &newsapiProvider{
				baseURL: pc.BaseURL, country: country, keySlot: pc.Key, keys: keys, client: httpClient,
			})
		case "gnews":
			providers = append(providers, &gnewsProvider{
				baseURL: pc.BaseURL, lang: lang, keySlot: pc.Key, keys: keys, client: httpClient,
			})
		}
	}

	return &Client{providers: providers, cache: cc, log: log, now: time.Now}
}

// WithClock replaces the client's clock. Tests use this to pin relative
// time labels.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Fetch returns up to maxItems headlines for category. A valid cache
// entry short-circuits the provider chain; otherwise providers are tried
// in order and the first success is cached and returned.
func (c *Client) Fetch(ctx context.Context, category string, maxItems int) ([]Article, error) {
	if c.cache != nil {
		var cached []Article
		if c.cache.Get(cache.KeyNews, &cached) {
			return truncate(cached, maxItems), nil
		}
	}

	var errs []error
	for _, p := range c.providers {
		articles, err := p.Fetch(ctx, category, maxItems)
		if err != nil {
			c.log.Warn("news provider failed", "provider", p.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}

		articles = c.finalize(articles)
		if c.cache != nil {
			c.cache.Set(cache.KeyNews, articles)
		}
		return truncate(articles, maxItems), nil
	}

	if len(errs) == 0 {
		return nil, errors.New("no news providers configured")
	}
	return nil, fmt.Errorf("all news providers failed: %w", errors.Join(errs...))
}

// finalize assigns sequential ids and stamps relative-age labels.
func (c *Client) finalize(articles []Article) []Article {
	now := c.now()
	for i := range articles {
		articles[i].ID = i + 1
		articles[i].Time = relativeAge(articles[i].PublishedAt, now)
	}
	return articles
}

// relativeAge renders how long ago publishedAt was, at minute/hour/day
// granularity. Unparseable timestamps yield an empty label.
func relativeAge(publishedAt string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return ""
	}
	minutes := int(now.Sub(t).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d分前", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%d時間前", minutes/60)
	default:
		return fmt.Sprintf("%d日前", minutes/1440)
	}
}

func truncate(articles []Article, n int) []Article {
	if n > 0 && len(articles) > n {
		return articles[:n]
	}
	return articles
}
