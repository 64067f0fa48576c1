// Package cache layers a validity window on top of the persistent store.
// Each domain's payload lives under its own cache key as a timestamped
// entry; entries older than the window are treated as absent and deleted
// on read. The window exists to respect third-party rate limits (hundreds
// of requests per day) while keeping the dashboard feeling live within a
// session.
package cache

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/agenda23/insightdash/internal/store"
)

// Window is the validity window shared by all cache keys.
const Window = 10 * time.Minute

// Cache keys, one per dashboard domain.
const (
	KeyNews    = "news_cache"
	KeyMarket  = "market_cache"
	KeyWeather = "weather_cache"
)

// Keys lists every cache key, for ClearAll.
var Keys = []string{KeyNews, KeyMarket, KeyWeather}

type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch millis
}

type Cache struct {
	store *store.Store
	log   *slog.Logger
	now   func() time.Time
}

func New(s *store.Store, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{store: s, log: log, now: time.Now}
}

// WithClock replaces the cache's clock. Tests use this to pin time.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get unmarshals the cached payload for key into dest. It reports false if
// no entry exists or the entry has outlived the validity window; expired
// entries are deleted so they are never returned, not even once.
func (c *Cache) Get(key string, dest any) bool {
	var e entry
	if !c.store.Read(key, &e) {
		return false
	}

	age := c.now().Sub(time.UnixMilli(e.Timestamp))
	if age >= Window {
		c.log.Debug("cache expired", "key", key, "age", age)
		c.store.Remove(key)
		return false
	}

	if err := json.Unmarshal(e.Data, dest); err != nil {
		c.log.Warn("cache decode failed", "key", key, "err", err)
		return false
	}
	c.log.Debug("cache hit", "key", key, "age", age)
	return true
}

// Set stores v under key stamped with the current time, overwriting any
// prior entry.
func (c *Cache) Set(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", "key", key, "err", err)
		return false
	}
	return c.store.Write(key, entry{Data: data, Timestamp: c.now().UnixMilli()})
}

// Age reports how long ago the entry for key was written. It reports false
// when no entry exists, regardless of validity.
func (c *Cache) Age(key string) (time.Duration, bool) {
	var e entry
	if !c.store.Read(key, &e) {
		return 0, false
	}
	return c.now().Sub(time.UnixMilli(e.Timestamp)), true
}

func (c *Cache) Clear(key string) {
	c.store.Remove(key)
}

func (c *Cache) ClearAll() {
	for _, key := range Keys {
		c.store.Remove(key)
	}
}
