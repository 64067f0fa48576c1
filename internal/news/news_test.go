package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agenda23/insightdash/internal/cache"
	"github.com/agenda23/insightdash/internal/config"
	"github.com/agenda23/insightdash/internal/store"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testCache(t *testing.T) *cache.Cache {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return cache.New(s, nil).WithClock(func() time.Time { return fixedNow })
}

func testKeys(m map[string]string) KeyFunc {
	return func(service string) string { return m[service] }
}

func newsapiBody(titles ...string) string {
	var items []string
	for _, title := range titles {
		items = append(items, fmt.Sprintf(
			`{"title":%q,"description":"desc","url":"https://example.com/a","urlToImage":null,"publishedAt":"2025-06-01T10:00:00Z","source":{"name":"例新聞"}}`,
			title))
	}
	return `{"status":"ok","articles":[` + strings.Join(items, ",") + `]}`
}

func gnewsBody(titles ...string) string {
	var items []string
	for _, title := range titles {
		items = append(items, fmt.Sprintf(
			`{"title":%q,"description":"desc","url":"https://example.com/b","image":"https://example.com/b.png","publishedAt":"2025-05-31T12:00:00Z","source":{"name":"G新聞"}}`,
			title))
	}
	return `{"articles":[` + strings.Join(items, ",") + `]}`
}

func testClient(t *testing.T, primary, secondary http.HandlerFunc, keys map[string]string, cc *cache.Cache) *Client {
	t.Helper()
	srv1 := httptest.NewServer(primary)
	srv2 := httptest.NewServer(secondary)
	t.Cleanup(srv1.Close)
	t.Cleanup(srv2.Close)

	cfg := config.News{
		Category: "general",
		MaxItems: 5,
		Providers: []config.NewsProvider{
			{Name: "newsapi", BaseURL: srv1.URL, Key: "newsApi"},
			{Name: "gnews", BaseURL: srv2.URL, Key: "gnews"},
		},
	}
	return New(cfg, testKeys(keys), cc, 5*time.Second, "ja", "jp", nil).
		WithClock(func() time.Time { return fixedNow })
}

func ok(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, body) }
}

func fail(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { http.Error(w, "nope", status) }
}

func TestFetchPrimarySuccess(t *testing.T) {
	c := testClient(t, ok(newsapiBody("見出し1", "見出し2")), fail(500),
		map[string]string{"newsApi": "k1", "gnews": "k2"}, nil)

	articles, err := c.Fetch(context.Background(), "general", 5)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].ID != 1 || articles[1].ID != 2 {
		t.Errorf("expected sequential ids, got %d, %d", articles[0].ID, articles[1].ID)
	}
	if articles[0].Time != "2時間前" {
		t.Errorf("expected 2時間前, got %q", articles[0].Time)
	}
	if articles[0].URLToImage != nil {
		t.Error("expected nil image from newsapi null")
	}
	if articles[0].Category != "general" {
		t.Errorf("expected category general, got %s", articles[0].Category)
	}
}

func TestFallsBackToSecondaryOnMissingKey(t *testing.T) {
	var primaryCalls atomic.Int32
	c := testClient(t,
		func(w http.ResponseWriter, r *http.Request) { primaryCalls.Add(1) },
		ok(gnewsBody("代替見出し")),
		map[string]string{"gnews": "k2"}, nil) // no newsApi key

	articles, err := c.Fetch(context.Background(), "general", 5)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if primaryCalls.Load() != 0 {
		t.Error("missing key should not produce a primary request")
	}
	if len(articles) != 1 || articles[0].Source != "G新聞" {
		t.Errorf("expected gnews article, got %+v", articles)
	}
	if articles[0].URLToImage == nil || *articles[0].URLToImage != "https://example.com/b.png" {
		t.Error("expected gnews image mapped to urlToImage")
	}
	if articles[0].Time != "1日前" {
		t.Errorf("expected 1日前, got %q", articles[0].Time)
	}
}

func TestZeroResultsTriesSecondaryExactlyOnce(t *testing.T) {
	var secondaryCalls atomic.Int32
	c := testClient(t,
		ok(`{"status":"ok","articles":[]}`),
		func(w http.ResponseWriter, r *http.Request) {
			secondaryCalls.Add(1)
			fmt.Fprint(w, gnewsBody("G見出し"))
		},
		map[string]string{"newsApi": "k1", "gnews": "k2"}, nil)

	articles, err := c.Fetch(context.Background(), "general", 5)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if secondaryCalls.Load() != 1 {
		t.Errorf("expected secondary tried exactly once, got %d", secondaryCalls.Load())
	}
	if len(articles) != 1 {
		t.Errorf("expected 1 article, got %d", len(articles))
	}
}

func TestBothProvidersFailingPropagates(t *testing.T) {
	c := testClient(t, fail(401), fail(403),
		map[string]string{"newsApi": "k1", "gnews": "k2"}, nil)

	_, err := c.Fetch(context.Background(), "general", 5)
	if err == nil {
		t.Fatal("expected error when both providers fail")
	}
	// Both causes are visible to the caller.
	if !strings.Contains(err.Error(), "newsapi") || !strings.Contains(err.Error(), "gnews") {
		t.Errorf("expected both provider names in error, got %v", err)
	}
}

func TestProviderErrorPayload(t *testing.T) {
	c := testClient(t,
		ok(`{"status":"error","message":"apiKeyInvalid"}`),
		ok(`{"errors":["quota exceeded"]}`),
		map[string]string{"newsApi": "k1", "gnews": "k2"}, nil)

	_, err := c.Fetch(context.Background(), "general", 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "apiKeyInvalid") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected provider messages in error, got %v", err)
	}
}

func TestSuccessWritesCache(t *testing.T) {
	cc := testCache(t)
	c := testClient(t, ok(newsapiBody("記事")), fail(500),
		map[string]string{"newsApi": "k1"}, cc)

	if _, err := c.Fetch(context.Background(), "general", 5); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	var cached []Article
	if !cc.Get(cache.KeyNews, &cached) {
		t.Fatal("expected cache populated after success")
	}
	if len(cached) != 1 || cached[0].Title != "記事" {
		t.Errorf("unexpected cached articles %+v", cached)
	}
}

func TestCacheHitBypassesProviders(t *testing.T) {
	var calls atomic.Int32
	counted := func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, newsapiBody("記事"))
	}

	cc := testCache(t)
	c := testClient(t, counted, counted, map[string]string{"newsApi": "k1", "gnews": "k2"}, cc)

	if _, err := c.Fetch(context.Background(), "general", 5); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	first := calls.Load()

	articles, err := c.Fetch(context.Background(), "general", 5)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if calls.Load() != first {
		t.Error("expected second fetch served from cache with no provider calls")
	}
	if len(articles) != 1 {
		t.Errorf("expected 1 cached article, got %d", len(articles))
	}
	// The relative label was frozen at fetch time.
	if articles[0].Time != "2時間前" {
		t.Errorf("expected frozen label 2時間前, got %q", articles[0].Time)
	}
}

func TestCacheHitTruncatesToLimit(t *testing.T) {
	cc := testCache(t)
	c := testClient(t, ok(newsapiBody("a", "b", "c", "d", "e")), fail(500),
		map[string]string{"newsApi": "k1"}, cc)

	if _, err := c.Fetch(context.Background(), "general", 5); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	articles, err := c.Fetch(context.Background(), "general", 3)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if len(articles) != 3 {
		t.Errorf("expected cache hit truncated to 3, got %d", len(articles))
	}
}

func TestRelativeAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		published string
		want      string
	}{
		{"2025-06-01T11:59:00Z", "1分前"},
		{"2025-06-01T11:00:00Z", "60分前"},
		{"2025-06-01T10:59:00Z", "1時間前"},
		{"2025-05-31T13:00:00Z", "23時間前"},
		{"2025-05-31T12:00:00Z", "1日前"},
		{"2025-05-25T12:00:00Z", "7日前"},
		{"2025-06-01T12:05:00Z", "0分前"}, // clock skew: future timestamps clamp to zero
		{"not-a-timestamp", ""},
	}
	for _, tt := range tests {
		if got := relativeAge(tt.published, now); got != tt.want {
			t.Errorf("relativeAge(%q) = %q, want %q", tt.published, got, tt.want)
		}
	}
}
