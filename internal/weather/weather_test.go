package weather

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
	"github.com/agenda23/insightdash/internal/settings"
	"github.com/agenda23/insightdash/internal/store"
)

func testConfig(baseURL string) config.Weather {
	return config.Weather{BaseURL: baseURL, Timezone: "Asia/Tokyo", ForecastDays: 7}
}

func storedOsaka() (settings.Location, bool) {
	return settings.Location{CityName: "大阪市", Prefecture: "大阪府", Latitude: 34.6937, Longitude: 135.5023}, true
}

func noStored() (settings.Location, bool) { return settings.Location{}, false }

// forecastHandler answers both the current and daily shapes depending on
// the requested fields.
func forecastHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Helper()
		if r.URL.Path != "/forecast" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("current") != "" {
			fmt.Fprint(w, `{
				"current": {"temperature_2m": 21.6, "relative_humidity_2m": 58, "weather_code": 2, "is_day": 1, "precipitation": 0.3},
				"hourly": {"precipitation_probability": [5,5,5,5,5,5,5,5,5,5,40,40,40,40,40,40,40,40,40,40,40,40,40,40]}
			}`)
			return
		}
		fmt.Fprint(w, `{
			"daily": {
				"time": ["2025-06-01","2025-06-02","2025-06-03","2025-06-04","2025-06-05","2025-06-06","2025-06-07"],
				"weather_code": [0,2,63,3,0,2,61],
				"temperature_2m_max": [24.4,22.1,18.6,20.0,23.2,21.9,17.4],
				"temperature_2m_min": [15.2,14.0,12.8,13.1,15.9,14.6,11.2],
				"precipitation_probability_max": [0,20,85,30,5,15,60]
			}
		}`)
	}
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(forecastHandler(t))
	defer srv.Close()

	noon := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(testConfig(srv.URL), storedOsaka, nil, 5*time.Second, nil).
		WithClock(func() time.Time { return noon })

	snap := c.Fetch(context.Background())

	cur := snap.Current
	if cur.Temp != 22 {
		t.Errorf("expected temp rounded to 22, got %d", cur.Temp)
	}
	if cur.Condition != "一部曇り" || cur.Icon != "⛅" {
		t.Errorf("unexpected condition %q icon %q", cur.Condition, cur.Icon)
	}
	if !cur.IsDay {
		t.Error("expected daytime")
	}
	if cur.PrecipitationProbability != 40 {
		t.Errorf("expected hour-12 probability 40, got %d", cur.PrecipitationProbability)
	}
	if cur.CityName != "大阪市" || cur.Prefecture != "大阪府" {
		t.Errorf("expected stored location names, got %s/%s", cur.CityName, cur.Prefecture)
	}

	if len(snap.Forecast) != 7 {
		t.Fatalf("expected 7 forecast days, got %d", len(snap.Forecast))
	}
	first := snap.Forecast[0]
	if first.Day != "今日" || first.Temp != 24 || first.TempMin != 15 {
		t.Errorf("unexpected first day %+v", first)
	}
	if snap.Forecast[1].Day != "明日" || snap.Forecast[2].Day != "明後日" {
		t.Errorf("unexpected near-day labels %s/%s", snap.Forecast[1].Day, snap.Forecast[2].Day)
	}
	// 2025-06-04 is a Wednesday.
	if snap.Forecast[3].Day != "水" {
		t.Errorf("expected 水 for 2025-06-04, got %s", snap.Forecast[3].Day)
	}
	if snap.Forecast[2].Condition != "雨" || snap.Forecast[2].PrecipitationProbability != 85 {
		t.Errorf("unexpected rainy day %+v", snap.Forecast[2])
	}
}

func TestFetchUsesStoredCoordinates(t *testing.T) {
	var sawLat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLat = r.URL.Query().Get("latitude")
		forecastHandler(t)(w, r)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), storedOsaka, nil, 5*time.Second, nil)
	c.Fetch(context.Background())

	if !strings.HasPrefix(sawLat, "34.69") {
		t.Errorf("expected Osaka latitude in request, got %q", sawLat)
	}
}

func TestFetchFailureReturnsMock(t *testing.T) {
	c := New(testConfig("http://unused.invalid"), storedOsaka, nil, time.Second, nil)

	snap := c.Fetch(context.Background())
	if snap.Current.Temp != 18 || snap.Current.Condition != "一部曇り" {
		t.Errorf("expected mock current, got %+v", snap.Current)
	}
	// Mock still carries the resolved location names.
	if snap.Current.CityName != "大阪市" {
		t.Errorf("expected resolved city on mock, got %s", snap.Current.CityName)
	}
	if len(snap.Forecast) != 7 {
		t.Errorf("expected 7 mock forecast days, got %d", len(snap.Forecast))
	}
	if snap.Forecast[0].Day != "今日" {
		t.Errorf("unexpected mock forecast %+v", snap.Forecast[0])
	}
}

func TestFetchHTTPErrorReturnsMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), storedOsaka, nil, time.Second, nil)
	snap := c.Fetch(context.Background())
	if snap.Current.Temp != 18 {
		t.Errorf("expected mock on HTTP 500, got %+v", snap.Current)
	}
}

func testCache(t *testing.T) *cache.Cache {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return cache.New(s, nil)
}

func TestCacheHitSkipsProvider(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		forecastHandler(t)(w, r)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), storedOsaka, nil, 5*time.Second, nil).WithCache(testCache(t))
	c.Fetch(context.Background())
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 requests on cold cache, got %d", got)
	}

	snap := c.Fetch(context.Background())
	if got := calls.Load(); got != 2 {
		t.Errorf("expected warm fetch served from cache, saw %d requests", got)
	}
	if snap.Current.Temp != 22 {
		t.Errorf("unexpected cached snapshot %+v", snap.Current)
	}
}

func TestMockSnapshotNotCached(t *testing.T) {
	cc := testCache(t)
	c := New(testConfig("http://unused.invalid"), storedOsaka, nil, time.Second, nil).WithCache(cc)
	c.Fetch(context.Background())

	var cached Snapshot
	if cc.Get(cache.KeyWeather, &cached) {
		t.Error("mock snapshot must not be written to cache")
	}
}

type fakeResolver struct {
	loc settings.Location
	err error
}

func (f fakeResolver) Locate(ctx context.Context) (settings.Location, error) {
	return f.loc, f.err
}

func TestResolveLocationTiers(t *testing.T) {
	nagoya := settings.Location{CityName: "名古屋市", Prefecture: "愛知県", Latitude: 35.1815, Longitude: 136.9066}

	tests := []struct {
		name     string
		stored   LocationFunc
		resolver Resolver
		want     string
	}{
		{"stored wins", storedOsaka, fakeResolver{loc: nagoya}, "大阪市"},
		{"resolver when no stored", noStored, fakeResolver{loc: nagoya}, "名古屋市"},
		{"tokyo when resolver fails", noStored, fakeResolver{err: fmt.Errorf("denied")}, "東京都"},
		{"tokyo when nothing available", noStored, nil, "東京都"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(testConfig("http://unused.invalid"), tt.stored, tt.resolver, time.Second, nil)
			loc := c.resolveLocation(context.Background())
			if loc.CityName != tt.want {
				t.Errorf("expected %s, got %s", tt.want, loc.CityName)
			}
		})
	}
}

func TestIPResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","city":"Sendai","regionName":"Miyagi","lat":38.2682,"lon":140.8694}`)
	}))
	defer srv.Close()

	r := &IPResolver{Endpoint: srv.URL}
	loc, err := r.Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if loc.CityName != "Sendai" || loc.Latitude != 38.2682 {
		t.Errorf("unexpected location %+v", loc)
	}
}

func TestIPResolverFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"fail"}`)
	}))
	defer srv.Close()

	r := &IPResolver{Endpoint: srv.URL}
	if _, err := r.Locate(context.Background()); err == nil {
		t.Error("expected error for fail status")
	}
}

func TestDayLabel(t *testing.T) {
	tests := []struct {
		index int
		date  string
		want  string
	}{
		{0, "2025-06-06", "今日"},
		{1, "2025-06-07", "明日"},
		{2, "2025-06-08", "明後日"},
		{3, "2025-06-09", "月"}, // Monday
		{6, "2025-06-12", "木"}, // Thursday
		{3, "garbage", "garbage"},
	}
	for _, tt := range tests {
		if got := dayLabel(tt.index, tt.date); got != tt.want {
			t.Errorf("dayLabel(%d, %q) = %q, want %q", tt.index, tt.date, got, tt.want)
		}
	}
}

func TestRoundTemp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{21.4, 21}, {21.5, 22}, {-0.4, 0}, {-0.6, -1}, {0, 0},
	}
	for _, tt := range tests {
		if got := roundTemp(tt.in); got != tt.want {
			t.Errorf("roundTemp(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestConditionAndIcon(t *testing.T) {
	if condition(95) != "雷雨" {
		t.Errorf("unexpected condition for 95: %s", condition(95))
	}
	if condition(42) != "不明" {
		t.Errorf("expected 不明 for unknown code, got %s", condition(42))
	}
	if icon(0, true) != "☀️" || icon(0, false) != "🌙" {
		t.Error("unexpected clear-sky icons")
	}
	if icon(42, true) != "❓" {
		t.Errorf("expected ❓ for unknown code, got %s", icon(42, true))
	}
}
