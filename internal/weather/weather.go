// Package weather fetches current conditions and the daily forecast from
// an Open-Meteo-shaped provider. No credential is required.
//
// Fallback policy: mock. Any network, HTTP, or decode failure resolves to
// a hardcoded snapshot; an error never crosses the client boundary.
//
// Location resolution runs three tiers: the stored settings location, an
// IP-based resolver with a 5 second budget, then Tokyo.
package weather

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
	"github.com/agenda23/insightdash/internal/settings"
)

type Current struct {
	Temp                     int     `json:"temp"`
	Humidity                 int     `json:"humidity"`
	Condition                string  `json:"condition"`
	Icon                     string  `json:"icon"`
	WeatherCode              int     `json:"weatherCode"`
	IsDay                    bool    `json:"isDay"`
	Precipitation            float64 `json:"precipitation"`
	PrecipitationProbability int     `json:"precipitationProbability"`
	CityName                 string  `json:"cityName"`
	Prefecture               string  `json:"prefecture"`
}

type ForecastDay struct {
	Day                      string `json:"day"`
	Date                     string `json:"date"`
	Temp                     int    `json:"temp"`
	TempMin                  int    `json:"tempMin"`
	Condition                string `json:"condition"`
	Icon                     string `json:"icon"`
	PrecipitationProbability int    `json:"precipitationProbability"`
	WeatherCode              int    `json:"weatherCode"`
}

// Snapshot is the weather domain's normalized result. Forecast index 0 is
// today.
type Snapshot struct {
	Current  Current       `json:"current"`
	Forecast []ForecastDay `json:"forecast"`
}

// LocationFunc reports the stored settings location, false when the user
// has never picked one.
type LocationFunc func() (settings.Location, bool)

type Client struct {
	cfg      config.Weather
	stored   LocationFunc
	resolver Resolver
	http     *http.Client
	cache    *cache.Cache
	log      *slog.Logger
	now      func() time.Time
}

func New(cfg config.Weather, stored LocationFunc, resolver Resolver, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg:      cfg,
		stored:   stored,
		resolver: resolver,
		http:     &http.Client{Timeout: timeout},
		log:      log,
		now:      time.Now,
	}
}

// WithClock replaces the client's clock. Tests use this to pin the current
// hour and day labels.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// WithCache attaches the cache layer. Fetches inside the validity window
// return the cached snapshot; only fully live snapshots are written back,
// so a degraded mock result is retried on the next fetch.
func (c *Client) WithCache(cc *cache.Cache) *Client {
	c.cache = cc
	return c
}

// Fetch returns the full weather snapshot for the resolved location.
// Current conditions and the forecast are fetched concurrently; either
// failing independently degrades to its mock half.
func (c *Client) Fetch(ctx context.Context) Snapshot {
	if c.cache != nil {
		var cached Snapshot
		if c.cache.Get(cache.KeyWeather, &cached) {
			return cached
		}
	}

	loc := c.resolveLocation(ctx)

	var (
		wg             sync.WaitGroup
		current        Current
		forecast       []ForecastDay
		currentMocked  bool
		forecastMocked bool
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		current, err = c.fetchCurrent(ctx, loc)
		if err != nil {
			c.log.Warn("current weather fetch failed, using mock", "err", err)
			current = mockCurrent(loc)
			currentMocked = true
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		forecast, err = c.fetchForecast(ctx, loc)
		if err != nil {
			c.log.Warn("forecast fetch failed, using mock", "err", err)
			forecast = mockForecast()
			forecastMocked = true
		}
	}()
	wg.Wait()

	snap := Snapshot{Current: current, Forecast: forecast}
	if c.cache != nil && !currentMocked && !forecastMocked {
		c.cache.Set(cache.KeyWeather, snap)
	}
	return snap
}

// resolveLocation never fails: stored settings, then the resolver, then
// Tokyo.
func (c *Client) resolveLocation(ctx context.Context) settings.Location {
	if c.stored != nil {
		if loc, ok := c.stored(); ok {
			return loc
		}
	}
	if c.resolver != nil {
		loc, err := c.resolver.Locate(ctx)
		if err == nil {
			return loc
		}
		c.log.Debug("IP locate failed, falling back to Tokyo", "err", err)
	}
	return settings.TokyoLocation
}

type currentResponse struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		Humidity      float64 `json:"relative_humidity_2m"`
		WeatherCode   int     `json:"weather_code"`
		IsDay         int     `json:"is_day"`
		Precipitation float64 `json:"precipitation"`
	} `json:"current"`
	Hourly struct {
		PrecipitationProbability []float64 `json:"precipitation_probability"`
	} `json:"hourly"`
}

func (c *Client) fetchCurrent(ctx context.Context, loc settings.Location) (Current, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(loc.Latitude))
	q.Set("longitude", formatCoord(loc.Longitude))
	q.Set("current", "temperature_2m,relative_humidity_2m,weather_code,is_day,precipitation")
	q.Set("hourly", "precipitation_probability")
	q.Set("timezone", c.cfg.Timezone)
	q.Set("forecast_days", "1")

	var cr currentResponse
	if err := c.getJSON(ctx, q, &cr); err != nil {
		return Current{}, err
	}

	// The hourly series covers today; index by the current hour.
	probability := 0
	hour := c.now().Hour()
	if probs := cr.Hourly.PrecipitationProbability; hour < len(probs) {
		probability = int(probs[hour])
	}

	isDay := cr.Current.IsDay == 1
	return Current{
		Temp:                     roundTemp(cr.Current.Temperature),
		Humidity:                 int(cr.Current.Humidity),
		Condition:                condition(cr.Current.WeatherCode),
		Icon:                     icon(cr.Current.WeatherCode, isDay),
		WeatherCode:              cr.Current.WeatherCode,
		IsDay:                    isDay,
		Precipitation:            cr.Current.Precipitation,
		PrecipitationProbability: probability,
		CityName:                 loc.CityName,
		Prefecture:               loc.Prefecture,
	}, nil
}

type forecastResponse struct {
	Daily struct {
		Time                     []string  `json:"time"`
		WeatherCode              []int     `json:"weather_code"`
		TemperatureMax           []float64 `json:"temperature_2m_max"`
		TemperatureMin           []float64 `json:"temperature_2m_min"`
		PrecipitationProbability []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

func (c *Client) fetchForecast(ctx context.Context, loc settings.Location) ([]ForecastDay, error) {
	days := c.cfg.ForecastDays
	if days <= 0 {
		days = 7
	}

	q := url.Values{}
	q.Set("latitude", formatCoord(loc.Latitude))
	q.Set("longitude", formatCoord(loc.Longitude))
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	q.Set("timezone", c.cfg.Timezone)
	q.Set("forecast_days", strconv.Itoa(days))

	var fr forecastResponse
	if err := c.getJSON(ctx, q, &fr); err != nil {
		return nil, err
	}

	daily := fr.Daily
	n := len(daily.Time)
	if n > days {
		n = days
	}
	if n == 0 {
		return nil, fmt.Errorf("forecast response has no days")
	}

	forecast := make([]ForecastDay, 0, n)
	for i := 0; i < n; i++ {
		code := 0
		if i < len(daily.WeatherCode) {
			code = daily.WeatherCode[i]
		}
		day := ForecastDay{
			Day:         dayLabel(i, daily.Time[i]),
			Date:        daily.Time[i],
			Condition:   condition(code),
			Icon:        icon(code, true),
			WeatherCode: code,
		}
		if i < len(daily.TemperatureMax) {
			day.Temp = roundTemp(daily.TemperatureMax[i])
		}
		if i < len(daily.TemperatureMin) {
			day.TempMin = roundTemp(daily.TemperatureMin[i])
		}
		if i < len(daily.PrecipitationProbability) {
			day.PrecipitationProbability = int(daily.PrecipitationProbability[i])
		}
		forecast = append(forecast, day)
	}
	return forecast, nil
}

func (c *Client) getJSON(ctx context.Context, q url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/forecast?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("forecast API %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding forecast: %w", err)
	}
	return nil
}

var weekdayLabels = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// dayLabel renders the forecast row label: 今日/明日/明後日, then the
// weekday.
func dayLabel(index int, date string) string {
	switch index {
	case 0:
		return "今日"
	case 1:
		return "明日"
	case 2:
		return "明後日"
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return weekdayLabels[t.Weekday()]
}

func roundTemp(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mockCurrent(loc settings.Location) Current {
	return Current{
		Temp:                     18,
		Humidity:                 65,
		Condition:                "一部曇り",
		Icon:                     "⛅",
		WeatherCode:              2,
		IsDay:                    true,
		Precipitation:            0,
		PrecipitationProbability: 20,
		CityName:                 loc.CityName,
		Prefecture:               loc.Prefecture,
	}
}

func mockForecast() []ForecastDay {
	return []ForecastDay{
		{Day: "今日", Temp: 18, TempMin: 12, Condition: "一部曇り", Icon: "⛅", PrecipitationProbability: 20, WeatherCode: 2},
		{Day: "明日", Temp: 20, TempMin: 14, Condition: "晴れ", Icon: "☀️", PrecipitationProbability: 10, WeatherCode: 0},
		{Day: "明後日", Temp: 16, TempMin: 10, Condition: "雨", Icon: "🌧️", PrecipitationProbability: 80, WeatherCode: 63},
		{Day: "木", Temp: 19, TempMin: 13, Condition: "曇り", Icon: "☁️", PrecipitationProbability: 30, WeatherCode: 3},
		{Day: "金", Temp: 22, TempMin: 16, Condition: "晴れ", Icon: "☀️", PrecipitationProbability: 5, WeatherCode: 0},
		{Day: "土", Temp: 21, TempMin: 15, Condition: "一部曇り", Icon: "⛅", PrecipitationProbability: 15, WeatherCode: 2},
		{Day: "日", Temp: 17, TempMin: 11, Condition: "小雨", Icon: "🌦️", PrecipitationProbability: 60, WeatherCode: 61},
	}
}
