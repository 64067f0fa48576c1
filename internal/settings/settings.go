// Package settings holds the user preferences consumed by the refresh
// orchestrator and the provider clients: update intervals, the auto-update
// flag, the selected location, API credentials, and cosmetic state. All of
// it lives in the persistent store; loads merge stored values over
// documented defaults so missing fields never come back as zero surprises.
package settings

import (
	"log/slog"
	"time"

	"github.com/agenda23/insightdash/internal/store"
)

// Storage keys.
const (
	KeySettings = "settings"
	KeyAPIKeys  = "apiKeys"
	KeyTheme    = "theme"
)

// Interval bounds in minutes.
const (
	MinInterval = 1
	MaxInterval = 60
)

type Location struct {
	CityName   string  `json:"cityName"`
	Prefecture string  `json:"prefecture"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// UpdateIntervals are per-domain refresh intervals in minutes.
type UpdateIntervals struct {
	Market  int `json:"market"`
	Weather int `json:"weather"`
	News    int `json:"news"`
}

type Settings struct {
	UpdateInterval UpdateIntervals `json:"updateInterval"`
	AutoUpdate     bool            `json:"autoUpdate"`
	Notifications  bool            `json:"notifications"`
	Language       string          `json:"language"`
	Currency       string          `json:"currency"`
	Location       Location        `json:"location"`
	WidgetOrder    []string        `json:"widgetOrder"`
}

// TokyoLocation is the fallback location used whenever nothing better is
// known.
var TokyoLocation = Location{
	CityName:   "東京都",
	Prefecture: "東京都",
	Latitude:   35.6762,
	Longitude:  139.6503,
}

func Defaults() Settings {
	return Settings{
		UpdateInterval: UpdateIntervals{Market: 10, Weather: 60, News: 15},
		AutoUpdate:     true,
		Notifications:  false,
		Language:       "ja",
		Currency:       "JPY",
		Location:       TokyoLocation,
		WidgetOrder:    []string{"market", "weather", "news", "todo"},
	}
}

func defaultAPIKeys() map[string]string {
	// openMeteo needs no key but the slot is kept for consistency.
	return map[string]string{
		"newsApi":    "",
		"twelveData": "",
		"gnews":      "",
		"openMeteo":  "",
	}
}

type Manager struct {
	store *store.Store
	log   *slog.Logger
}

func NewManager(s *store.Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{store: s, log: log}
}

// Settings returns the stored settings merged over defaults. Fields the
// stored document lacks keep their default values.
func (m *Manager) Settings() Settings {
	s := Defaults()
	m.store.Read(KeySettings, &s)
	return s
}

// Save persists s merged over defaults, so a partially populated value
// never erases documented defaults.
func (m *Manager) Save(s Settings) bool {
	if s.Language == "" {
		s.Language = Defaults().Language
	}
	if s.Currency == "" {
		s.Currency = Defaults().Currency
	}
	if len(s.WidgetOrder) == 0 {
		s.WidgetOrder = Defaults().WidgetOrder
	}
	if s.Location == (Location{}) {
		s.Location = TokyoLocation
	}
	s.UpdateInterval = clampIntervals(s.UpdateInterval)
	return m.store.Write(KeySettings, s)
}

func clampIntervals(iv UpdateIntervals) UpdateIntervals {
	d := Defaults().UpdateInterval
	iv.Market = clampOrDefault(iv.Market, d.Market)
	iv.Weather = clampOrDefault(iv.Weather, d.Weather)
	iv.News = clampOrDefault(iv.News, d.News)
	return iv
}

func clampOrDefault(minutes, def int) int {
	if minutes == 0 {
		return def
	}
	return clamp(minutes)
}

func clamp(minutes int) int {
	if minutes < MinInterval {
		return MinInterval
	}
	if minutes > MaxInterval {
		return MaxInterval
	}
	return minutes
}

// SetUpdateInterval sets one domain's interval, clamped to [1,60] minutes.
// Unknown domains are ignored.
func (m *Manager) SetUpdateInterval(domain string, minutes int) bool {
	s := m.Settings()
	switch domain {
	case "market":
		s.UpdateInterval.Market = clamp(minutes)
	case "weather":
		s.UpdateInterval.Weather = clamp(minutes)
	case "news":
		s.UpdateInterval.News = clamp(minutes)
	default:
		m.log.Warn("unknown update interval domain", "domain", domain)
		return false
	}
	return m.Save(s)
}

func (m *Manager) SetAutoUpdate(enabled bool) bool {
	s := m.Settings()
	s.AutoUpdate = enabled
	return m.Save(s)
}

// SetLocation overwrites the selected location wholesale.
func (m *Manager) SetLocation(cityName, prefecture string, latitude, longitude float64) bool {
	if !ValidateLocation(latitude, longitude) {
		m.log.Warn("rejecting invalid location", "lat", latitude, "lon", longitude)
		return false
	}
	s := m.Settings()
	s.Location = Location{CityName: cityName, Prefecture: prefecture, Latitude: latitude, Longitude: longitude}
	return m.Save(s)
}

// StoredLocation reports the location actually present in the store,
// before defaults are merged in. Callers use the second return to tell a
// configured location apart from the Tokyo fallback.
func (m *Manager) StoredLocation() (Location, bool) {
	var s struct {
		Location Location `json:"location"`
	}
	if !m.store.Read(KeySettings, &s) {
		return Location{}, false
	}
	if s.Location.Latitude == 0 && s.Location.Longitude == 0 {
		return Location{}, false
	}
	return s.Location, true
}

func (m *Manager) SetWidgetOrder(order []string) bool {
	s := m.Settings()
	s.WidgetOrder = order
	return m.Save(s)
}

// APIKeys returns the credential map merged over the known provider slots.
func (m *Manager) APIKeys() map[string]string {
	keys := defaultAPIKeys()
	m.store.Read(KeyAPIKeys, &keys)
	return keys
}

// APIKey returns the credential for service, empty when unset. An empty
// credential is a valid state, not an error: providers degrade to their
// own fallback policy.
func (m *Manager) APIKey(service string) string {
	return m.APIKeys()[service]
}

func (m *Manager) SetAPIKey(service, key string) bool {
	keys := m.APIKeys()
	keys[service] = key
	return m.store.Write(KeyAPIKeys, keys)
}

// Theme returns the stored theme, defaulting to light.
func (m *Manager) Theme() string {
	theme := "light"
	m.store.Read(KeyTheme, &theme)
	return theme
}

func (m *Manager) SaveTheme(theme string) bool {
	return m.store.Write(KeyTheme, theme)
}

func (m *Manager) ToggleTheme() string {
	theme := "light"
	if m.Theme() == "light" {
		theme = "dark"
	}
	m.SaveTheme(theme)
	return theme
}

// ValidateUpdateInterval reports whether minutes is inside [1,60].
func ValidateUpdateInterval(minutes int) bool {
	return minutes >= MinInterval && minutes <= MaxInterval
}

func ValidateLocation(latitude, longitude float64) bool {
	return latitude >= -90 && latitude <= 90 && longitude >= -180 && longitude <= 180
}

// IntervalDuration converts an interval in minutes to a duration.
func IntervalDuration(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}
