package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Instrument is one quote row on the market widget. Key is the stable
// identifier snapshots are keyed by; Symbol is what the upstream quote
// provider understands.
type Instrument struct {
	Key    string `yaml:"key"`
	Symbol string `yaml:"symbol"`
	Label  string `yaml:"label"`
}

type Market struct {
	BaseURL     string       `yaml:"base_url"`
	Instruments []Instrument `yaml:"instruments"`
}

type Weather struct {
	BaseURL      string `yaml:"base_url"`
	Timezone     string `yaml:"timezone"`
	ForecastDays int    `yaml:"forecast_days"`
}

// NewsProvider names one link of the news fallback chain, in order. Key is
// the credential slot looked up in the stored API keys.
type NewsProvider struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
}

type News struct {
	Category  string         `yaml:"category"`
	MaxItems  int            `yaml:"max_items"`
	Providers []NewsProvider `yaml:"providers"`
}

type Config struct {
	RequestTimeout string  `yaml:"request_timeout"`
	Language       string  `yaml:"language"`
	Country        string  `yaml:"country"`
	Market         Market  `yaml:"market"`
	Weather        Weather `yaml:"weather"`
	News           News    `yaml:"news"`
}

func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// MaxItems returns the news item limit, defaulting to 5.
func (c *Config) MaxItems() int {
	if c.News.MaxItems <= 0 {
		return 5
	}
	return c.News.MaxItems
}

func (c *Config) ForecastDays() int {
	if c.Weather.ForecastDays <= 0 || c.Weather.ForecastDays > 16 {
		return 7
	}
	return c.Weather.ForecastDays
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "insightdash", "config.yaml")
}

func StorePath() string {
	return filepath.Join(xdg.DataHome, "insightdash", "insightdash.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	mergeDefaults(&cfg, defaults)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// mergeDefaults fills fields the user's file left out. Lists are taken
// wholesale: a user who names any instruments or providers owns the whole
// list.
func mergeDefaults(cfg, defaults *Config) {
	if cfg.RequestTimeout == "" {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}
	if cfg.Country == "" {
		cfg.Country = defaults.Country
	}
	if cfg.Market.BaseURL == "" {
		cfg.Market.BaseURL = defaults.Market.BaseURL
	}
	if len(cfg.Market.Instruments) == 0 {
		cfg.Market.Instruments = defaults.Market.Instruments
	}
	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = defaults.Weather.BaseURL
	}
	if cfg.Weather.Timezone == "" {
		cfg.Weather.Timezone = defaults.Weather.Timezone
	}
	if cfg.Weather.ForecastDays == 0 {
		cfg.Weather.ForecastDays = defaults.Weather.ForecastDays
	}
	if cfg.News.Category == "" {
		cfg.News.Category = defaults.News.Category
	}
	if cfg.News.MaxItems == 0 {
		cfg.News.MaxItems = defaults.News.MaxItems
	}
	if len(cfg.News.Providers) == 0 {
		cfg.News.Providers = defaults.News.Providers
	}
}

func validate(cfg *Config) error {
	if err := validateBaseURL("market", cfg.Market.BaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("weather", cfg.Weather.BaseURL); err != nil {
		return err
	}
	for i, inst := range cfg.Market.Instruments {
		if inst.Key == "" {
			return fmt.Errorf("market instrument %d: key is required", i)
		}
		if inst.Symbol == "" {
			return fmt.Errorf("market instrument %q: symbol is required", inst.Key)
		}
	}
	validNames := map[string]bool{"newsapi": true, "gnews": true}
	for i, p := range cfg.News.Providers {
		if !validNames[p.Name] {
			return fmt.Errorf("news provider %d: unknown name %q (valid: newsapi, gnews)", i, p.Name)
		}
		if err := validateBaseURL("news provider "+p.Name, p.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

func validateBaseURL(what, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s: base_url is required", what)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid base_url: %w", what, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: base_url scheme must be http or https, got %q", what, u.Scheme)
	}
	return nil
}
