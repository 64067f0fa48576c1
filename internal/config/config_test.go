package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if len(cfg.Market.Instruments) != 4 {
		t.Errorf("expected 4 default instruments, got %d", len(cfg.Market.Instruments))
	}
	if len(cfg.News.Providers) != 2 {
		t.Errorf("expected 2 default news providers, got %d", len(cfg.News.Providers))
	}
	if cfg.News.Providers[0].Name != "newsapi" {
		t.Errorf("expected newsapi primary, got %s", cfg.News.Providers[0].Name)
	}
	if cfg.Weather.BaseURL == "" {
		t.Error("expected weather base_url to be set")
	}
}

func TestTimeout(t *testing.T) {
	cfg := &Config{RequestTimeout: "30s"}
	if got := cfg.Timeout(); got != 30*time.Second {
		t.Errorf("expected 30s, got %v", got)
	}

	cfg.RequestTimeout = "invalid"
	if got := cfg.Timeout(); got != 15*time.Second {
		t.Errorf("expected 15s default for invalid timeout, got %v", got)
	}
}

func TestMaxItems(t *testing.T) {
	cfg := &Config{}
	if got := cfg.MaxItems(); got != 5 {
		t.Errorf("expected default max items 5, got %d", got)
	}
	cfg.News.MaxItems = 10
	if got := cfg.MaxItems(); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
}

func TestForecastDays(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{0, 7},
		{3, 3},
		{16, 16},
		{17, 7},
		{-1, 7},
	}
	for _, tt := range tests {
		cfg := &Config{Weather: Weather{ForecastDays: tt.input}}
		if got := cfg.ForecastDays(); got != tt.want {
			t.Errorf("ForecastDays(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `request_timeout: 20s
market:
  instruments:
    - key: n225
      symbol: N225
      label: 日経平均
    - key: spx
      symbol: SPX
      label: S&P500
news:
  providers:
    - name: gnews
      base_url: https://gnews.io/api/v4
      key: gnews
    - name: newsapi
      base_url: https://newsapi.org/v2
      key: newsApi
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestTimeout != "20s" {
		t.Errorf("expected 20s, got %s", cfg.RequestTimeout)
	}
	// The alternative instrument set replaces the default one wholesale.
	if len(cfg.Market.Instruments) != 2 || cfg.Market.Instruments[0].Key != "n225" {
		t.Errorf("unexpected instruments: %+v", cfg.Market.Instruments)
	}
	// Swapped provider chain order is preserved.
	if cfg.News.Providers[0].Name != "gnews" {
		t.Errorf("expected gnews primary, got %s", cfg.News.Providers[0].Name)
	}
	// Unset fields fall back to defaults.
	if cfg.Market.BaseURL == "" {
		t.Error("expected market base_url merged from defaults")
	}
	if cfg.Language != "ja" {
		t.Errorf("expected default language ja, got %s", cfg.Language)
	}
}

func TestLoadNonexistentFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Market.Instruments) == 0 {
		t.Error("expected default instruments when config doesn't exist")
	}
}

func TestValidateMissingInstrumentKey(t *testing.T) {
	cfg, _ := loadDefaults()
	cfg.Market.Instruments = []Instrument{{Symbol: "AAPL"}}
	if err := validate(cfg); err == nil {
		t.Error("expected error for missing instrument key")
	}
}

func TestValidateMissingSymbol(t *testing.T) {
	cfg, _ := loadDefaults()
	cfg.Market.Instruments = []Instrument{{Key: "aapl"}}
	if err := validate(cfg); err == nil {
		t.Error("expected error for missing symbol")
	}
}

func TestValidateUnknownProvider(t *testing.T) {
	cfg, _ := loadDefaults()
	cfg.News.Providers = []NewsProvider{{Name: "currents", BaseURL: "https://api.currentsapi.services"}}
	if err := validate(cfg); err == nil {
		t.Error("expected error for unknown news provider")
	}
}

func TestValidateInvalidURLScheme(t *testing.T) {
	cfg, _ := loadDefaults()
	cfg.Market.BaseURL = "file:///etc/passwd"
	if err := validate(cfg); err == nil {
		t.Error("expected error for file:// base_url")
	}
}
