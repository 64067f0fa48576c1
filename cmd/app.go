package cmd

import (
	"fmt"
	"log/slog"

	"github.com/agenda23/insightdash/internal/cache"
	"github.com/agenda23/insightdash/internal/config"
	"github.com/agenda23/insightdash/internal/market"
	"github.com/agenda23/insightdash/internal/news"
	"github.com/agenda23/insightdash/internal/refresh"
	"github.com/agenda23/insightdash/internal/settings"
	"github.com/agenda23/insightdash/internal/store"
	"github.com/agenda23/insightdash/internal/todo"
	"github.com/agenda23/insightdash/internal/weather"
)

// app wires config, store and the domain clients together for a single
// command invocation.
type app struct {
	cfg      *config.Config
	store    *store.Store
	cache    *cache.Cache
	settings *settings.Manager
	todos    *todo.List
	market   *market.Client
	orch     *refresh.Orchestrator
	log      *slog.Logger
}

func openApp() (*app, error) {
	log := newLogger()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	st, err := store.Open(config.StorePath(), log)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	cc := cache.New(st, log)
	mgr := settings.NewManager(st, log)
	keys := mgr.APIKey

	marketClient := market.New(cfg.Market, keys, cfg.Timeout(), log).WithCache(cc)
	weatherClient := weather.New(cfg.Weather, mgr.StoredLocation, &weather.IPResolver{}, cfg.Timeout(), log).WithCache(cc)
	newsClient := news.New(cfg.News, keys, cc, cfg.Timeout(), cfg.Language, cfg.Country, log)

	orch := refresh.NewOrchestrator(marketClient, weatherClient, newsClient,
		cfg.News.Category, cfg.MaxItems(), log)

	return &app{
		cfg:      cfg,
		store:    st,
		cache:    cc,
		settings: mgr,
		todos:    todo.NewList(st, log),
		market:   marketClient,
		orch:     orch,
		log:      log,
	}, nil
}

func (a *app) close() {
	a.store.Close()
}
