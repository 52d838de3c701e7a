package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/flowternity/facility-assistant/internal/aggregate"
	"github.com/flowternity/facility-assistant/internal/chat"
	"github.com/flowternity/facility-assistant/internal/config"
	"github.com/flowternity/facility-assistant/internal/extract"
	"github.com/flowternity/facility-assistant/internal/fetcher"
	"github.com/flowternity/facility-assistant/internal/reconcile"
	"github.com/flowternity/facility-assistant/internal/store"
	"github.com/flowternity/facility-assistant/pkg/anthropic"
)

// app wires the store, pipeline, and chat service from config.
type app struct {
	Store        store.Store
	Orchestrator *aggregate.Orchestrator
	Reconciler   *reconcile.Reconciler
	Chat         *chat.Service
}

func initApp(ctx context.Context) (*app, error) {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	f := fetcher.NewHTTPFetcher(fetcher.Options{
		UserAgent:     cfg.Fetch.UserAgent,
		Timeout:       time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxAttempts:   cfg.Fetch.MaxAttempts,
		BaseDelay:     time.Duration(cfg.Fetch.BaseDelayMS) * time.Millisecond,
		RatePerSecond: cfg.Fetch.RatePerSecond,
	})

	extractors := []extract.Extractor{
		extract.NewListingExtractor(f, cfg.Sources.ListingURL),
		extract.NewSocialExtractor(cfg.Sources.SocialURL),
		extract.NewMapExtractor(cfg.Sources.MapURL),
	}

	orch := aggregate.New(st, extractors)
	rec := reconcile.New(st)

	gen := chat.NewAnthropicGenerator(
		anthropic.NewClient(cfg.Anthropic.Key),
		cfg.Anthropic.Model,
		cfg.Anthropic.MaxTokens,
	)
	svc := chat.NewService(st, rec, gen, time.Duration(cfg.Chat.GenerateTimeoutSecs)*time.Second)

	return &app{
		Store:        st,
		Orchestrator: orch,
		Reconciler:   rec,
		Chat:         svc,
	}, nil
}

func openStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "sqlite", "":
		return store.NewSQLite(sc.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, sc.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", sc.Driver)
	}
}

func (a *app) Close() {
	_ = a.Store.Close()
}
