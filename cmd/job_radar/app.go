package main

import (
	"context"
	"fmt"

	"github.com/jonathan/job-radar/internal/cache"
	"github.com/jonathan/job-radar/internal/config"
	"github.com/jonathan/job-radar/internal/db"
	"github.com/jonathan/job-radar/internal/display"
	"github.com/jonathan/job-radar/internal/inference"
	"github.com/jonathan/job-radar/internal/ingest"
	"github.com/jonathan/job-radar/internal/llm"
	"github.com/jonathan/job-radar/internal/reconcile"
	"github.com/jonathan/job-radar/internal/search"
)

// app holds the wired pipeline shared by the serve and run commands.
type app struct {
	cfg       *config.Config
	database  *db.DB
	store     *cache.Cache
	llmClient llm.Client
	ingest    *ingest.Engine
	reconcile *reconcile.Engine
	display   *display.Repository
}

// buildApp loads configuration and wires every pipeline component.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}

	a := &app{cfg: cfg, database: database}
	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	a.store = cache.New(a.cfg.RedisURL)

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), a.cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	a.llmClient = llmClient

	searchOpts := search.DefaultOptions()
	searchOpts.CacheTTL = a.cfg.SearchCacheTTL()
	searchClient, err := search.NewClient(a.cfg.SerpAPIKey, a.store, searchOpts)
	if err != nil {
		return fmt.Errorf("failed to create search client: %w", err)
	}

	adapter, err := inference.NewAdapter(a.llmClient)
	if err != nil {
		return fmt.Errorf("failed to create inference adapter: %w", err)
	}
	adapter = adapter.WithCache(a.store, inference.DefaultCacheTTL)

	policy := ingest.Policy{
		AgencyMarkers:  a.cfg.AgencyMarkers,
		AllowedRegions: a.cfg.AllowedRegions,
	}
	ingestEngine, err := ingest.NewEngine(searchClient, adapter, a.database, policy, a.cfg.Query, a.cfg.Location)
	if err != nil {
		return fmt.Errorf("failed to create ingest engine: %w", err)
	}
	a.ingest = ingestEngine

	reconcileEngine, err := reconcile.NewEngine(a.database, a.database, adapter, a.cfg.ReconcileWindow())
	if err != nil {
		return fmt.Errorf("failed to create reconcile engine: %w", err)
	}
	a.reconcile = reconcileEngine

	repo, err := display.NewRepository(a.database, a.database, display.DefaultSnapshotTTL)
	if err != nil {
		return fmt.Errorf("failed to create display repository: %w", err)
	}
	a.display = repo

	return nil
}

// Close releases every resource the app holds.
func (a *app) Close() {
	if a.llmClient != nil {
		_ = a.llmClient.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.database != nil {
		a.database.Close()
	}
}
