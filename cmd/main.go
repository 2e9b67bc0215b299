package main

import (
	"log"

	"go.uber.org/zap"

	"imagecredit/api"
	"imagecredit/attribution"
	"imagecredit/classify"
	"imagecredit/config"
	"imagecredit/fetcher"
	"imagecredit/metadata"
	"imagecredit/scrapers"
	"imagecredit/search"
)

func main() {
	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// =========
	// Logging
	// =========
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// =========
	// Fetcher
	// =========
	client := fetcher.New(logger, fetcher.Options{
		DomainDelay: cfg.DomainDelay,
		Timeout:     cfg.FetchTimeout,
	})

	// =========
	// Search engines
	// =========
	gateway := search.NewGateway(logger,
		search.NewGoogle(client, cfg.SerpAPIKey),
		search.NewYandex(client),
		search.NewBing(client),
	)

	// =========
	// Source registry
	// =========
	registry := classify.NewRegistry()
	if cfg.SourcesPath != "" {
		if err := registry.LoadSources(cfg.SourcesPath); err != nil {
			logger.Fatal("failed to load sources file", zap.Error(err))
		}
	}

	// =========
	// Attribution adapters
	// =========
	adapters := scrapers.NewRegistry(client, logger, scrapers.Credentials{
		PexelsAPIKey:      cfg.PexelsAPIKey,
		UnsplashAccessKey: cfg.UnsplashAccessKey,
		FlickrAPIKey:      cfg.FlickrAPIKey,
	})

	// =========
	// Orchestrator
	// =========
	orchestrator := attribution.NewOrchestrator(
		attribution.ProbeFunc(metadata.Probe),
		client,
		gateway,
		registry,
		adapters,
		logger,
	)

	// =========
	// HTTP server
	// =========
	var sourceKeys []string
	for _, src := range registry.Sources() {
		sourceKeys = append(sourceKeys, src.Key)
	}
	server := api.NewServer(orchestrator, api.Capabilities{
		SearchEngines: gateway.EngineNames(),
		Sources:       sourceKeys,
		APISources:    adapters.APIBacked(),
	}, logger)

	logger.Fatal("server stopped", zap.Error(server.ListenAndServe(cfg.AppPort)))
}
