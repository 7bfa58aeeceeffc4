package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bilgisen/aidigest/internal/ai"
	"github.com/bilgisen/aidigest/internal/api"
	"github.com/bilgisen/aidigest/internal/cache"
	"github.com/bilgisen/aidigest/internal/config"
	"github.com/bilgisen/aidigest/internal/feed"
	"github.com/bilgisen/aidigest/internal/logger"
	"github.com/bilgisen/aidigest/internal/sources"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogFile,
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting aggregator API...")

	registry, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.SourcesFile).Msg("Failed to load source registry")
	}
	log.Info().Int("sources", registry.Len()).Msg("Source registry loaded")

	store := cache.New(cfg)
	defer func() {
		log.Info().Msg("Closing summary cache...")
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing summary cache")
		}
	}()

	processor := feed.NewProcessor(registry, feed.NewFetcher(cfg.FetchTimeout, cfg.MaxConcurrency))
	handlers := api.NewHandlers(cfg, processor, registry, ai.NewSummarizer(cfg, store), store)

	app := api.NewApp(cfg)
	api.SetupRoutes(app, handlers, cfg)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
