// README: Entry point; loads config, wires services and serves the HTTP API until interrupted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"packwise/internal/ai"
	"packwise/internal/config"
	httptransport "packwise/internal/http"
	"packwise/internal/infra"
	"packwise/internal/logging"
	"packwise/internal/maps"
	"packwise/internal/modules/geocode"
	"packwise/internal/modules/outfit"
	"packwise/internal/modules/quota"
	"packwise/internal/modules/resolution"
	"packwise/internal/retry"
	"packwise/internal/service"
	"packwise/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	deps := httptransport.ServerDeps{Logger: logger}

	var (
		extractor resolution.Extractor = ai.NoopProvider{}
		refiner   outfit.NotesRefiner
	)
	if cfg.AI.GeminiKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, ai.GeminiOptions{
			APIKey: cfg.AI.GeminiKey,
			Model:  cfg.AI.Model,
			Retry:  cfg.AI.Retry.ForCaller("gemini"),
		}, logger)
		if err != nil {
			return err
		}
		defer provider.Close()
		extractor, refiner = provider, provider
	} else {
		logger.Warn("GEMINI_API_KEY not set; extraction falls back to the query text")
	}

	lookup, err := maps.NewLookup(maps.ProviderOptions{
		Provider: cfg.Geocoder.Provider,
		APIKey:   cfg.Geocoder.APIKey,
		BaseURL:  cfg.Geocoder.BaseURL,
		Retry:    cfg.Geocoder.Retry.ForCaller("geocode"),
	}, logger)
	if err != nil {
		return err
	}
	if cfg.Redis.Addr != "" {
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		lookup = maps.NewCachedLookup(lookup, rdb, cfg.Geocoder.CacheTTL, logger)
	}

	var recorder resolution.Recorder
	if cfg.DB.DSN != "" {
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		store := resolution.NewStore(db)
		recorder = store
		deps.History = store
		deps.Quota = quota.NewService(quota.NewStore(db, cfg.Quota.MonthlyCalls))
	}

	if cfg.Firebase.ProjectID != "" {
		verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return err
		}
		deps.Verifier = verifier
	}

	resolver := resolution.NewService(
		extractor,
		geocode.NewAdapter(lookup, logger),
		recorder,
		resolution.Config{Budget: cfg.Resolution.Budget},
		logger,
	)
	advisor := outfit.NewService(refiner, logger)
	forecaster := weather.NewClient(cfg.Weather.BaseURL, retry.NewExecutor(nil, logger), cfg.Weather.Retry.ForCaller("weather"))

	deps.Resolver = resolver
	deps.Advisor = advisor
	deps.Planner = service.NewTripPlanner(resolver, forecaster, advisor, logger)

	return httptransport.NewServer(cfg.HTTP.Addr, deps).Run(ctx)
}
