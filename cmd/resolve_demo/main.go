package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"packwise/internal/ai"
	"packwise/internal/config"
	"packwise/internal/logging"
	"packwise/internal/maps"
	"packwise/internal/modules/geocode"
	"packwise/internal/modules/outfit"
	"packwise/internal/modules/resolution"
	"packwise/internal/retry"
	"packwise/internal/weather"
)

// Usage: resolve_demo "the big apple"
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: resolve_demo <destination phrase>")
	}
	query := strings.Join(os.Args[1:], " ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	var extractor resolution.Extractor = ai.NoopProvider{}
	if cfg.AI.GeminiKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, ai.GeminiOptions{
			APIKey: cfg.AI.GeminiKey,
			Model:  cfg.AI.Model,
			Retry:  cfg.AI.Retry.ForCaller("gemini"),
		}, logger)
		if err != nil {
			logger.Fatal("init gemini", zap.Error(err))
		}
		defer provider.Close()
		extractor = provider
	}

	lookup, err := maps.NewLookup(maps.ProviderOptions{
		Provider: cfg.Geocoder.Provider,
		APIKey:   cfg.Geocoder.APIKey,
		BaseURL:  cfg.Geocoder.BaseURL,
		Retry:    cfg.Geocoder.Retry.ForCaller("geocode"),
	}, logger)
	if err != nil {
		logger.Fatal("init geocoder", zap.Error(err))
	}
	svc := resolution.NewService(extractor, geocode.NewAdapter(lookup, logger), nil, resolution.Config{Budget: cfg.Resolution.Budget}, logger)

	fmt.Printf("Query: %s\n", query)
	res, err := svc.Resolve(ctx, query)
	if err != nil {
		var nf *resolution.NotFoundError
		if errors.As(err, &nf) {
			fmt.Printf("Not found. Tried: %s\n", strings.Join(nf.Tried, ", "))
			for _, s := range nf.Suggestions {
				fmt.Printf("  - %s\n", s)
			}
			os.Exit(1)
		}
		logger.Fatal("resolve", zap.Error(err))
	}

	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
	for i, d := range res.AlternateDistancesKm() {
		fmt.Printf("alternate %s is %.0f km away\n", res.Candidates[i].Name, d)
	}

	forecaster := weather.NewClient(cfg.Weather.BaseURL, retry.NewExecutor(nil, logger), cfg.Weather.Retry.ForCaller("weather"))
	days, err := forecaster.Daily(ctx, res.Place.Latitude, res.Place.Longitude, 1)
	if err != nil {
		logger.Fatal("forecast", zap.Error(err))
	}
	advice, err := outfit.NewService(nil, logger).AdviseDays(ctx, days, outfit.PersonaNone, outfit.UnitsImperial)
	if err != nil {
		logger.Fatal("advise", zap.Error(err))
	}
	for _, a := range advice {
		fmt.Printf("%s: %s\n", a.Date, strings.Join(a.Items, ", "))
	}
}
