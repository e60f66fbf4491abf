package ai

import (
	"context"

	"packwise/internal/modules/geocode"
	"packwise/internal/modules/outfit"
)

// NoopProvider is used when no model key is configured. Extract yields no
// candidates, so resolution falls back to the query's first token.
type NoopProvider struct{}

var _ LLMProvider = NoopProvider{}

func (NoopProvider) Extract(context.Context, string, string) ([]geocode.Candidate, error) {
	return nil, nil
}

func (NoopProvider) RefineNotes(context.Context, outfit.DayForecast, outfit.Persona, []string) (string, error) {
	return "", nil
}

func (NoopProvider) Close() {}
