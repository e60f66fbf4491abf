package ai

import (
	"context"

	"packwise/internal/modules/geocode"
	"packwise/internal/modules/outfit"
)

// LLMProvider defines the contract for interacting with AI models.
// This interface allows for swapping different AI providers in the future.
type LLMProvider interface {
	// Extract returns structured place candidates for one extraction prompt.
	Extract(ctx context.Context, instructions, context string) ([]geocode.Candidate, error)

	// RefineNotes writes short packing notes for a day. It never changes the item list.
	RefineNotes(ctx context.Context, day outfit.DayForecast, persona outfit.Persona, items []string) (string, error)

	Close()
}
