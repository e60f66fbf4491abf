// README: Resolution pipeline types; result, config and the extractor/recorder seams.
package resolution

import (
	"context"
	"time"

	"packwise/internal/modules/geocode"
)

const (
	// MaxAttempts is the number of extraction tiers tried before giving up.
	MaxAttempts = 3
	// MaxAlternates caps the alternates returned next to the chosen place.
	MaxAlternates = 4
	// DefaultBudget bounds one Resolve call across all attempts.
	DefaultBudget = 45 * time.Second
)

// Result is a successful resolution.
type Result struct {
	Query      string                  `json:"query"`
	Place      geocode.ResolvedPlace   `json:"place"`
	Candidates []geocode.ResolvedPlace `json:"candidates"`
	Attempts   int                     `json:"attempts"`
	Tried      []string                `json:"tried"`
}

// Extractor turns a prompt into structured place candidates. An error or an
// empty slice are both treated as "nothing usable".
type Extractor interface {
	Extract(ctx context.Context, instructions, context string) ([]geocode.Candidate, error)
}

// Geocoder resolves one candidate. *geocode.Adapter satisfies it.
type Geocoder interface {
	Geocode(ctx context.Context, c geocode.Candidate) []geocode.ResolvedPlace
}

// Recorder persists successful resolutions.
type Recorder interface {
	Record(ctx context.Context, res *Result) error
}

// Config tunes the pipeline.
type Config struct {
	MaxAttempts int
	// Budget is applied on top of any caller deadline; zero means DefaultBudget.
	Budget time.Duration
}

func (c Config) normalized() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = MaxAttempts
	}
	if c.Budget <= 0 {
		c.Budget = DefaultBudget
	}
	return c
}

// Record is a persisted resolution row.
type Record struct {
	ID         string                  `json:"id"`
	Query      string                  `json:"query"`
	Place      geocode.ResolvedPlace   `json:"place"`
	Candidates []geocode.ResolvedPlace `json:"candidates"`
	Attempts   int                     `json:"attempts"`
	Tried      []string                `json:"tried"`
	CreatedAt  time.Time               `json:"created_at"`
}
