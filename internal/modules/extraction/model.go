// README: Extraction tier and prompt definitions.
package extraction

// Tier is the escalation level of a place-name extraction attempt.
type Tier int

const (
	// TierConservative asks for the obvious city-level readings of a phrase.
	TierConservative Tier = iota + 1
	// TierVariants retries with spelling, phonetic and historical variants.
	TierVariants
	// TierFallback accepts capitals, official names and well-known cities.
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierConservative:
		return "conservative"
	case TierVariants:
		return "variants"
	case TierFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Prompt is what the extractor receives for one attempt.
type Prompt struct {
	Tier         Tier
	Instructions string
	Context      string
}

// example is a demonstration pair embedded in the prompt context.
type example struct {
	Query      string          `json:"query"`
	Candidates []exampleOutput `json:"candidates"`
}

type exampleOutput struct {
	Name    string `json:"name"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}
