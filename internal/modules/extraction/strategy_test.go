package extraction

import (
	"strings"
	"testing"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		attempt int
		want    Tier
	}{
		{-3, TierConservative},
		{0, TierConservative},
		{1, TierConservative},
		{2, TierVariants},
		{3, TierFallback},
		{4, TierFallback},
		{100, TierFallback},
	}
	for _, tt := range tests {
		if got := TierFor(tt.attempt); got != tt.want {
			t.Errorf("TierFor(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	failed := []string{"Gotham", "Metropolis"}
	for attempt := 1; attempt <= 4; attempt++ {
		a := BuildPrompt(attempt, "the dark city", failed)
		b := BuildPrompt(attempt, "the dark city", failed)
		if a != b {
			t.Errorf("attempt %d: prompts differ between calls", attempt)
		}
	}
}

func TestBuildPrompt_TierContent(t *testing.T) {
	tests := []struct {
		name     string
		attempt  int
		failed   []string
		contains []string
		excludes []string
	}{
		{
			name:     "conservative",
			attempt:  1,
			contains: []string{"3 to 5 city-level", "nickname", "Do NOT guess"},
			excludes: []string{"Already tried", "misspellings"},
		},
		{
			name:     "variants list failed names",
			attempt:  2,
			failed:   []string{"Springfeld"},
			contains: []string{`"Springfeld"`, "misspellings", "phonetic", "transliterations", "historical", "compound"},
		},
		{
			name:     "fallback",
			attempt:  3,
			failed:   []string{"Atlantis"},
			contains: []string{"capital or largest city", "official city name", "fictional", "well-known global city", `"Atlantis"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPrompt(tt.attempt, "query", tt.failed)
			full := p.Instructions + "\n" + p.Context
			for _, s := range tt.contains {
				if !strings.Contains(full, s) {
					t.Errorf("prompt missing %q", s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(full, s) {
					t.Errorf("prompt unexpectedly contains %q", s)
				}
			}
		})
	}
}

func TestBuildPrompt_ContextCarriesQueryAndExamples(t *testing.T) {
	p := BuildPrompt(1, "  the big apple  ", nil)
	if !strings.Contains(p.Context, `Phrase: "the big apple"`) {
		t.Errorf("context missing trimmed query: %s", p.Context)
	}
	if !strings.Contains(p.Context, `"name":"New York"`) {
		t.Errorf("context missing JSON example: %s", p.Context)
	}
	if p.Tier != TierConservative {
		t.Errorf("tier = %v, want conservative", p.Tier)
	}
}

func TestTierString(t *testing.T) {
	if TierVariants.String() != "variants" || Tier(9).String() != "unknown" {
		t.Errorf("unexpected tier names")
	}
}
