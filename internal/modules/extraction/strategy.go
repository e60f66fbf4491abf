// README: Three-tier prompt escalation for place-name extraction. Pure, no I/O.
package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TierFor maps an attempt number to its tier. Attempts below 1 count as the
// first; everything past the third stays on the fallback tier.
func TierFor(attempt int) Tier {
	switch {
	case attempt <= 1:
		return TierConservative
	case attempt == 2:
		return TierVariants
	default:
		return TierFallback
	}
}

// BuildPrompt returns the instructions and context for one extraction attempt.
// Output depends only on its inputs.
func BuildPrompt(attempt int, query string, failed []string) Prompt {
	tier := TierFor(attempt)
	return Prompt{
		Tier:         tier,
		Instructions: instructionsFor(tier, failed),
		Context:      buildContext(tier, query, failed),
	}
}

const outputContract = `Output JSON Schema:
[
  {"name": "string (required)", "region": "string or omit", "country": "string or omit"}
]
Return between 1 and 5 entries. Return [] only if no place can be inferred at all.`

func instructionsFor(tier Tier, failed []string) string {
	switch tier {
	case TierVariants:
		return fmt.Sprintf(`Role: You extract real-world place names from a travel destination phrase.
The previous attempt produced names that could not be located: %s.

RULES:
1. Do NOT repeat any of the names above.
2. Consider likely misspellings and typos of the phrase.
3. Consider phonetic variants and alternate transliterations (e.g. "Peking" / "Beijing").
4. Consider former or historical names of places (e.g. "Bombay" -> "Mumbai").
5. Split compound words that may hide a place name (e.g. "newyork" -> "New York").
6. Prefer city-level places. Include region and country when identifiable.

%s`, quoteList(failed), outputContract)
	case TierFallback:
		return fmt.Sprintf(`Role: You MUST map a travel destination phrase to a real, geocodable city.
Earlier attempts failed for: %s.

RULES (apply the first that fits):
1. If the phrase names a country or large region, use its capital or largest city.
2. If the phrase is a nickname or slang, resolve it to the official city name.
3. If the phrase refers to a fictional place, use the nearest real-world equivalent.
4. Otherwise, default to a well-known global city that best matches the intent.
Always include the country.

%s`, quoteList(failed), outputContract)
	default:
		return fmt.Sprintf(`Role: You extract real-world place names from a travel destination phrase.

RULES:
1. Extract 3 to 5 city-level candidate places the phrase most likely refers to.
2. If the phrase references a well-known institution or sports team nickname, prefer the
   city of the nation it is most associated with.
3. Include "region" (state, province) and "country" only when identifiable.
4. If region or country is unknown, omit the field. Do NOT guess.

%s`, outputContract)
	}
}

var examples = map[Tier][]example{
	TierConservative: {
		{Query: "the big apple", Candidates: []exampleOutput{{Name: "New York", Region: "New York", Country: "United States"}}},
		{Query: "portland", Candidates: []exampleOutput{
			{Name: "Portland", Region: "Oregon", Country: "United States"},
			{Name: "Portland", Region: "Maine", Country: "United States"},
		}},
	},
	TierVariants: {
		{Query: "pittsburg", Candidates: []exampleOutput{{Name: "Pittsburgh", Region: "Pennsylvania", Country: "United States"}}},
		{Query: "saigon", Candidates: []exampleOutput{{Name: "Ho Chi Minh City", Country: "Vietnam"}}},
	},
	TierFallback: {
		{Query: "somewhere in japan", Candidates: []exampleOutput{{Name: "Tokyo", Country: "Japan"}}},
		{Query: "gotham", Candidates: []exampleOutput{{Name: "New York", Region: "New York", Country: "United States"}}},
	},
}

func buildContext(tier Tier, query string, failed []string) string {
	var b strings.Builder
	b.WriteString("Examples:\n")
	for _, ex := range examples[tier] {
		out, _ := json.Marshal(ex.Candidates)
		fmt.Fprintf(&b, "Phrase: %q -> %s\n", ex.Query, out)
	}
	fmt.Fprintf(&b, "\nPhrase: %q\n", strings.TrimSpace(query))
	if len(failed) > 0 {
		fmt.Fprintf(&b, "Already tried: %s\n", quoteList(failed))
	}
	return b.String()
}

func quoteList(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
