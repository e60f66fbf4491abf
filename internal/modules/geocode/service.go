// README: Geocode adapter; one lookup per candidate, advisory hint filtering and confidence tiers.
package geocode

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Adapter turns a Candidate into scored places.
type Adapter struct {
	lookup Lookup
	logger *zap.Logger
}

func NewAdapter(lookup Lookup, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{lookup: lookup, logger: logger.Named("geocode")}
}

// Geocode never fails: lookup errors and empty results contribute nothing.
func (a *Adapter) Geocode(ctx context.Context, c Candidate) []ResolvedPlace {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return nil
	}

	matches, err := a.lookup.Lookup(ctx, name, MaxMatches)
	if err != nil {
		a.logger.Warn("lookup failed", zap.String("candidate", name), zap.Error(err))
		return nil
	}
	if len(matches) == 0 {
		a.logger.Debug("lookup returned no matches", zap.String("candidate", name))
		return nil
	}

	valid := make([]Match, 0, len(matches))
	for _, m := range matches {
		if !ValidCoordinates(m.Latitude, m.Longitude) {
			a.logger.Debug("dropping match with invalid coordinates",
				zap.String("candidate", name), zap.String("match", m.Name))
			continue
		}
		valid = append(valid, m)
	}
	if len(valid) == 0 {
		return nil
	}

	return score(FilterByHints(valid, c.RegionHint, c.CountryHint))
}

// FilterByHints keeps matches compatible with the hints. Hints are advisory:
// when nothing survives, the input is returned unchanged.
func FilterByHints(matches []Match, regionHint, countryHint string) []Match {
	regionHint = strings.TrimSpace(regionHint)
	countryHint = strings.TrimSpace(countryHint)
	if regionHint == "" && countryHint == "" {
		return matches
	}

	kept := make([]Match, 0, len(matches))
	for _, m := range matches {
		if countryHint != "" && !countryMatches(m, countryHint) {
			continue
		}
		if regionHint != "" && !regionMatches(m.Region, regionHint) {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return matches
	}
	return kept
}

func score(matches []Match) []ResolvedPlace {
	limit := 1 + maxSecondary
	if len(matches) < limit {
		limit = len(matches)
	}
	places := make([]ResolvedPlace, 0, limit)
	for i := 0; i < limit; i++ {
		m := matches[i]
		confidence := SecondaryConfidence
		if i == 0 {
			confidence = PrimaryConfidence
		}
		places = append(places, ResolvedPlace{
			Name:       m.Name,
			Region:     m.Region,
			Country:    m.Country,
			Latitude:   m.Latitude,
			Longitude:  m.Longitude,
			Confidence: confidence,
		})
	}
	return places
}

// maxCodeLen is the longest hint treated as a country code.
const maxCodeLen = 3

var codeAliases = map[string]string{
	"usa": "us",
	"uk":  "gb",
}

// countryMatches compares short hints as codes only ("US" must not match
// "Australia"); longer hints match by name containment.
func countryMatches(m Match, hint string) bool {
	if len(hint) <= maxCodeLen {
		code := strings.ToLower(hint)
		if alias, ok := codeAliases[code]; ok {
			code = alias
		}
		return strings.EqualFold(m.CountryCode, code) || strings.EqualFold(m.Country, hint)
	}
	return containsFold(m.Country, hint)
}

// regionMatches accepts substring containment, or word initials ("NY" for
// "New York").
func regionMatches(region, hint string) bool {
	if region == "" {
		return false
	}
	if containsFold(region, hint) {
		return true
	}
	return len(hint) > 1 && strings.EqualFold(initials(region), hint)
}

func containsFold(s, substr string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func initials(s string) string {
	var b strings.Builder
	for _, word := range strings.FieldsFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '-' }) {
		for _, r := range word {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}
