// README: Place candidate, lookup match and resolved place definitions.
package geocode

import (
	"context"
	"math"
)

// Confidence tiers assigned per candidate lookup.
const (
	PrimaryConfidence   = 0.9
	SecondaryConfidence = 0.6

	// MaxMatches is how many matches one lookup requests.
	MaxMatches = 5
	// maxSecondary caps the secondary-tier places kept per candidate.
	maxSecondary = 2
)

// Candidate is an unresolved place name produced by the extractor.
type Candidate struct {
	Name        string `json:"name"`
	RegionHint  string `json:"region,omitempty"`
	CountryHint string `json:"country,omitempty"`
}

// Match is one raw result of a geocoding lookup. Coordinates that could not
// be read are NaN.
type Match struct {
	Name        string
	Region      string
	Country     string
	CountryCode string
	Latitude    float64
	Longitude   float64
}

// ResolvedPlace is a scored geographic coordinate.
type ResolvedPlace struct {
	Name       string  `json:"name"`
	Region     string  `json:"region,omitempty"`
	Country    string  `json:"country,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Confidence float64 `json:"confidence"`
}

// Lookup is the external geocoding service: read-only, idempotent, safe to retry.
type Lookup interface {
	Lookup(ctx context.Context, name string, maxResults int) ([]Match, error)
}

// ValidCoordinates reports whether lat/lng are finite and in range.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
