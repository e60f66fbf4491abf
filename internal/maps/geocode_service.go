package maps

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"packwise/internal/modules/geocode"
	"packwise/internal/retry"
)

// GoogleGeocoder handles interactions with the Google Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder creates a GoogleGeocoder whose HTTP traffic runs through
// the retry transport.
func NewGoogleGeocoder(apiKey string, cfg retry.Config, logger *zap.Logger) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(retry.NewClient(cfg, logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

// Lookup geocodes name and returns at most maxResults matches.
func (g *GoogleGeocoder) Lookup(ctx context.Context, name string, maxResults int) ([]geocode.Match, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  name,
		Language: "en",
	})
	if err != nil {
		return nil, fmt.Errorf("geocoding api error: %w", err)
	}

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	matches := make([]geocode.Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, toMatch(r))
	}
	return matches, nil
}

func toMatch(r maps.GeocodingResult) geocode.Match {
	m := geocode.Match{
		Latitude:  r.Geometry.Location.Lat,
		Longitude: r.Geometry.Location.Lng,
	}
	for _, c := range r.AddressComponents {
		switch {
		case hasType(c.Types, "locality") && m.Name == "":
			m.Name = c.LongName
		case hasType(c.Types, "administrative_area_level_1"):
			m.Region = c.LongName
		case hasType(c.Types, "country"):
			m.Country = c.LongName
			m.CountryCode = c.ShortName
		}
	}
	if m.Name == "" {
		m.Name = strings.TrimSpace(strings.Split(r.FormattedAddress, ",")[0])
	}
	return m
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
