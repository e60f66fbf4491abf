package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"packwise/internal/modules/geocode"
	"packwise/internal/retry"
)

// DefaultOpenMeteoGeocodingURL is the public geocoding search endpoint.
const DefaultOpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// OpenMeteoGeocoder is a keyless Lookup backed by the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	baseURL  string
	executor *retry.Executor
	cfg      retry.Config
}

func NewOpenMeteoGeocoder(baseURL string, executor *retry.Executor, cfg retry.Config) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoGeocodingURL
	}
	return &OpenMeteoGeocoder{baseURL: baseURL, executor: executor, cfg: cfg}
}

type openMeteoResponse struct {
	Results []struct {
		Name        string     `json:"name"`
		Latitude    *flexFloat `json:"latitude"`
		Longitude   *flexFloat `json:"longitude"`
		Country     string     `json:"country"`
		CountryCode string     `json:"country_code"`
		Admin1      string     `json:"admin1"`
	} `json:"results"`
}

func (g *OpenMeteoGeocoder) Lookup(ctx context.Context, name string, maxResults int) ([]geocode.Match, error) {
	if maxResults <= 0 {
		maxResults = geocode.MaxMatches
	}
	q := url.Values{}
	q.Set("name", name)
	q.Set("count", strconv.Itoa(maxResults))
	q.Set("language", "en")
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.executor.Execute(ctx, req, g.cfg)
	if err != nil {
		return nil, fmt.Errorf("open-meteo geocoding: %w", err)
	}
	defer resp.Body.Close()
	if err := retry.CheckResponse(resp, g.cfg.MaxRetries+1); err != nil {
		return nil, fmt.Errorf("open-meteo geocoding: %w", err)
	}

	var body openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode open-meteo geocoding: %w", err)
	}

	matches := make([]geocode.Match, 0, len(body.Results))
	for _, r := range body.Results {
		matches = append(matches, geocode.Match{
			Name:        r.Name,
			Region:      r.Admin1,
			Country:     r.Country,
			CountryCode: r.CountryCode,
			Latitude:    r.Latitude.value(),
			Longitude:   r.Longitude.value(),
		})
		if len(matches) == maxResults {
			break
		}
	}
	return matches, nil
}

// flexFloat accepts a JSON number or numeric string. Anything else decodes
// to NaN.
type flexFloat float64

// value reports NaN for a missing field.
func (f *flexFloat) value() float64 {
	if f == nil {
		return math.NaN()
	}
	return float64(*f)
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = flexFloat(math.NaN())
		return nil
	}
	s := string(data)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			*f = flexFloat(math.NaN())
			return nil
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		v = math.NaN()
	}
	*f = flexFloat(v)
	return nil
}
