package maps

import (
	"fmt"

	"go.uber.org/zap"

	"packwise/internal/modules/geocode"
	"packwise/internal/retry"
)

const (
	ProviderOpenMeteo = "openmeteo"
	ProviderGoogle    = "google"
)

// ProviderOptions selects and configures a geocoding backend.
type ProviderOptions struct {
	Provider string
	APIKey   string
	BaseURL  string
	Retry    retry.Config
}

// NewLookup builds the configured backend. An empty provider means Open-Meteo.
func NewLookup(opts ProviderOptions, logger *zap.Logger) (geocode.Lookup, error) {
	switch opts.Provider {
	case ProviderGoogle:
		return NewGoogleGeocoder(opts.APIKey, opts.Retry, logger)
	case "", ProviderOpenMeteo:
		return NewOpenMeteoGeocoder(opts.BaseURL, retry.NewExecutor(nil, logger), opts.Retry), nil
	}
	return nil, fmt.Errorf("unknown geocoder provider %q", opts.Provider)
}
