// README: http.RoundTripper that routes SDK traffic through the retry executor.
package retry

import (
	"net/http"

	"go.uber.org/zap"
)

// Transport applies a retry Config to every request of an *http.Client, for
// SDKs that accept a custom client (googlemaps).
type Transport struct {
	Config   Config
	executor *Executor
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, cfg Config, logger *zap.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		Config:   cfg,
		executor: NewExecutor(roundTripDoer{base}, logger),
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.executor.Execute(req.Context(), req, t.Config)
}

// NewClient returns an *http.Client whose transport retries under cfg.
func NewClient(cfg Config, logger *zap.Logger) *http.Client {
	return &http.Client{Transport: NewTransport(nil, cfg, logger)}
}

type roundTripDoer struct {
	rt http.RoundTripper
}

func (d roundTripDoer) Do(req *http.Request) (*http.Response, error) {
	return d.rt.RoundTrip(req)
}
