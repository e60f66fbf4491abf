package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"packwise/internal/retry"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PACKWISE_CONFIG", "")
	t.Setenv("PACKWISE_GEOCODER", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Geocoder.Provider != "openmeteo" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Resolution.Budget != 45*time.Second {
		t.Errorf("budget = %v", cfg.Resolution.Budget)
	}
	for name, r := range map[string]RetryConfig{"ai": cfg.AI.Retry, "geocoder": cfg.Geocoder.Retry, "weather": cfg.Weather.Retry} {
		if r.MaxRetries != retry.DefaultMaxRetries || r.InitialDelay != retry.DefaultInitialDelay || r.MaxDelay != retry.DefaultMaxDelay {
			t.Errorf("%s retry defaults = %+v", name, r)
		}
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "packwise.yaml")
	yml := `
http:
  addr: ":9090"
geocoder:
  provider: google
  apiKey: from-file
  cacheTtl: 2h
  retry:
    maxRetries: 5
    initialDelay: 250ms
resolution:
  budget: 20s
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PACKWISE_CONFIG", path)
	t.Setenv("PACKWISE_GEOCODER", "")
	t.Setenv("PACKWISE_HTTP_ADDR", ":7070")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Errorf("env should override file: addr = %s", cfg.HTTP.Addr)
	}
	if cfg.Geocoder.Provider != "google" || cfg.Geocoder.APIKey != "from-file" {
		t.Errorf("geocoder = %+v", cfg.Geocoder)
	}
	if cfg.Geocoder.CacheTTL != 2*time.Hour || cfg.Geocoder.Retry.MaxRetries != 5 || cfg.Geocoder.Retry.InitialDelay != 250*time.Millisecond {
		t.Errorf("geocoder durations = %+v", cfg.Geocoder)
	}
	if cfg.Geocoder.Retry.Timeout != 10*time.Second {
		t.Errorf("unset fields keep defaults: timeout = %v", cfg.Geocoder.Retry.Timeout)
	}
	if cfg.Resolution.Budget != 20*time.Second {
		t.Errorf("budget = %v", cfg.Resolution.Budget)
	}
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	cfg.Geocoder.Provider = "google"
	if err := cfg.Validate(); err == nil {
		t.Error("google without key should fail")
	}
	cfg.Geocoder.Provider = "bing"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown provider should fail")
	}
	cfg = defaults()
	cfg.AI.Retry.MaxRetries = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative retries should fail")
	}
}

func TestEnvOrDefaultDuration(t *testing.T) {
	t.Setenv("PACKWISE_TEST_DUR", "bogus")
	if got := envOrDefaultDuration("PACKWISE_TEST_DUR", time.Second); got != time.Second {
		t.Errorf("got %v", got)
	}
	t.Setenv("PACKWISE_TEST_DUR", "3m")
	if got := envOrDefaultDuration("PACKWISE_TEST_DUR", time.Second); got != 3*time.Minute {
		t.Errorf("got %v", got)
	}
}

func TestRetryConfigForCaller(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 5, Timeout: 2 * time.Second}.ForCaller("weather")
	if cfg.Caller != "weather" || cfg.MaxRetries != 5 || cfg.Timeout != 2*time.Second {
		t.Fatalf("got %+v", cfg)
	}
	if cfg.InitialDelay != retry.DefaultInitialDelay || cfg.ShouldRetry == nil {
		t.Fatalf("defaults not kept: %+v", cfg)
	}

	if got := (RetryConfig{MaxRetries: 0}).ForCaller("geocode").MaxRetries; got != 0 {
		t.Errorf("MaxRetries 0 became %d", got)
	}
}

func TestLoad_ZeroRetriesReachExecutor(t *testing.T) {
	t.Setenv("PACKWISE_CONFIG", "")
	t.Setenv("PACKWISE_GEOCODER", "")
	t.Setenv("PACKWISE_GEOCODER_MAX_RETRIES", "0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Geocoder.Retry.ForCaller("geocode").MaxRetries; got != 0 {
		t.Errorf("geocode MaxRetries = %d, want 0", got)
	}
	if got := cfg.Weather.Retry.ForCaller("weather").MaxRetries; got != 3 {
		t.Errorf("weather MaxRetries = %d, want default 3", got)
	}
}
