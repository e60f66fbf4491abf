// README: Config loader; .env, optional YAML file, then env overrides with defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"packwise/internal/retry"
)

// RetryConfig is the retry budget for one outbound caller.
type RetryConfig struct {
	MaxRetries   int           `yaml:"maxRetries"`
	InitialDelay time.Duration `yaml:"initialDelay"`
	MaxDelay     time.Duration `yaml:"maxDelay"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ForCaller builds the request-layer config. MaxRetries is taken as is (0
// disables retries); zero durations keep the defaults.
func (r RetryConfig) ForCaller(caller string) retry.Config {
	cfg := retry.DefaultConfig(caller)
	cfg.MaxRetries = r.MaxRetries
	if r.InitialDelay > 0 {
		cfg.InitialDelay = r.InitialDelay
	}
	if r.MaxDelay > 0 {
		cfg.MaxDelay = r.MaxDelay
	}
	if r.Timeout > 0 {
		cfg.Timeout = r.Timeout
	}
	return cfg
}

type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	AI struct {
		GeminiKey string      `yaml:"geminiKey"`
		Model     string      `yaml:"model"`
		Retry     RetryConfig `yaml:"retry"`
	} `yaml:"ai"`
	Geocoder struct {
		// Provider is "openmeteo" or "google".
		Provider string        `yaml:"provider"`
		APIKey   string        `yaml:"apiKey"`
		BaseURL  string        `yaml:"baseUrl"`
		CacheTTL time.Duration `yaml:"cacheTtl"`
		Retry    RetryConfig   `yaml:"retry"`
	} `yaml:"geocoder"`
	Weather struct {
		BaseURL string      `yaml:"baseUrl"`
		Retry   RetryConfig `yaml:"retry"`
	} `yaml:"weather"`
	Resolution struct {
		Budget time.Duration `yaml:"budget"`
	} `yaml:"resolution"`
	Firebase struct {
		ProjectID       string `yaml:"projectId"`
		CredentialsFile string `yaml:"credentialsFile"`
	} `yaml:"firebase"`
	Quota struct {
		MonthlyCalls int `yaml:"monthlyCalls"`
	} `yaml:"quota"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads .env (if present), then the YAML file named by PACKWISE_CONFIG,
// then environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("PACKWISE_CONFIG"); path != "" {
		if err := hydrateFromFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8080"
	cfg.AI.Model = "gemini-2.0-flash"
	cfg.AI.Retry = RetryConfig{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 16 * time.Second, Timeout: 10 * time.Second}
	cfg.Geocoder.Provider = "openmeteo"
	cfg.Geocoder.CacheTTL = 24 * time.Hour
	cfg.Geocoder.Retry = RetryConfig{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 16 * time.Second, Timeout: 10 * time.Second}
	cfg.Weather.Retry = RetryConfig{MaxRetries: 3, InitialDelay: time.Second, MaxDelay: 16 * time.Second, Timeout: 10 * time.Second}
	cfg.Resolution.Budget = 45 * time.Second
	cfg.Quota.MonthlyCalls = 100
	cfg.Log.Level = "info"
	return cfg
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTP.Addr = envOrDefault("PACKWISE_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.DB.DSN = envOrDefault("PACKWISE_DB_DSN", cfg.DB.DSN)
	cfg.Redis.Addr = envOrDefault("PACKWISE_REDIS_ADDR", cfg.Redis.Addr)
	cfg.AI.GeminiKey = envOrDefault("GEMINI_API_KEY", cfg.AI.GeminiKey)
	cfg.AI.Model = envOrDefault("PACKWISE_GEMINI_MODEL", cfg.AI.Model)
	cfg.AI.Retry.MaxRetries = envOrDefaultInt("PACKWISE_AI_MAX_RETRIES", cfg.AI.Retry.MaxRetries)
	cfg.AI.Retry.Timeout = envOrDefaultDuration("PACKWISE_AI_TIMEOUT", cfg.AI.Retry.Timeout)
	cfg.Geocoder.Provider = strings.ToLower(envOrDefault("PACKWISE_GEOCODER", cfg.Geocoder.Provider))
	cfg.Geocoder.APIKey = envOrDefault("GOOGLE_MAPS_API_KEY", cfg.Geocoder.APIKey)
	cfg.Geocoder.BaseURL = envOrDefault("PACKWISE_GEOCODER_URL", cfg.Geocoder.BaseURL)
	cfg.Geocoder.CacheTTL = envOrDefaultDuration("PACKWISE_GEOCODE_CACHE_TTL", cfg.Geocoder.CacheTTL)
	cfg.Geocoder.Retry.MaxRetries = envOrDefaultInt("PACKWISE_GEOCODER_MAX_RETRIES", cfg.Geocoder.Retry.MaxRetries)
	cfg.Geocoder.Retry.Timeout = envOrDefaultDuration("PACKWISE_GEOCODER_TIMEOUT", cfg.Geocoder.Retry.Timeout)
	cfg.Weather.BaseURL = envOrDefault("PACKWISE_WEATHER_URL", cfg.Weather.BaseURL)
	cfg.Resolution.Budget = envOrDefaultDuration("PACKWISE_RESOLVE_BUDGET", cfg.Resolution.Budget)
	cfg.Firebase.ProjectID = envOrDefault("FIREBASE_PROJECT_ID", cfg.Firebase.ProjectID)
	cfg.Firebase.CredentialsFile = envOrDefault("GOOGLE_APPLICATION_CREDENTIALS", cfg.Firebase.CredentialsFile)
	cfg.Quota.MonthlyCalls = envOrDefaultInt("PACKWISE_QUOTA_MONTHLY", cfg.Quota.MonthlyCalls)
	cfg.Log.Level = envOrDefault("PACKWISE_LOG_LEVEL", cfg.Log.Level)
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	switch c.Geocoder.Provider {
	case "openmeteo":
	case "google":
		if c.Geocoder.APIKey == "" {
			return errors.New("geocoder provider google requires GOOGLE_MAPS_API_KEY")
		}
	default:
		return fmt.Errorf("unknown geocoder provider %q", c.Geocoder.Provider)
	}
	if c.Resolution.Budget <= 0 {
		return errors.New("resolution budget must be positive")
	}
	for name, r := range map[string]RetryConfig{"ai": c.AI.Retry, "geocoder": c.Geocoder.Retry, "weather": c.Weather.Retry} {
		if r.MaxRetries < 0 {
			return fmt.Errorf("%s retry: maxRetries must not be negative", name)
		}
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
