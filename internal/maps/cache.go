package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"packwise/internal/modules/geocode"
)

// DefaultCacheTTL keeps geocoding answers for a day.
const DefaultCacheTTL = 24 * time.Hour

// CachedLookup decorates a Lookup with a Redis read-through cache. Redis
// failures fall through to the inner lookup.
type CachedLookup struct {
	inner  geocode.Lookup
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedLookup(inner geocode.Lookup, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedLookup {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLookup{inner: inner, rdb: rdb, ttl: ttl, logger: logger.Named("geocode_cache")}
}

type cachedMatch struct {
	Name        string  `json:"name"`
	Region      string  `json:"region,omitempty"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
}

func cacheKey(name string, maxResults int) string {
	return fmt.Sprintf("packwise:geocode:%d:%s", maxResults, strings.ToLower(strings.TrimSpace(name)))
}

func (c *CachedLookup) Lookup(ctx context.Context, name string, maxResults int) ([]geocode.Match, error) {
	key := cacheKey(name, maxResults)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []cachedMatch
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return fromCached(cached), nil
		}
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	matches, err := c.inner.Lookup(ctx, name, maxResults)
	if err != nil {
		return nil, err
	}

	// Only coordinates that survive validation are cached; NaN is not valid JSON.
	toStore := make([]cachedMatch, 0, len(matches))
	for _, m := range matches {
		if !geocode.ValidCoordinates(m.Latitude, m.Longitude) {
			continue
		}
		toStore = append(toStore, cachedMatch(m))
	}
	if len(toStore) > 0 {
		payload, _ := json.Marshal(toStore)
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return matches, nil
}

func fromCached(cached []cachedMatch) []geocode.Match {
	out := make([]geocode.Match, len(cached))
	for i, m := range cached {
		out[i] = geocode.Match(m)
	}
	return out
}
