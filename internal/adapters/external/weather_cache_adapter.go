package external

import (
	"context"
	"encoding/json"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
)

// WeatherCacheAdapter bridges the generic CacheProvider to the
// weather-specific WeatherCache port. Raw provider bundles are cached, not
// normalized reports, so cached entries flow through the same normalization
// path as fresh fetches.
type WeatherCacheAdapter struct {
	cacheProvider ports.CacheProvider
}

// NewWeatherCacheAdapter creates a weather cache on top of a generic provider
func NewWeatherCacheAdapter(cacheProvider ports.CacheProvider) ports.WeatherCache {
	return &WeatherCacheAdapter{cacheProvider: cacheProvider}
}

// Get retrieves a cached weather bundle
func (w *WeatherCacheAdapter) Get(ctx context.Context, key string) (*ports.WeatherBundle, error) {
	data, err := w.cacheProvider.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var bundle ports.WeatherBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, errors.NewDatabaseError("failed to deserialize weather bundle", err)
	}
	return &bundle, nil
}

// Set stores a weather bundle with a TTL
func (w *WeatherCacheAdapter) Set(ctx context.Context, key string, bundle *ports.WeatherBundle, ttl time.Duration) error {
	if bundle == nil {
		return errors.NewValidationError("weather bundle cannot be nil")
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		return errors.NewDatabaseError("failed to serialize weather bundle", err)
	}
	return w.cacheProvider.Set(ctx, key, data, ttl)
}
