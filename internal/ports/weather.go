package ports

import (
	"context"
	"time"
)

// CurrentObservation is the provider-agnostic shape of a current-conditions
// response, before domain normalization (rounding etc.) is applied.
type CurrentObservation struct {
	LocationName      string
	Country           string
	Latitude          float64
	Longitude         float64
	TimezoneOffsetSec int

	TemperatureC float64
	FeelsLikeC   float64
	HumidityPct  float64
	PressureHPa  float64
	VisibilityM  float64
	UVIndex      float64

	WindSpeedMS      float64
	WindDirectionDeg float64
	WindGustMS       *float64

	ConditionCode        int
	ConditionMain        string
	ConditionDescription string
	ConditionIconID      string

	SunriseEpoch    int64
	SunsetEpoch     int64
	ObservedAtEpoch int64
}

// ForecastSample is one fine-grained (3-hourly) forecast sample
type ForecastSample struct {
	Epoch             int64
	TimezoneOffsetSec int

	TemperatureC float64
	HumidityPct  float64

	WindSpeedMS      float64
	WindDirectionDeg float64

	ConditionCode        int
	ConditionMain        string
	ConditionDescription string
	ConditionIconID      string

	PrecipProbability float64 // 0..1 as reported by the provider
	RainVolumeMM      float64
}

// WeatherBundle pairs a current observation with its forecast samples, as
// fetched in one round trip and as stored in the cache.
type WeatherBundle struct {
	Current        CurrentObservation
	Samples        []ForecastSample
	FetchedAtEpoch int64
}

// WeatherProvider defines the contract for a weather data provider
type WeatherProvider interface {
	CurrentConditions(ctx context.Context, lat, lng float64) (*CurrentObservation, error)
	Forecast(ctx context.Context, lat, lng float64) ([]ForecastSample, error)
	ProviderName() string
}

// CacheProvider defines the contract for a generic byte cache
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// WeatherCache defines the contract for caching weather bundles by coordinate
type WeatherCache interface {
	Get(ctx context.Context, key string) (*WeatherBundle, error)
	Set(ctx context.Context, key string, bundle *WeatherBundle, ttl time.Duration) error
}

// CacheStats represents cache performance metrics
type CacheStats struct {
	Hits        int64
	Misses      int64
	TotalOps    int64
	HitRatio    float64
	LastUpdated time.Time
}
