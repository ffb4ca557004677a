package weather

import (
	"context"
	"fmt"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"agroalerta.app/pkg/validation"
)

// UseCase fetches raw provider data and normalizes it into reports. Raw
// bundles are what gets cached, so a cached entry goes through the same
// normalization as a fresh fetch.
type UseCase struct {
	provider ports.WeatherProvider
	cache    ports.WeatherCache
	config   ports.ConfigProvider
	logger   ports.Logger
	metrics  ports.MetricsCollector
	now      func() time.Time
}

// UseCaseDependencies holds dependencies for creating the weather use case
type UseCaseDependencies struct {
	Provider ports.WeatherProvider
	Cache    ports.WeatherCache
	Config   ports.ConfigProvider
	Logger   ports.Logger
	Metrics  ports.MetricsCollector
	Now      func() time.Time
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Provider == nil {
		return nil, errors.NewValidationError("weather provider is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &UseCase{
		provider: deps.Provider,
		cache:    deps.Cache,
		config:   deps.Config,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		now:      deps.Now,
	}, nil
}

// FetchWeather returns the normalized report for a coordinate, serving from
// the cache when a fresh enough bundle exists.
func (uc *UseCase) FetchWeather(ctx context.Context, lat, lng float64) (*Report, error) {
	if !validation.IsValidLatitude(lat) || !validation.IsValidLongitude(lng) {
		return nil, errors.NewLocationInvalidError(
			fmt.Sprintf("coordinate (%f, %f) out of range", lat, lng))
	}

	cfg := uc.config.GetWeatherConfig()
	key := cacheKey(lat, lng)

	if cfg.EnableCache && uc.cache != nil {
		if bundle, err := uc.cache.Get(ctx, key); err == nil && bundle != nil {
			uc.recordCache(true)
			uc.logger.Debug("Weather served from cache", ports.F("key", key))
			return uc.buildReport(bundle), nil
		}
		uc.recordCache(false)
	}

	bundle, err := uc.fetchBundle(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	if cfg.EnableCache && uc.cache != nil {
		if err := uc.cache.Set(ctx, key, bundle, cfg.CacheTTL); err != nil {
			uc.logger.Warn("Failed to cache weather bundle",
				ports.F("key", key), ports.F("error", err.Error()))
		}
	}

	return uc.buildReport(bundle), nil
}

// fetchBundle performs the two provider round trips for one report
func (uc *UseCase) fetchBundle(ctx context.Context, lat, lng float64) (*ports.WeatherBundle, error) {
	current, err := uc.provider.CurrentConditions(ctx, lat, lng)
	uc.recordAPICall("current", err == nil)
	if err != nil {
		return nil, err
	}

	samples, err := uc.provider.Forecast(ctx, lat, lng)
	uc.recordAPICall("forecast", err == nil)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Weather fetched",
		ports.F("provider", uc.provider.ProviderName()),
		ports.F("lat", lat),
		ports.F("lng", lng),
		ports.F("samples", len(samples)))

	return &ports.WeatherBundle{
		Current:        *current,
		Samples:        samples,
		FetchedAtEpoch: uc.now().Unix(),
	}, nil
}

func (uc *UseCase) buildReport(bundle *ports.WeatherBundle) *Report {
	return &Report{
		Current:        NormalizeCurrent(&bundle.Current),
		Forecast:       NormalizeForecast(bundle.Samples),
		FetchedAtEpoch: bundle.FetchedAtEpoch,
	}
}

func (uc *UseCase) recordAPICall(endpoint string, success bool) {
	if uc.metrics != nil {
		uc.metrics.RecordWeatherAPICall(endpoint, success)
	}
}

func (uc *UseCase) recordCache(hit bool) {
	if uc.metrics == nil {
		return
	}
	if hit {
		uc.metrics.RecordCacheHit()
	} else {
		uc.metrics.RecordCacheMiss()
	}
}

func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("weather:%.4f:%.4f", lat, lng)
}
