package app

import (
	"fmt"
	"os"
	"time"

	"agroalerta.app/internal/adapters/database"
	"agroalerta.app/internal/adapters/external"
	"agroalerta.app/internal/adapters/infrastructure"
	"agroalerta.app/internal/config"
	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// DependencyContainer builds and holds the adapter instances behind the
// application's ports.
type DependencyContainer struct {
	Ports ports.ApplicationPorts
	DB    *gorm.DB
	Cache ports.CacheProvider
	Probe ports.AvailabilityProbe
}

// NewDependencyContainer wires every outbound adapter from configuration.
// It fails fast when the database or the cache backend cannot be reached.
func NewDependencyContainer(cfg *config.Config) (*DependencyContainer, error) {
	log := infrastructure.NewSlogLoggerAdapter(
		logger.NewWithLevel(logger.ParseLevel(os.Getenv("APP_LOG_LEVEL"))))

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	if err := database.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	cacheProvider, err := external.NewCacheProviderFactory().CreateCacheProvider(&cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("create cache provider: %w", err)
	}

	locationTimeout := time.Duration(cfg.Location.RequestTimeoutSec) * time.Second
	weatherTimeout := time.Duration(cfg.Weather.RequestTimeoutSec) * time.Second

	container := &DependencyContainer{
		DB:    db,
		Cache: cacheProvider,
		Probe: external.NewProviderAvailabilityProbe(external.AvailabilityProbeParams{
			LocationAPIKey: cfg.Location.GoogleAPIKey,
			LocationURL:    cfg.Location.GeolocationBaseURL,
			WeatherAPIKey:  cfg.Weather.APIKey,
			WeatherURL:     cfg.Weather.BaseURL,
			Logger:         log,
		}),
		Ports: ports.ApplicationPorts{
			RemoteGeolocator: external.NewGoogleGeolocationAdapter(external.GoogleGeolocationParams{
				APIKey:  cfg.Location.GoogleAPIKey,
				BaseURL: cfg.Location.GeolocationBaseURL,
				Timeout: locationTimeout,
				Logger:  log,
			}),
			IPLocator: external.NewIPGeolocationAdapter(external.IPGeolocationParams{
				BaseURL: cfg.Location.IPLookupBaseURL,
				Timeout: locationTimeout,
				Logger:  log,
			}),
			PlacesRefiner: external.NewGooglePlacesAdapter(external.GooglePlacesParams{
				APIKey:  cfg.Location.GoogleAPIKey,
				BaseURL: cfg.Location.PlacesBaseURL,
				Timeout: locationTimeout,
				Logger:  log,
			}),
			// The service runs headless, so no GPS hardware is reachable.
			// The native strategies degrade cleanly to the later fallbacks.
			NativeGeolocator: external.NewUnavailableNativeGeolocator(),
			ReverseGeocoder: external.NewGoogleGeocoderAdapter(external.GoogleGeocoderParams{
				APIKey:  cfg.Location.GoogleAPIKey,
				BaseURL: cfg.Location.GeocodingBaseURL,
				Timeout: locationTimeout,
				Logger:  log,
			}),
			WeatherProvider: external.NewOpenWeatherProviderAdapter(external.OpenWeatherProviderParams{
				APIKey:   cfg.Weather.APIKey,
				BaseURL:  cfg.Weather.BaseURL,
				Language: cfg.Language,
				Timeout:  weatherTimeout,
				Logger:   log,
			}),
			WeatherCache:           external.NewWeatherCacheAdapter(cacheProvider),
			SubscriptionRepository: database.NewSubscriptionRepositoryAdapter(db),
			TokenRepository:        database.NewTokenRepositoryAdapter(db),
			EmailProvider: external.NewSMTPEmailProviderAdapter(external.EmailProviderConfig{
				Host:     cfg.Email.SMTPHost,
				Port:     cfg.Email.SMTPPort,
				Username: cfg.Email.SMTPUsername,
				Password: cfg.Email.SMTPPassword,
				FromName: cfg.Email.FromName,
				FromAddr: cfg.Email.FromAddress,
			}),
			ConfigProvider: infrastructure.NewConfigProviderAdapter(cfg),
			Logger:         log,
			Metrics:        infrastructure.NewPrometheusMetricsCollector(prometheus.DefaultRegisterer),
		},
	}

	return container, nil
}

// Close releases resources held by the container
func (c *DependencyContainer) Close() error {
	if c.DB == nil {
		return nil
	}
	return database.CloseDB(c.DB)
}
