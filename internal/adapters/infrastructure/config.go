package infrastructure

import (
	"time"

	"agroalerta.app/internal/config"
	"agroalerta.app/internal/ports"
)

// ConfigProviderAdapter implements the ConfigProvider port over the
// envconfig-loaded configuration.
type ConfigProviderAdapter struct {
	config *config.Config
}

// NewConfigProviderAdapter creates a new config provider adapter
func NewConfigProviderAdapter(cfg *config.Config) *ConfigProviderAdapter {
	return &ConfigProviderAdapter{config: cfg}
}

// GetAppConfig returns application configuration
func (c *ConfigProviderAdapter) GetAppConfig() ports.AppConfig {
	return ports.AppConfig{
		BaseURL:  c.config.AppBaseURL,
		Language: c.config.Language,
	}
}

// GetServerConfig returns server configuration
func (c *ConfigProviderAdapter) GetServerConfig() ports.ServerConfig {
	return ports.ServerConfig{
		Port: c.config.Server.Port,
	}
}

// GetLocationConfig returns location resolution configuration
func (c *ConfigProviderAdapter) GetLocationConfig() ports.LocationConfig {
	return ports.LocationConfig{
		GoogleAPIKey:       c.config.Location.GoogleAPIKey,
		GeolocationBaseURL: c.config.Location.GeolocationBaseURL,
		GeocodingBaseURL:   c.config.Location.GeocodingBaseURL,
		PlacesBaseURL:      c.config.Location.PlacesBaseURL,
		IPLookupBaseURL:    c.config.Location.IPLookupBaseURL,
		DefaultCountry:     c.config.Location.DefaultCountry,
		FallbackLatitude:   c.config.Location.FallbackLatitude,
		FallbackLongitude:  c.config.Location.FallbackLongitude,
		RefineRadiusM:      c.config.Location.RefineRadiusM,
		RequestTimeout:     time.Duration(c.config.Location.RequestTimeoutSec) * time.Second,
		EnableFallback:     c.config.Location.EnableFallback,
	}
}

// GetWeatherConfig returns weather provider configuration
func (c *ConfigProviderAdapter) GetWeatherConfig() ports.WeatherConfig {
	return ports.WeatherConfig{
		APIKey:         c.config.Weather.APIKey,
		BaseURL:        c.config.Weather.BaseURL,
		Language:       c.config.Language,
		RequestTimeout: time.Duration(c.config.Weather.RequestTimeoutSec) * time.Second,
		EnableCache:    c.config.Weather.EnableCache,
		CacheTTL:       time.Duration(c.config.Weather.CacheTTLMinutes) * time.Minute,
	}
}

// GetRefreshConfig returns the staleness-driven refresh configuration
func (c *ConfigProviderAdapter) GetRefreshConfig() ports.RefreshConfig {
	return ports.RefreshConfig{
		Interval:     c.config.Refresh.Interval(),
		PollInterval: c.config.Refresh.PollInterval(),
	}
}

// GetDatabaseConfig returns database configuration
func (c *ConfigProviderAdapter) GetDatabaseConfig() ports.DatabaseConfig {
	return ports.DatabaseConfig{
		Driver:   c.config.Database.Driver,
		Host:     c.config.Database.Host,
		Port:     c.config.Database.Port,
		User:     c.config.Database.User,
		Password: c.config.Database.Password,
		Name:     c.config.Database.Name,
		SSLMode:  c.config.Database.SSLMode,
		Path:     c.config.Database.Path,
	}
}

// GetEmailConfig returns email configuration
func (c *ConfigProviderAdapter) GetEmailConfig() ports.EmailConfig {
	return ports.EmailConfig{
		SMTPHost:     c.config.Email.SMTPHost,
		SMTPPort:     c.config.Email.SMTPPort,
		SMTPUsername: c.config.Email.SMTPUsername,
		SMTPPassword: c.config.Email.SMTPPassword,
		FromName:     c.config.Email.FromName,
		FromAddress:  c.config.Email.FromAddress,
	}
}

// GetCacheConfig returns cache configuration
func (c *ConfigProviderAdapter) GetCacheConfig() ports.CacheConfig {
	return ports.CacheConfig{
		Type: c.config.Cache.Type.String(),
		Redis: ports.RedisConfig{
			Addr:         c.config.Cache.Redis.Addr,
			Password:     c.config.Cache.Redis.Password,
			DB:           c.config.Cache.Redis.DB,
			DialTimeout:  c.config.Cache.Redis.DialTimeout,
			ReadTimeout:  c.config.Cache.Redis.ReadTimeout,
			WriteTimeout: c.config.Cache.Redis.WriteTimeout,
		},
	}
}

// GetSchedulerConfig returns scheduler configuration
func (c *ConfigProviderAdapter) GetSchedulerConfig() ports.SchedulerConfig {
	return ports.SchedulerConfig{
		HourlyInterval: c.config.Scheduler.HourlyInterval,
		DailyInterval:  c.config.Scheduler.DailyInterval,
	}
}
