package infrastructure

import (
	"context"

	"agroalerta.app/internal/ports"
	"gorm.io/gorm"
)

// DatabaseHealthChecker reports whether the subscription database answers
type DatabaseHealthChecker struct {
	db *gorm.DB
}

func NewDatabaseHealthChecker(db *gorm.DB) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{db: db}
}

func (c *DatabaseHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{Component: "database", Status: "healthy"}

	sqlDB, err := c.db.DB()
	if err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	}
	return status
}

// CacheHealthChecker reports whether the weather cache answers
type CacheHealthChecker struct {
	cache ports.CacheProvider
}

func NewCacheHealthChecker(cache ports.CacheProvider) *CacheHealthChecker {
	return &CacheHealthChecker{cache: cache}
}

func (c *CacheHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{Component: "cache", Status: "healthy"}

	if _, err := c.cache.Exists(ctx, "health-check"); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	}
	return status
}

// ProviderHealthChecker reports the external provider availability as seen
// by the capability probe.
type ProviderHealthChecker struct {
	probe ports.AvailabilityProbe
}

func NewProviderHealthChecker(probe ports.AvailabilityProbe) *ProviderHealthChecker {
	return &ProviderHealthChecker{probe: probe}
}

func (c *ProviderHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{Component: "providers", Status: "healthy"}

	location := c.probe.LocationProviderAvailable(ctx)
	weather := c.probe.WeatherProviderAvailable(ctx)
	status.Details = map[string]interface{}{
		"location_provider": location,
		"weather_provider":  weather,
	}
	if !location || !weather {
		status.Status = "degraded"
	}
	return status
}
