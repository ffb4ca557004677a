package ports

import "context"

// HealthStatus represents the health of a single component
type HealthStatus struct {
	Component string                 `json:"component"`
	Status    string                 `json:"status"`
	Error     string                 `json:"error,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HealthChecker checks the health of a single component
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// AvailabilityProbe is the lightweight capability check the orchestrator runs
// before initialization to populate apiAvailability.
type AvailabilityProbe interface {
	LocationProviderAvailable(ctx context.Context) bool
	WeatherProviderAvailable(ctx context.Context) bool
}
