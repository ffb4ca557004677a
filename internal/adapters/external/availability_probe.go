package external

import (
	"context"
	"net/http"
	"time"

	"agroalerta.app/internal/ports"
)

// ProviderAvailabilityProbe implements the AvailabilityProbe port with a
// cheap capability check: a provider is considered available when its API
// key is configured and its base URL answers at all. The probe treats any
// HTTP response, including auth rejections, as "the provider is up"; real
// credential problems surface later through the normal error taxonomy.
type ProviderAvailabilityProbe struct {
	locationAPIKey string
	locationURL    string
	weatherAPIKey  string
	weatherURL     string
	client         HTTPClient
	logger         ports.Logger
}

// AvailabilityProbeParams holds parameters for creating the probe
type AvailabilityProbeParams struct {
	LocationAPIKey string
	LocationURL    string
	WeatherAPIKey  string
	WeatherURL     string
	Logger         ports.Logger
}

// NewProviderAvailabilityProbe creates a new availability probe
func NewProviderAvailabilityProbe(params AvailabilityProbeParams) ports.AvailabilityProbe {
	return &ProviderAvailabilityProbe{
		locationAPIKey: params.LocationAPIKey,
		locationURL:    params.LocationURL,
		weatherAPIKey:  params.WeatherAPIKey,
		weatherURL:     params.WeatherURL,
		client:         &http.Client{Timeout: 5 * time.Second},
		logger:         params.Logger,
	}
}

func (p *ProviderAvailabilityProbe) LocationProviderAvailable(ctx context.Context) bool {
	if p.locationAPIKey == "" {
		return false
	}
	return p.reachable(ctx, p.locationURL)
}

func (p *ProviderAvailabilityProbe) WeatherProviderAvailable(ctx context.Context) bool {
	if p.weatherAPIKey == "" {
		return false
	}
	return p.reachable(ctx, p.weatherURL)
}

func (p *ProviderAvailabilityProbe) reachable(ctx context.Context, url string) bool {
	if url == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("Provider probe failed", ports.F("url", url), ports.F("error", err.Error()))
		return false
	}
	_ = resp.Body.Close()
	return true
}
