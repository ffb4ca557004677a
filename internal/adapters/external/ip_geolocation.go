package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
)

// Accuracy assumed for an IP-derived coordinate when the lookup does not
// report one. City-level at best.
const defaultIPAccuracyM = 10000

// IPGeolocationAdapter implements the IPLocator port against a public,
// no-auth IP geolocation lookup.
type IPGeolocationAdapter struct {
	baseURL string
	client  HTTPClient
	logger  ports.Logger
}

// IPGeolocationParams holds parameters for creating the IP lookup adapter
type IPGeolocationParams struct {
	BaseURL string
	Timeout time.Duration
	Logger  ports.Logger
}

type ipLookupResponse struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	City      string   `json:"city"`
	Country   string   `json:"country_name"`
	Accuracy  *float64 `json:"accuracy"`
}

// NewIPGeolocationAdapter creates a new IP lookup adapter
func NewIPGeolocationAdapter(params IPGeolocationParams) ports.IPLocator {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = "https://ipapi.co"
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &IPGeolocationAdapter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  params.Logger,
	}
}

// Locate resolves a coarse coordinate from the caller's public IP
func (a *IPGeolocationAdapter) Locate(ctx context.Context) (*ports.Coordinate, error) {
	url := fmt.Sprintf("%s/json/", a.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewProviderError("failed to build IP lookup request", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("failed to call IP lookup provider", err)
	}
	defer a.closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, mapProviderStatus("ip lookup", resp.StatusCode)
	}

	var apiResp ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, errors.NewProviderError("failed to decode IP lookup response", err)
	}

	accuracy := float64(defaultIPAccuracyM)
	if apiResp.Accuracy != nil && *apiResp.Accuracy > 0 {
		accuracy = *apiResp.Accuracy
	}

	a.logger.Debug("IP lookup resolved",
		ports.F("city", apiResp.City),
		ports.F("country", apiResp.Country))

	return &ports.Coordinate{
		Latitude:  apiResp.Latitude,
		Longitude: apiResp.Longitude,
		AccuracyM: accuracy,
		Timestamp: time.Now().UnixMilli(),
		Source:    ports.SourceIP,
	}, nil
}

func (a *IPGeolocationAdapter) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		a.logger.Warn("Failed to close IP lookup response body", ports.F("error", err))
	}
}
