package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
)

// GoogleGeolocationAdapter implements the RemoteGeolocator port against the
// Google Geolocation API. The request carries considerIp only; WiFi and cell
// signals are not obtainable in our deployment environments, so accuracy is
// effectively IP-level.
type GoogleGeolocationAdapter struct {
	apiKey  string
	baseURL string
	client  HTTPClient
	logger  ports.Logger
}

// GoogleGeolocationParams holds parameters for creating the geolocation adapter
type GoogleGeolocationParams struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  ports.Logger
}

type geolocationRequest struct {
	ConsiderIP       bool   `json:"considerIp"`
	WifiAccessPoints []any  `json:"wifiAccessPoints"`
	CellTowers       []any  `json:"cellTowers"`
	RadioType        string `json:"radioType,omitempty"`
}

type geolocationResponse struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

// NewGoogleGeolocationAdapter creates a new geolocation adapter
func NewGoogleGeolocationAdapter(params GoogleGeolocationParams) ports.RemoteGeolocator {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/geolocation/v1"
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &GoogleGeolocationAdapter{
		apiKey:  params.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  params.Logger,
	}
}

// Geolocate resolves a coordinate from ambient network signals
func (a *GoogleGeolocationAdapter) Geolocate(ctx context.Context) (*ports.Coordinate, error) {
	if a.apiKey == "" {
		return nil, errors.NewConfigurationError("geolocation API key is not configured", nil)
	}

	body, err := json.Marshal(geolocationRequest{
		ConsiderIP:       true,
		WifiAccessPoints: []any{},
		CellTowers:       []any{},
	})
	if err != nil {
		return nil, errors.NewProviderError("failed to encode geolocation request", err)
	}

	url := fmt.Sprintf("%s/geolocate?key=%s", a.baseURL, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewProviderError("failed to build geolocation request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("failed to call geolocation provider", err)
	}
	defer a.closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, mapProviderStatus("geolocation", resp.StatusCode)
	}

	var apiResp geolocationResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, errors.NewProviderError("failed to decode geolocation response", err)
	}

	return &ports.Coordinate{
		Latitude:  apiResp.Location.Lat,
		Longitude: apiResp.Location.Lng,
		AccuracyM: apiResp.Accuracy,
		Timestamp: time.Now().UnixMilli(),
		Source:    ports.SourceRemoteGeolocation,
	}, nil
}

func (a *GoogleGeolocationAdapter) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		a.logger.Warn("Failed to close geolocation response body", ports.F("error", err))
	}
}

// mapProviderStatus translates a non-2xx provider status into the error kind
// the resolution chain routes on.
func mapProviderStatus(provider string, status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewConfigurationError(
			fmt.Sprintf("%s provider rejected the API key (status %d)", provider, status), nil)
	case http.StatusNotFound:
		return errors.NewLocationInvalidError(
			fmt.Sprintf("%s provider could not resolve the request (status 404)", provider))
	case http.StatusTooManyRequests:
		return errors.NewRateLimitedError(
			fmt.Sprintf("%s provider rate limit exceeded", provider))
	default:
		return errors.NewProviderError(
			fmt.Sprintf("%s provider returned status %d", provider, status), nil)
	}
}
