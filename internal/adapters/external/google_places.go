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

// GooglePlacesAdapter implements the PlacesRefiner port against the Google
// Places nearby-search endpoint.
type GooglePlacesAdapter struct {
	apiKey  string
	baseURL string
	client  HTTPClient
	logger  ports.Logger
}

// GooglePlacesParams holds parameters for creating the places adapter
type GooglePlacesParams struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  ports.Logger
}

type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name     string `json:"name"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// NewGooglePlacesAdapter creates a new places adapter
func NewGooglePlacesAdapter(params GooglePlacesParams) ports.PlacesRefiner {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/place"
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &GooglePlacesAdapter{
		apiKey:  params.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  params.Logger,
	}
}

// NearbyPlaces lists known places within radiusM of a coordinate
func (a *GooglePlacesAdapter) NearbyPlaces(ctx context.Context, lat, lng, radiusM float64) ([]ports.Place, error) {
	if a.apiKey == "" {
		return nil, errors.NewConfigurationError("places API key is not configured", nil)
	}

	url := fmt.Sprintf("%s/nearbysearch/json?location=%f,%f&radius=%.0f&key=%s",
		a.baseURL, lat, lng, radiusM, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewProviderError("failed to build places request", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("failed to call places provider", err)
	}
	defer a.closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, mapProviderStatus("places", resp.StatusCode)
	}

	var apiResp placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, errors.NewProviderError("failed to decode places response", err)
	}

	// The API signals auth and quota problems in the body status, not HTTP.
	switch apiResp.Status {
	case "OK", "ZERO_RESULTS":
	case "OVER_QUERY_LIMIT":
		return nil, errors.NewRateLimitedError("places provider rate limit exceeded")
	case "REQUEST_DENIED":
		return nil, errors.NewConfigurationError("places provider rejected the API key", nil)
	default:
		return nil, errors.NewProviderError(
			fmt.Sprintf("places provider returned status %s", apiResp.Status), nil)
	}

	places := make([]ports.Place, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		places = append(places, ports.Place{
			Name:      r.Name,
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
		})
	}
	return places, nil
}

func (a *GooglePlacesAdapter) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		a.logger.Warn("Failed to close places response body", ports.F("error", err))
	}
}
