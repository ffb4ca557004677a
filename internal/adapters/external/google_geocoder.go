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

// GoogleGeocoderAdapter implements the ReverseGeocoder port against the
// Google Geocoding API. Errors returned here are absorbed by the location
// use case into a placeholder address; they never fail a resolution.
type GoogleGeocoderAdapter struct {
	apiKey  string
	baseURL string
	client  HTTPClient
	logger  ports.Logger
}

// GoogleGeocoderParams holds parameters for creating the geocoder adapter
type GoogleGeocoderParams struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  ports.Logger
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// NewGoogleGeocoderAdapter creates a new reverse geocoder adapter
func NewGoogleGeocoderAdapter(params GoogleGeocoderParams) ports.ReverseGeocoder {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/geocode"
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &GoogleGeocoderAdapter{
		apiKey:  params.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  params.Logger,
	}
}

// ReverseGeocode turns a coordinate into a structured address
func (a *GoogleGeocoderAdapter) ReverseGeocode(ctx context.Context, lat, lng float64) (*ports.Address, error) {
	if a.apiKey == "" {
		return nil, errors.NewConfigurationError("geocoding API key is not configured", nil)
	}

	url := fmt.Sprintf("%s/json?latlng=%f,%f&key=%s", a.baseURL, lat, lng, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewProviderError("failed to build geocoding request", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError("failed to call geocoding provider", err)
	}
	defer a.closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, mapProviderStatus("geocoding", resp.StatusCode)
	}

	var apiResp geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, errors.NewProviderError("failed to decode geocoding response", err)
	}

	// Authorization rejections arrive as a body status with HTTP 200; both
	// that and an empty result set mean "no address".
	if apiResp.Status != "OK" || len(apiResp.Results) == 0 {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("geocoding returned no address (status %s)", apiResp.Status))
	}

	return a.parseAddress(&apiResp), nil
}

func (a *GoogleGeocoderAdapter) parseAddress(resp *geocodeResponse) *ports.Address {
	best := resp.Results[0]
	address := &ports.Address{Formatted: best.FormattedAddress}

	for _, component := range best.AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "locality", "administrative_area_level_2":
				if address.City == "" {
					address.City = component.LongName
				}
			case "administrative_area_level_1":
				address.State = component.LongName
			case "country":
				address.Country = component.LongName
			case "postal_code":
				address.PostalCode = component.LongName
			}
		}
	}
	return address
}

func (a *GoogleGeocoderAdapter) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		a.logger.Warn("Failed to close geocoding response body", ports.F("error", err))
	}
}
