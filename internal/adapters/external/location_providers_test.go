package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...ports.Field) {}
func (nopLogger) Info(string, ...ports.Field)  {}
func (nopLogger) Warn(string, ...ports.Field)  {}
func (nopLogger) Error(string, ...ports.Field) {}

func TestGoogleGeolocation_Geolocate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.String(), "key=test-key")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["considerIp"])

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"location":{"lat":-25.96,"lng":32.58},"accuracy":35}`))
		assert.NoError(t, err)
	}))
	defer server.Close()

	adapter := NewGoogleGeolocationAdapter(GoogleGeolocationParams{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Logger:  nopLogger{},
	})

	coord, err := adapter.Geolocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -25.96, coord.Latitude)
	assert.Equal(t, 32.58, coord.Longitude)
	assert.Equal(t, 35.0, coord.AccuracyM)
	assert.Equal(t, ports.SourceRemoteGeolocation, coord.Source)
}

func TestGoogleGeolocation_MissingKey(t *testing.T) {
	adapter := NewGoogleGeolocationAdapter(GoogleGeolocationParams{Logger: nopLogger{}})

	_, err := adapter.Geolocate(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
}

func TestGoogleGeolocation_ProviderStatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		wantType errors.ErrorType
	}{
		{http.StatusForbidden, errors.ErrorTypeConfiguration},
		{http.StatusTooManyRequests, errors.ErrorTypeRateLimited},
		{http.StatusInternalServerError, errors.ErrorTypeProvider},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))

		adapter := NewGoogleGeolocationAdapter(GoogleGeolocationParams{
			APIKey:  "test-key",
			BaseURL: server.URL,
			Logger:  nopLogger{},
		})

		_, err := adapter.Geolocate(context.Background())
		assert.Equal(t, tt.wantType, errors.TypeOf(err), "status %d", tt.status)
		server.Close()
	}
}

func TestIPGeolocation_Locate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/", r.URL.Path)
		_, err := w.Write([]byte(`{"latitude":-25.95,"longitude":32.60,"city":"Maputo","country_name":"Mozambique"}`))
		assert.NoError(t, err)
	}))
	defer server.Close()

	adapter := NewIPGeolocationAdapter(IPGeolocationParams{BaseURL: server.URL, Logger: nopLogger{}})

	coord, err := adapter.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -25.95, coord.Latitude)
	assert.Equal(t, ports.SourceIP, coord.Source)
	assert.Equal(t, float64(defaultIPAccuracyM), coord.AccuracyM, "missing accuracy defaults to city level")
}

func TestIPGeolocation_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse connections

	adapter := NewIPGeolocationAdapter(IPGeolocationParams{BaseURL: server.URL, Logger: nopLogger{}})

	_, err := adapter.Locate(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
}

func TestGooglePlaces_NearbyPlaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.String(), "radius=100")
		_, err := w.Write([]byte(`{
			"status": "OK",
			"results": [
				{"name": "Mercado Central", "geometry": {"location": {"lat": -25.9655, "lng": 32.5803}}},
				{"name": "Jardim Tunduru", "geometry": {"location": {"lat": -25.9690, "lng": 32.5740}}}
			]
		}`))
		assert.NoError(t, err)
	}))
	defer server.Close()

	adapter := NewGooglePlacesAdapter(GooglePlacesParams{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Logger:  nopLogger{},
	})

	places, err := adapter.NearbyPlaces(context.Background(), -25.965, 32.580, 100)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Mercado Central", places[0].Name)
	assert.Equal(t, -25.9655, places[0].Latitude)
}

func TestGooglePlaces_BodyStatusErrors(t *testing.T) {
	tests := []struct {
		bodyStatus string
		wantType   errors.ErrorType
	}{
		{"OVER_QUERY_LIMIT", errors.ErrorTypeRateLimited},
		{"REQUEST_DENIED", errors.ErrorTypeConfiguration},
		{"INVALID_REQUEST", errors.ErrorTypeProvider},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, err := w.Write([]byte(`{"status":"` + tt.bodyStatus + `","results":[]}`))
			assert.NoError(t, err)
		}))

		adapter := NewGooglePlacesAdapter(GooglePlacesParams{
			APIKey:  "test-key",
			BaseURL: server.URL,
			Logger:  nopLogger{},
		})

		_, err := adapter.NearbyPlaces(context.Background(), -25.965, 32.580, 100)
		assert.Equal(t, tt.wantType, errors.TypeOf(err), "body status %s", tt.bodyStatus)
		server.Close()
	}
}

func TestGoogleGeocoder_ReverseGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.String(), "latlng=")
		_, err := w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Av. 25 de Setembro, Maputo, Mozambique",
				"address_components": [
					{"long_name": "Maputo", "short_name": "Maputo", "types": ["locality"]},
					{"long_name": "Cidade de Maputo", "short_name": "MPM", "types": ["administrative_area_level_1"]},
					{"long_name": "Mozambique", "short_name": "MZ", "types": ["country"]}
				]
			}]
		}`))
		assert.NoError(t, err)
	}))
	defer server.Close()

	adapter := NewGoogleGeocoderAdapter(GoogleGeocoderParams{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Logger:  nopLogger{},
	})

	address, err := adapter.ReverseGeocode(context.Background(), -25.9655, 32.5803)
	require.NoError(t, err)
	assert.Equal(t, "Maputo", address.City)
	assert.Equal(t, "Cidade de Maputo", address.State)
	assert.Equal(t, "Mozambique", address.Country)
	assert.Equal(t, "Av. 25 de Setembro, Maputo, Mozambique", address.Formatted)
}

func TestGoogleGeocoder_AuthorizationRejectionInBody(t *testing.T) {
	// The API reports authorization problems with HTTP 200 and a body status.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte(`{"status":"REQUEST_DENIED","results":[]}`))
		assert.NoError(t, err)
	}))
	defer server.Close()

	adapter := NewGoogleGeocoderAdapter(GoogleGeocoderParams{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Logger:  nopLogger{},
	})

	address, err := adapter.ReverseGeocode(context.Background(), -25.9655, 32.5803)
	assert.Nil(t, address)
	assert.Error(t, err, "the location use case degrades this to a placeholder")
}

func TestNativeGeolocators(t *testing.T) {
	stub := NewUnavailableNativeGeolocator()
	assert.False(t, stub.Available())
	_, err := stub.CurrentPosition(context.Background(), ports.PositionOptions{})
	assert.True(t, errors.IsType(err, errors.ErrorTypePositionUnavailable))

	static := NewStaticNativeGeolocator(-19.8, 34.8, 800)
	assert.True(t, static.Available())
	coord, err := static.CurrentPosition(context.Background(), ports.PositionOptions{})
	require.NoError(t, err)
	assert.Equal(t, -19.8, coord.Latitude)
	assert.Equal(t, ports.SourceGPS, coord.Source)
}

func TestAvailabilityProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized) // any response means reachable
	}))
	defer server.Close()

	probe := NewProviderAvailabilityProbe(AvailabilityProbeParams{
		LocationAPIKey: "key",
		LocationURL:    server.URL,
		WeatherAPIKey:  "",
		WeatherURL:     server.URL,
		Logger:         nopLogger{},
	})

	assert.True(t, probe.LocationProviderAvailable(context.Background()))
	assert.False(t, probe.WeatherProviderAvailable(context.Background()), "missing key means unavailable")
}
