package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"github.com/sony/gobreaker"
)

// OpenWeatherProviderAdapter implements the WeatherProvider port for
// OpenWeatherMap, covering the current-conditions and 5-day/3-hour forecast
// endpoints. Calls run through a circuit breaker so a failing provider is
// backed off instead of hammered by the refresh loop.
type OpenWeatherProviderAdapter struct {
	apiKey   string
	baseURL  string
	language string
	client   HTTPClient
	breaker  *gobreaker.CircuitBreaker
	logger   ports.Logger
}

// OpenWeatherProviderParams holds parameters for creating the provider
type OpenWeatherProviderParams struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration
	Logger   ports.Logger
}

type openWeatherCurrentResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []openWeatherCondition `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Visibility float64 `json:"visibility"`
	Wind       struct {
		Speed float64  `json:"speed"`
		Deg   float64  `json:"deg"`
		Gust  *float64 `json:"gust"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	DT       int64  `json:"dt"`
	Name     string `json:"name"`
}

type openWeatherCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type openWeatherForecastResponse struct {
	List []struct {
		DT   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []openWeatherCondition `json:"weather"`
		Wind    struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Pop  float64 `json:"pop"`
		Rain struct {
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
	City struct {
		Timezone int `json:"timezone"`
	} `json:"city"`
}

// NewOpenWeatherProviderAdapter creates a new OpenWeatherMap provider adapter
func NewOpenWeatherProviderAdapter(params OpenWeatherProviderParams) ports.WeatherProvider {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}
	language := params.Language
	if language == "" {
		language = "pt"
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "openweather",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &OpenWeatherProviderAdapter{
		apiKey:   params.APIKey,
		baseURL:  baseURL,
		language: language,
		client:   &http.Client{Timeout: timeout},
		breaker:  breaker,
		logger:   params.Logger,
	}
}

// CurrentConditions retrieves current weather for a coordinate
func (p *OpenWeatherProviderAdapter) CurrentConditions(ctx context.Context, lat, lng float64) (*ports.CurrentObservation, error) {
	var apiResp openWeatherCurrentResponse
	if err := p.call(ctx, "weather", lat, lng, &apiResp); err != nil {
		return nil, err
	}

	condition := firstCondition(apiResp.Weather)

	return &ports.CurrentObservation{
		LocationName:      apiResp.Name,
		Country:           apiResp.Sys.Country,
		Latitude:          apiResp.Coord.Lat,
		Longitude:         apiResp.Coord.Lon,
		TimezoneOffsetSec: apiResp.Timezone,

		TemperatureC: apiResp.Main.Temp,
		FeelsLikeC:   apiResp.Main.FeelsLike,
		HumidityPct:  apiResp.Main.Humidity,
		PressureHPa:  apiResp.Main.Pressure,
		VisibilityM:  apiResp.Visibility,

		WindSpeedMS:      apiResp.Wind.Speed,
		WindDirectionDeg: apiResp.Wind.Deg,
		WindGustMS:       apiResp.Wind.Gust,

		ConditionCode:        condition.ID,
		ConditionMain:        condition.Main,
		ConditionDescription: condition.Description,
		ConditionIconID:      condition.Icon,

		SunriseEpoch:    apiResp.Sys.Sunrise,
		SunsetEpoch:     apiResp.Sys.Sunset,
		ObservedAtEpoch: apiResp.DT,
	}, nil
}

// Forecast retrieves the 5-day/3-hour forecast samples for a coordinate
func (p *OpenWeatherProviderAdapter) Forecast(ctx context.Context, lat, lng float64) ([]ports.ForecastSample, error) {
	var apiResp openWeatherForecastResponse
	if err := p.call(ctx, "forecast", lat, lng, &apiResp); err != nil {
		return nil, err
	}

	samples := make([]ports.ForecastSample, 0, len(apiResp.List))
	for _, item := range apiResp.List {
		condition := firstCondition(item.Weather)
		samples = append(samples, ports.ForecastSample{
			Epoch:             item.DT,
			TimezoneOffsetSec: apiResp.City.Timezone,

			TemperatureC: item.Main.Temp,
			HumidityPct:  item.Main.Humidity,

			WindSpeedMS:      item.Wind.Speed,
			WindDirectionDeg: item.Wind.Deg,

			ConditionCode:        condition.ID,
			ConditionMain:        condition.Main,
			ConditionDescription: condition.Description,
			ConditionIconID:      condition.Icon,

			PrecipProbability: item.Pop,
			RainVolumeMM:      item.Rain.ThreeH,
		})
	}
	return samples, nil
}

// ProviderName returns the name of this weather provider
func (p *OpenWeatherProviderAdapter) ProviderName() string {
	return "openweathermap"
}

// call performs one breaker-guarded endpoint round trip, decoding into out
func (p *OpenWeatherProviderAdapter) call(ctx context.Context, endpoint string, lat, lng float64, out any) error {
	if p.apiKey == "" {
		return errors.NewConfigurationError("weather API key is not configured", nil)
	}

	url := fmt.Sprintf("%s/%s?lat=%f&lon=%f&appid=%s&units=metric&lang=%s",
		p.baseURL, endpoint, lat, lng, p.apiKey, p.language)

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.doRequest(ctx, url, endpoint, out)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return errors.NewProviderError("weather provider circuit breaker is open", err)
	}
	return err
}

func (p *OpenWeatherProviderAdapter) doRequest(ctx context.Context, url, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.NewProviderError("failed to build weather request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.NewNetworkError("failed to call weather provider", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			p.logger.Warn("Failed to close weather response body", ports.F("error", closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return p.mapStatus(endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewProviderError("failed to decode weather response", err)
	}
	return nil
}

func (p *OpenWeatherProviderAdapter) mapStatus(endpoint string, status int) error {
	switch status {
	case http.StatusUnauthorized:
		return errors.NewConfigurationError("weather provider rejected the API key", nil)
	case http.StatusNotFound:
		return errors.NewLocationInvalidError(
			fmt.Sprintf("weather provider could not resolve the coordinate (%s)", endpoint))
	case http.StatusTooManyRequests:
		return errors.NewRateLimitedError("weather provider rate limit exceeded")
	default:
		return errors.NewProviderError(
			fmt.Sprintf("weather provider returned status %d on %s", status, endpoint), nil)
	}
}

func firstCondition(conditions []openWeatherCondition) openWeatherCondition {
	if len(conditions) == 0 {
		return openWeatherCondition{}
	}
	return conditions[0]
}
