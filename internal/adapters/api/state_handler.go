package api

import (
	"net/http"

	"agroalerta.app/internal/core/integrated"
	"agroalerta.app/internal/core/weather"
	"agroalerta.app/pkg/errors"
	"github.com/gin-gonic/gin"
)

// StateResponse is the JSON view of the orchestrator's aggregate state
type StateResponse struct {
	Location        *LocationResponse   `json:"location,omitempty"`
	LocationError   string              `json:"locationError,omitempty"`
	Weather         *CurrentWeatherView `json:"weather,omitempty"`
	Forecast        []ForecastDayView   `json:"forecast,omitempty"`
	WeatherError    string              `json:"weatherError,omitempty"`
	Initialized     bool                `json:"initialized"`
	LastUpdateEpoch int64               `json:"lastWeatherUpdateEpoch,omitempty"`
	LocationLoading bool                `json:"isLocationLoading"`
	WeatherLoading  bool                `json:"isWeatherLoading"`
	FullyLoaded     bool                `json:"isFullyLoaded"`
	Status          string              `json:"status"`
	APIAvailability map[string]bool     `json:"apiAvailability"`
}

// LocationResponse is the JSON view of a resolved location record
type LocationResponse struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	AccuracyM  float64 `json:"accuracyM"`
	Source     string  `json:"source"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	Country    string  `json:"country"`
	Formatted  string  `json:"formatted"`
	Confidence float64 `json:"confidence"`
}

// CurrentWeatherView is the JSON view of normalized current conditions
type CurrentWeatherView struct {
	LocationName    string   `json:"locationName"`
	TemperatureC    int      `json:"temperatureC"`
	FeelsLikeC      int      `json:"feelsLikeC"`
	HumidityPct     int      `json:"humidityPct"`
	PressureHPa     int      `json:"pressureHPa"`
	WindSpeedMS     float64  `json:"windSpeedMS"`
	WindGustMS      *float64 `json:"windGustMS,omitempty"`
	Condition       string   `json:"condition"`
	Description     string   `json:"description"`
	IconID          string   `json:"iconId"`
	ObservedAtEpoch int64    `json:"observedAtEpoch"`
}

// ForecastDayView is the JSON view of one aggregated forecast day
type ForecastDayView struct {
	Date          string  `json:"date"`
	MinC          int     `json:"minC"`
	MaxC          int     `json:"maxC"`
	MorningC      int     `json:"morningC"`
	AfternoonC    int     `json:"afternoonC"`
	EveningC      int     `json:"eveningC"`
	NightC        int     `json:"nightC"`
	HumidityPct   int     `json:"humidityPct"`
	Condition     string  `json:"condition"`
	Description   string  `json:"description"`
	RainChancePct int     `json:"rainChancePct"`
	RainVolumeMM  float64 `json:"rainVolumeMM"`
}

// getState handles GET /api/state requests
func (s *HTTPServerAdapter) getState(c *gin.Context) {
	state := s.orchestrator.Snapshot()
	c.JSON(http.StatusOK, buildStateResponse(state))
}

// initialize handles POST /api/initialize requests
func (s *HTTPServerAdapter) initialize(c *gin.Context) {
	s.logger.Debug("Initialize requested")
	s.orchestrator.Initialize(c.Request.Context())
	c.JSON(http.StatusOK, buildStateResponse(s.orchestrator.Snapshot()))
}

// refreshLocation handles POST /api/location/refresh requests
func (s *HTTPServerAdapter) refreshLocation(c *gin.Context) {
	s.orchestrator.RequestLocation(c.Request.Context())
	c.JSON(http.StatusOK, buildStateResponse(s.orchestrator.Snapshot()))
}

// refreshWeather handles POST /api/weather/refresh requests
func (s *HTTPServerAdapter) refreshWeather(c *gin.Context) {
	s.orchestrator.RefreshWeather(c.Request.Context())
	c.JSON(http.StatusOK, buildStateResponse(s.orchestrator.Snapshot()))
}

// clearLocation handles DELETE /api/location requests
func (s *HTTPServerAdapter) clearLocation(c *gin.Context) {
	s.orchestrator.ClearLocation()
	c.JSON(http.StatusOK, buildStateResponse(s.orchestrator.Snapshot()))
}

// clearWeather handles DELETE /api/weather requests
func (s *HTTPServerAdapter) clearWeather(c *gin.Context) {
	s.orchestrator.ClearWeather()
	c.JSON(http.StatusOK, buildStateResponse(s.orchestrator.Snapshot()))
}

// clearAll handles DELETE /api/state requests
func (s *HTTPServerAdapter) clearAll(c *gin.Context) {
	s.orchestrator.ClearAll()
	c.JSON(http.StatusOK, buildStateResponse(s.orchestrator.Snapshot()))
}

// getWeather handles GET /api/weather?lat=..&lng=.. requests. It fetches
// directly, bypassing the orchestrator state, for subscription previews and
// ad hoc lookups.
func (s *HTTPServerAdapter) getWeather(c *gin.Context) {
	var query struct {
		Lat float64 `form:"lat" binding:"required"`
		Lng float64 `form:"lng" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		s.handleError(c, errors.NewValidationError("lat and lng query parameters are required"))
		return
	}

	report, err := s.weatherUseCase.FetchWeather(c.Request.Context(), query.Lat, query.Lng)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current":        buildCurrentView(report.Current),
		"forecast":       buildForecastViews(report.Forecast),
		"fetchedAtEpoch": report.FetchedAtEpoch,
	})
}

func buildStateResponse(state integrated.State) StateResponse {
	response := StateResponse{
		Initialized:     state.Initialized,
		LastUpdateEpoch: state.LastWeatherUpdateEpoch,
		LocationLoading: state.IsLocationLoading,
		WeatherLoading:  state.IsWeatherLoading,
		FullyLoaded:     state.IsFullyLoaded(),
		Status:          state.StatusSummary(),
		APIAvailability: map[string]bool{
			"locationProvider": state.APIAvailability.LocationProvider,
			"weatherProvider":  state.APIAvailability.WeatherProvider,
		},
	}

	if state.Location != nil {
		response.Location = &LocationResponse{
			Latitude:   state.Location.Coordinate.Latitude,
			Longitude:  state.Location.Coordinate.Longitude,
			AccuracyM:  state.Location.Coordinate.AccuracyM,
			Source:     state.Location.Coordinate.Source.String(),
			City:       state.Location.Address.City,
			State:      state.Location.Address.State,
			Country:    state.Location.Address.Country,
			Formatted:  state.Location.Address.Formatted,
			Confidence: state.Location.Confidence,
		}
	}
	if state.LocationError != nil {
		response.LocationError = state.LocationError.Error()
	}
	if state.Weather != nil {
		response.Weather = buildCurrentView(state.Weather)
	}
	if state.WeatherError != nil {
		response.WeatherError = state.WeatherError.Error()
	}
	response.Forecast = buildForecastViews(state.Forecast)

	return response
}

func buildCurrentView(current *weather.CurrentWeather) *CurrentWeatherView {
	if current == nil {
		return nil
	}
	return &CurrentWeatherView{
		LocationName:    current.Location.Name,
		TemperatureC:    current.Temperature.ValueC,
		FeelsLikeC:      current.Temperature.FeelsLikeC,
		HumidityPct:     current.HumidityPct,
		PressureHPa:     current.PressureHPa,
		WindSpeedMS:     current.Wind.SpeedMS,
		WindGustMS:      current.Wind.GustMS,
		Condition:       current.Condition.Main,
		Description:     current.Condition.Description,
		IconID:          current.Condition.IconID,
		ObservedAtEpoch: current.ObservedAtEpoch,
	}
}

func buildForecastViews(days []weather.ForecastDay) []ForecastDayView {
	if len(days) == 0 {
		return nil
	}
	views := make([]ForecastDayView, len(days))
	for i, day := range days {
		views[i] = ForecastDayView{
			Date:          day.Date,
			MinC:          day.Temperature.MinC,
			MaxC:          day.Temperature.MaxC,
			MorningC:      day.Temperature.MorningC,
			AfternoonC:    day.Temperature.AfternoonC,
			EveningC:      day.Temperature.EveningC,
			NightC:        day.Temperature.NightC,
			HumidityPct:   day.HumidityPct,
			Condition:     day.Condition.Main,
			Description:   day.Condition.Description,
			RainChancePct: day.Precipitation.ProbabilityPct,
			RainVolumeMM:  day.Precipitation.VolumeMM,
		}
	}
	return views
}
