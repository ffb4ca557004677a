package integrated

import (
	"fmt"

	"agroalerta.app/internal/core/location"
	"agroalerta.app/internal/core/weather"
)

// Availability reports whether the external providers answered the
// lightweight capability probe at initialization time.
type Availability struct {
	LocationProvider bool
	WeatherProvider  bool
}

// State is the orchestrator's owned aggregate combining location and weather.
// It is created empty at startup, populated by resolution and fetching, and
// entirely clearable. External readers only ever observe copies.
type State struct {
	Location      *location.Record
	LocationError error

	Weather      *weather.CurrentWeather
	Forecast     []weather.ForecastDay
	WeatherError error

	Initialized            bool
	LastWeatherUpdateEpoch int64

	IsLocationLoading bool
	IsWeatherLoading  bool

	APIAvailability Availability
}

// IsFullyLoaded reports whether location, weather and forecast are all
// present with no fetch in flight. The auto-refresh loop only runs against a
// fully loaded state.
func (s *State) IsFullyLoaded() bool {
	return s.Location != nil &&
		s.Weather != nil &&
		len(s.Forecast) > 0 &&
		!s.IsLocationLoading &&
		!s.IsWeatherLoading
}

// StatusSummary is a human-readable description of the aggregate state,
// derived entirely from the populated fields.
func (s *State) StatusSummary() string {
	switch {
	case !s.Initialized:
		return "não inicializado"
	case s.IsLocationLoading:
		return "a resolver localização"
	case s.IsWeatherLoading:
		return "a carregar meteorologia"
	case s.IsFullyLoaded():
		return fmt.Sprintf("pronto: %s", s.Weather.String())
	case s.LocationError != nil && s.WeatherError != nil:
		return "localização e meteorologia indisponíveis"
	case s.WeatherError != nil:
		return "meteorologia indisponível"
	case s.LocationError != nil && s.Location != nil:
		return "localização padrão"
	default:
		return "parcialmente carregado"
	}
}

// clone returns a copy safe to hand to external readers. The forecast slice
// is copied; records and reports are replace-only so sharing them is safe.
func (s *State) clone() State {
	out := *s
	if s.Forecast != nil {
		out.Forecast = make([]weather.ForecastDay, len(s.Forecast))
		copy(out.Forecast, s.Forecast)
	}
	return out
}
