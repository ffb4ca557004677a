package weather

import (
	"fmt"
)

// CurrentWeather is the normalized current-conditions view. Temperatures are
// rounded to whole degrees for display; a new fetch replaces the value, it is
// never mutated in place.
type CurrentWeather struct {
	Location    Location
	Temperature Temperature
	HumidityPct int
	PressureHPa int
	VisibilityM int
	UVIndex     float64
	Wind        Wind
	Condition   Condition

	SunriseEpoch    int64
	SunsetEpoch     int64
	ObservedAtEpoch int64
}

// Location identifies the place an observation refers to
type Location struct {
	Name              string
	Country           string
	Latitude          float64
	Longitude         float64
	TimezoneOffsetSec int
}

// Temperature holds rounded observed and perceived temperatures
type Temperature struct {
	ValueC     int
	FeelsLikeC int
}

// Wind holds wind conditions. GustMS is nil when the provider omits gusts.
type Wind struct {
	SpeedMS      float64
	DirectionDeg float64
	GustMS       *float64
}

// Condition describes the sky state using the provider's condition codes
type Condition struct {
	Code        int
	Main        string
	Description string
	IconID      string
}

// ForecastDay is one aggregated day of a multi-day forecast, built from the
// provider's fine-grained samples.
type ForecastDay struct {
	Date          string // ISO date in the provider's local timezone
	Temperature   DayTemperatures
	HumidityPct   int
	Wind          Wind
	Condition     Condition
	Precipitation Precipitation
}

// DayTemperatures holds the daily extremes plus representative readings for
// the four display periods.
type DayTemperatures struct {
	MinC       int
	MaxC       int
	MorningC   int
	AfternoonC int
	EveningC   int
	NightC     int
}

// Precipitation aggregates the day's precipitation outlook
type Precipitation struct {
	ProbabilityPct int
	VolumeMM       float64
}

// Report is the result of one weather fetch: current conditions plus the
// aggregated multi-day forecast.
type Report struct {
	Current        *CurrentWeather
	Forecast       []ForecastDay
	FetchedAtEpoch int64
}

// String returns a short description of the current conditions for logging
func (w *CurrentWeather) String() string {
	return fmt.Sprintf("%s, %d°C (%s)", w.Location.Name, w.Temperature.ValueC, w.Condition.Description)
}
