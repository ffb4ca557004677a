package weather

import (
	"math"
	"sort"
	"time"

	"agroalerta.app/internal/ports"
)

// Target local hours for the four representative daily readings
const (
	morningHour   = 6
	afternoonHour = 15
	eveningHour   = 18
	nightHour     = 21
)

const maxForecastDays = 5

// NormalizeCurrent maps a raw observation into the display shape. Temperatures
// are rounded to whole degrees; everything else carries over 1:1. A provider
// that does not report UV index yields 0 here, which is a documented
// limitation of the current-conditions endpoint.
func NormalizeCurrent(obs *ports.CurrentObservation) *CurrentWeather {
	if obs == nil {
		return nil
	}

	return &CurrentWeather{
		Location: Location{
			Name:              obs.LocationName,
			Country:           obs.Country,
			Latitude:          obs.Latitude,
			Longitude:         obs.Longitude,
			TimezoneOffsetSec: obs.TimezoneOffsetSec,
		},
		Temperature: Temperature{
			ValueC:     roundC(obs.TemperatureC),
			FeelsLikeC: roundC(obs.FeelsLikeC),
		},
		HumidityPct: int(math.Round(obs.HumidityPct)),
		PressureHPa: int(math.Round(obs.PressureHPa)),
		VisibilityM: int(math.Round(obs.VisibilityM)),
		UVIndex:     obs.UVIndex,
		Wind: Wind{
			SpeedMS:      obs.WindSpeedMS,
			DirectionDeg: obs.WindDirectionDeg,
			GustMS:       obs.WindGustMS,
		},
		Condition: Condition{
			Code:        obs.ConditionCode,
			Main:        obs.ConditionMain,
			Description: obs.ConditionDescription,
			IconID:      obs.ConditionIconID,
		},
		SunriseEpoch:    obs.SunriseEpoch,
		SunsetEpoch:     obs.SunsetEpoch,
		ObservedAtEpoch: obs.ObservedAtEpoch,
	}
}

// NormalizeForecast aggregates fine-grained samples into at most five daily
// summaries. Samples are grouped by their provider-local calendar date; within
// a day the representative period temperatures are picked by nearest local
// hour. The function is pure, so re-normalizing the same samples yields the
// same result.
func NormalizeForecast(samples []ports.ForecastSample) []ForecastDay {
	if len(samples) == 0 {
		return nil
	}

	byDate := make(map[string][]ports.ForecastSample)
	var order []string
	for _, s := range samples {
		date := localDate(s)
		if _, seen := byDate[date]; !seen {
			order = append(order, date)
		}
		byDate[date] = append(byDate[date], s)
	}
	sort.Strings(order)

	if len(order) > maxForecastDays {
		order = order[:maxForecastDays]
	}

	days := make([]ForecastDay, 0, len(order))
	for _, date := range order {
		days = append(days, summarizeDay(date, byDate[date]))
	}
	return days
}

// summarizeDay collapses one day's samples into a ForecastDay
func summarizeDay(date string, samples []ports.ForecastSample) ForecastDay {
	minC := samples[0].TemperatureC
	maxC := samples[0].TemperatureC
	var humiditySum, windSpeedSum, maxPoP, rainSum float64

	for _, s := range samples {
		minC = math.Min(minC, s.TemperatureC)
		maxC = math.Max(maxC, s.TemperatureC)
		humiditySum += s.HumidityPct
		windSpeedSum += s.WindSpeedMS
		maxPoP = math.Max(maxPoP, s.PrecipProbability)
		rainSum += s.RainVolumeMM
	}

	middle := samples[len(samples)/2]
	n := float64(len(samples))

	return ForecastDay{
		Date: date,
		Temperature: DayTemperatures{
			MinC:       roundC(minC),
			MaxC:       roundC(maxC),
			MorningC:   roundC(sampleNearestHour(samples, morningHour).TemperatureC),
			AfternoonC: roundC(sampleNearestHour(samples, afternoonHour).TemperatureC),
			EveningC:   roundC(sampleNearestHour(samples, eveningHour).TemperatureC),
			NightC:     roundC(sampleNearestHour(samples, nightHour).TemperatureC),
		},
		HumidityPct: int(math.Round(humiditySum / n)),
		Wind: Wind{
			SpeedMS:      windSpeedSum / n,
			DirectionDeg: middle.WindDirectionDeg,
		},
		Condition: Condition{
			Code:        middle.ConditionCode,
			Main:        middle.ConditionMain,
			Description: middle.ConditionDescription,
			IconID:      middle.ConditionIconID,
		},
		Precipitation: Precipitation{
			ProbabilityPct: int(math.Round(maxPoP * 100)),
			VolumeMM:       rainSum,
		},
	}
}

// sampleNearestHour picks the sample whose local hour is closest to the
// target, preferring the earlier sample on ties. With 3-hourly data an exact
// hour match usually exists; otherwise the nearest reading stands in.
func sampleNearestHour(samples []ports.ForecastSample, targetHour int) ports.ForecastSample {
	best := samples[0]
	bestDist := hourDistance(localHour(best), targetHour)

	for _, s := range samples[1:] {
		if d := hourDistance(localHour(s), targetHour); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}

func hourDistance(hour, target int) int {
	d := hour - target
	if d < 0 {
		d = -d
	}
	return d
}

func localTime(s ports.ForecastSample) time.Time {
	return time.Unix(s.Epoch, 0).UTC().Add(time.Duration(s.TimezoneOffsetSec) * time.Second)
}

func localDate(s ports.ForecastSample) string {
	return localTime(s).Format("2006-01-02")
}

func localHour(s ports.ForecastSample) int {
	return localTime(s).Hour()
}

func roundC(c float64) int {
	return int(math.Round(c))
}
