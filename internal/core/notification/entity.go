// Package notification sends scheduled weather alert emails to confirmed
// subscriptions. Each subscription's coordinate goes through the weather
// pipeline and the report is checked against farmer-relevant thresholds.
package notification

import (
	"fmt"
	"time"

	"agroalerta.app/internal/core/weather"
)

// Alert thresholds. Heat stress and heavy rain are what damages crops and
// field work plans in the target regions.
const (
	heatAlertTempC          = 38
	rainAlertProbabilityPct = 70
)

// Days of forecast the rain check looks at. Alerts warn about what is
// about to happen, not the whole five-day window.
const rainAlertHorizonDays = 2

// AlertKind classifies a triggered alert
type AlertKind int

const (
	AlertHeat AlertKind = iota
	AlertHeavyRain
)

// Alert represents a threshold trip worth flagging in the email
type Alert struct {
	Kind    AlertKind
	Message string
}

// Stats summarizes a notification run
type Stats struct {
	TotalSubscriptions  int
	HourlySubscriptions int
	DailySubscriptions  int
	LastUpdated         time.Time
}

// EvaluateAlerts checks a weather report against the alert thresholds and
// returns the alerts that tripped, heat first.
func EvaluateAlerts(report *weather.Report) []Alert {
	if report == nil {
		return nil
	}

	var alerts []Alert

	maxTemp := 0
	hasTemp := false
	if report.Current != nil {
		maxTemp = report.Current.Temperature.ValueC
		hasTemp = true
	}
	for i, day := range report.Forecast {
		if i >= rainAlertHorizonDays {
			break
		}
		if !hasTemp || day.Temperature.MaxC > maxTemp {
			maxTemp = day.Temperature.MaxC
			hasTemp = true
		}
	}
	if hasTemp && maxTemp >= heatAlertTempC {
		alerts = append(alerts, Alert{
			Kind: AlertHeat,
			Message: fmt.Sprintf(
				"Calor extremo previsto: máxima de %d°C. Proteja as culturas e evite trabalho de campo nas horas mais quentes.",
				maxTemp),
		})
	}

	for i, day := range report.Forecast {
		if i >= rainAlertHorizonDays {
			break
		}
		if day.Precipitation.ProbabilityPct >= rainAlertProbabilityPct {
			alerts = append(alerts, Alert{
				Kind: AlertHeavyRain,
				Message: fmt.Sprintf(
					"Probabilidade de chuva forte de %d%% em %s (%.1f mm previstos).",
					day.Precipitation.ProbabilityPct, day.Date, day.Precipitation.VolumeMM),
			})
			break
		}
	}

	return alerts
}
