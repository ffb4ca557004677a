package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agroalerta.app/internal/core/integrated"
	"agroalerta.app/internal/core/location"
	"agroalerta.app/internal/core/subscription"
	"agroalerta.app/internal/core/weather"
	"agroalerta.app/internal/ports"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...ports.Field) {}
func (nopLogger) Info(string, ...ports.Field)  {}
func (nopLogger) Warn(string, ...ports.Field)  {}
func (nopLogger) Error(string, ...ports.Field) {}

type stubOrchestrator struct {
	state integrated.State
	calls []string
}

func (o *stubOrchestrator) Snapshot() integrated.State      { return o.state }
func (o *stubOrchestrator) Initialize(context.Context)      { o.calls = append(o.calls, "initialize") }
func (o *stubOrchestrator) RequestLocation(context.Context) { o.calls = append(o.calls, "location") }
func (o *stubOrchestrator) RefreshWeather(context.Context)  { o.calls = append(o.calls, "weather") }
func (o *stubOrchestrator) ClearLocation()                  { o.calls = append(o.calls, "clearLocation") }
func (o *stubOrchestrator) ClearWeather()                   { o.calls = append(o.calls, "clearWeather") }
func (o *stubOrchestrator) ClearAll()                       { o.calls = append(o.calls, "clearAll") }

type stubWeatherUseCase struct {
	report           *weather.Report
	err              error
	lastLat, lastLng float64
}

func (uc *stubWeatherUseCase) FetchWeather(_ context.Context, lat, lng float64) (*weather.Report, error) {
	uc.lastLat, uc.lastLng = lat, lng
	if uc.err != nil {
		return nil, uc.err
	}
	return uc.report, nil
}

type stubSubscriptionUseCase struct {
	subscribeParams   *subscription.SubscribeParams
	confirmedToken    string
	unsubscribedToken string
	err               error
}

func (uc *stubSubscriptionUseCase) Subscribe(_ context.Context, params subscription.SubscribeParams) error {
	if uc.err != nil {
		return uc.err
	}
	uc.subscribeParams = &params
	return nil
}

func (uc *stubSubscriptionUseCase) ConfirmSubscription(_ context.Context, params subscription.ConfirmParams) error {
	if uc.err != nil {
		return uc.err
	}
	uc.confirmedToken = params.Token
	return nil
}

func (uc *stubSubscriptionUseCase) Unsubscribe(_ context.Context, params subscription.UnsubscribeParams) error {
	if uc.err != nil {
		return uc.err
	}
	uc.unsubscribedToken = params.Token
	return nil
}

type staticHealthChecker struct {
	status ports.HealthStatus
}

func (c staticHealthChecker) Check(context.Context) ports.HealthStatus { return c.status }

type serverFixture struct {
	server       *HTTPServerAdapter
	orchestrator *stubOrchestrator
	weather      *stubWeatherUseCase
	subscription *stubSubscriptionUseCase
}

func newServerFixture(t *testing.T, checkers ...ports.HealthChecker) *serverFixture {
	t.Helper()

	orchestrator := &stubOrchestrator{state: loadedState()}
	weatherUC := &stubWeatherUseCase{report: sampleReport()}
	subscriptionUC := &stubSubscriptionUseCase{}

	server, err := NewHTTPServerAdapter(ServerOptions{
		Config:              ServerConfig{Port: 8080},
		Orchestrator:        orchestrator,
		WeatherUseCase:      weatherUC,
		SubscriptionUseCase: subscriptionUC,
		HealthCheckers:      checkers,
		Logger:              nopLogger{},
	})
	require.NoError(t, err)

	return &serverFixture{
		server:       server,
		orchestrator: orchestrator,
		weather:      weatherUC,
		subscription: subscriptionUC,
	}
}

func (f *serverFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	f.server.GetRouter().ServeHTTP(recorder, req)
	return recorder
}

func loadedState() integrated.State {
	record := &location.Record{
		Coordinate: ports.Coordinate{
			Latitude:  -25.9692,
			Longitude: 32.5732,
			AccuracyM: 35,
			Source:    ports.SourceGPS,
		},
		Address: ports.Address{
			Formatted: "Av. Julius Nyerere, Maputo",
			City:      "Maputo",
			State:     "Maputo",
			Country:   "Moçambique",
		},
		Confidence: 0.95,
	}

	report := sampleReport()
	return integrated.State{
		Location:               record,
		Weather:                report.Current,
		Forecast:               report.Forecast,
		Initialized:            true,
		LastWeatherUpdateEpoch: 1756380000,
		APIAvailability:        integrated.Availability{LocationProvider: true, WeatherProvider: true},
	}
}

func sampleReport() *weather.Report {
	return &weather.Report{
		Current: &weather.CurrentWeather{
			Location:    weather.Location{Name: "Maputo", Country: "MZ"},
			Temperature: weather.Temperature{ValueC: 27, FeelsLikeC: 28},
			HumidityPct: 65,
			Condition:   weather.Condition{Main: "Clear", Description: "céu limpo", IconID: "01d"},
		},
		Forecast: []weather.ForecastDay{
			{
				Date:          "2026-08-28",
				Temperature:   weather.DayTemperatures{MinC: 20, MaxC: 29},
				Precipitation: weather.Precipitation{ProbabilityPct: 20, VolumeMM: 0.5},
			},
		},
		FetchedAtEpoch: 1756380000,
	}
}
