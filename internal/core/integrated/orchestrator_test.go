package integrated

import (
	"context"
	"sync"
	"testing"
	"time"

	"agroalerta.app/internal/core/location"
	"agroalerta.app/internal/core/weather"
	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...ports.Field) {}
func (nopLogger) Info(string, ...ports.Field)  {}
func (nopLogger) Warn(string, ...ports.Field)  {}
func (nopLogger) Error(string, ...ports.Field) {}

type stubConfig struct{}

func (stubConfig) GetAppConfig() ports.AppConfig       { return ports.AppConfig{} }
func (stubConfig) GetServerConfig() ports.ServerConfig { return ports.ServerConfig{} }
func (stubConfig) GetLocationConfig() ports.LocationConfig {
	return ports.LocationConfig{
		DefaultCountry:    "Moçambique",
		FallbackLatitude:  -25.9692,
		FallbackLongitude: 32.5732,
	}
}
func (stubConfig) GetWeatherConfig() ports.WeatherConfig { return ports.WeatherConfig{} }
func (stubConfig) GetRefreshConfig() ports.RefreshConfig {
	return ports.RefreshConfig{
		Interval:     30 * time.Minute,
		PollInterval: time.Minute,
	}
}
func (stubConfig) GetDatabaseConfig() ports.DatabaseConfig   { return ports.DatabaseConfig{} }
func (stubConfig) GetEmailConfig() ports.EmailConfig         { return ports.EmailConfig{} }
func (stubConfig) GetCacheConfig() ports.CacheConfig         { return ports.CacheConfig{} }
func (stubConfig) GetSchedulerConfig() ports.SchedulerConfig { return ports.SchedulerConfig{} }

// scriptedLocationUC returns one scripted outcome per call, repeating the
// last entry once the script runs out.
type scriptedLocationUC struct {
	mu     sync.Mutex
	script []locationResult
	calls  int
}

type locationResult struct {
	outcome *location.Outcome
	err     error
}

func (s *scriptedLocationUC) ResolveLocation(context.Context) (*location.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	s.calls++
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	r := s.script[idx]
	return r.outcome, r.err
}

func (s *scriptedLocationUC) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type scriptedWeatherUC struct {
	mu      sync.Mutex
	report  *weather.Report
	err     error
	calls   int
	barrier chan struct{}
}

func (s *scriptedWeatherUC) FetchWeather(context.Context, float64, float64) (*weather.Report, error) {
	s.mu.Lock()
	s.calls++
	barrier := s.barrier
	report, err := s.report, s.err
	s.mu.Unlock()
	if barrier != nil {
		<-barrier
	}
	return report, err
}

func (s *scriptedWeatherUC) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *scriptedWeatherUC) set(report *weather.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report, s.err = report, err
}

func goodRecord() *location.Record {
	return &location.Record{
		Coordinate: ports.Coordinate{
			Latitude: -25.96, Longitude: 32.58, AccuracyM: 35,
			Timestamp: time.Now().UnixMilli(), Source: ports.SourceRemoteGeolocation,
		},
		Address:    ports.Address{City: "Maputo", Country: "Moçambique"},
		Confidence: 0.95,
	}
}

func goodReport() *weather.Report {
	return &weather.Report{
		Current: &weather.CurrentWeather{
			Location:    weather.Location{Name: "Maputo"},
			Temperature: weather.Temperature{ValueC: 27, FeelsLikeC: 29},
			Condition:   weather.Condition{Description: "céu limpo"},
		},
		Forecast:       []weather.ForecastDay{{Date: "2026-08-28"}},
		FetchedAtEpoch: time.Now().Unix(),
	}
}

func newOrchestrator(t *testing.T, loc LocationResolver, wx WeatherFetcher, clock clockwork.Clock) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(OrchestratorDependencies{
		LocationUseCase: loc,
		WeatherUseCase:  wx,
		Config:          stubConfig{},
		Logger:          nopLogger{},
		Clock:           clock,
	})
	require.NoError(t, err)
	return o
}

func TestInitialize_FullSuccess(t *testing.T) {
	loc := &scriptedLocationUC{script: []locationResult{{outcome: &location.Outcome{Record: goodRecord()}}}}
	wx := &scriptedWeatherUC{report: goodReport()}

	o := newOrchestrator(t, loc, wx, clockwork.NewFakeClock())
	o.Initialize(context.Background())

	state := o.Snapshot()
	assert.True(t, state.Initialized)
	assert.True(t, state.IsFullyLoaded())
	require.NotNil(t, state.Weather)
	assert.Equal(t, 27, state.Weather.Temperature.ValueC)
	assert.NoError(t, state.LocationError)
	assert.NoError(t, state.WeatherError)
	assert.NotZero(t, state.LastWeatherUpdateEpoch)
}

func TestInitialize_WeatherFailureStillInitializes(t *testing.T) {
	loc := &scriptedLocationUC{script: []locationResult{{outcome: &location.Outcome{Record: goodRecord()}}}}
	wx := &scriptedWeatherUC{err: errors.NewConfigurationError("missing api key", nil)}

	o := newOrchestrator(t, loc, wx, clockwork.NewFakeClock())
	o.Initialize(context.Background())

	state := o.Snapshot()
	assert.True(t, state.Initialized)
	assert.Nil(t, state.Weather)
	assert.True(t, errors.IsType(state.WeatherError, errors.ErrorTypeConfiguration))
	assert.NotNil(t, state.Location)
	assert.False(t, state.IsFullyLoaded())
}

func TestInitialize_FallbackLocationRecordsError(t *testing.T) {
	// The resolver degraded to the fallback coordinate; the orchestrator must
	// expose the record and keep the last error visible.
	lastErr := errors.NewPositionUnavailableError("all strategies failed", nil)
	loc := &scriptedLocationUC{script: []locationResult{{outcome: &location.Outcome{
		Record: &location.Record{
			Coordinate: ports.Coordinate{
				Latitude: -25.9692, Longitude: 32.5732, AccuracyM: 50000,
				Source: ports.SourceFallback,
			},
			Confidence: 0.15,
		},
		UsedFallback: true,
		LastError:    lastErr,
	}}}}
	wx := &scriptedWeatherUC{report: goodReport()}

	o := newOrchestrator(t, loc, wx, clockwork.NewFakeClock())
	o.Initialize(context.Background())

	state := o.Snapshot()
	assert.True(t, state.Initialized)
	assert.Equal(t, ports.SourceFallback, state.Location.Coordinate.Source)
	assert.Equal(t, lastErr, state.LocationError)
	assert.NotNil(t, state.Weather, "weather is still fetched for the fallback coordinate")
}

func TestRequestLocation_RetriesOnTimeout(t *testing.T) {
	loc := &scriptedLocationUC{script: []locationResult{
		{err: errors.NewTimeoutError("strategy timeout", nil)},
		{err: errors.NewTimeoutError("strategy timeout", nil)},
		{outcome: &location.Outcome{Record: goodRecord()}},
	}}
	clock := clockwork.NewFakeClock()
	o := newOrchestrator(t, loc, &scriptedWeatherUC{report: goodReport()}, clock)

	done := make(chan struct{})
	go func() {
		o.RequestLocation(context.Background())
		close(done)
	}()

	clock.BlockUntil(1)
	clock.Advance(2 * time.Second)
	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)
	<-done

	assert.Equal(t, 3, loc.callCount())
	state := o.Snapshot()
	require.NotNil(t, state.Location)
	assert.Equal(t, "Maputo", state.Location.Address.City)
	assert.NoError(t, state.LocationError)
	assert.False(t, state.IsLocationLoading)
}

func TestRequestLocation_ExhaustedRetriesInstallFallback(t *testing.T) {
	timeoutErr := errors.NewTimeoutError("strategy timeout", nil)
	loc := &scriptedLocationUC{script: []locationResult{{err: timeoutErr}}}
	clock := clockwork.NewFakeClock()
	o := newOrchestrator(t, loc, &scriptedWeatherUC{report: goodReport()}, clock)

	done := make(chan struct{})
	go func() {
		o.RequestLocation(context.Background())
		close(done)
	}()

	clock.BlockUntil(1)
	clock.Advance(2 * time.Second)
	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)
	<-done

	assert.Equal(t, 3, loc.callCount())
	state := o.Snapshot()
	require.NotNil(t, state.Location)
	assert.Equal(t, ports.SourceFallback, state.Location.Coordinate.Source)
	assert.Equal(t, -25.9692, state.Location.Coordinate.Latitude)
	assert.Equal(t, "Localização", state.Location.Address.City)
	assert.Equal(t, timeoutErr, state.LocationError)
}

func TestRequestLocation_NonTimeoutErrorIsNotRetried(t *testing.T) {
	loc := &scriptedLocationUC{script: []locationResult{
		{err: errors.NewPermissionDeniedError("denied")},
	}}
	o := newOrchestrator(t, loc, &scriptedWeatherUC{}, clockwork.NewFakeClock())

	o.RequestLocation(context.Background())

	assert.Equal(t, 1, loc.callCount())
	state := o.Snapshot()
	assert.Equal(t, ports.SourceFallback, state.Location.Coordinate.Source)
	assert.True(t, errors.IsType(state.LocationError, errors.ErrorTypePermissionDenied))
}

func TestRefreshWeather_NoLocationIsNoop(t *testing.T) {
	wx := &scriptedWeatherUC{report: goodReport()}
	o := newOrchestrator(t, &scriptedLocationUC{script: []locationResult{{}}}, wx, clockwork.NewFakeClock())

	o.RefreshWeather(context.Background())

	assert.Equal(t, 0, wx.callCount())
	assert.Nil(t, o.Snapshot().Weather)
}

func TestRefreshWeather_FailurePreservesPriorData(t *testing.T) {
	loc := &scriptedLocationUC{script: []locationResult{{outcome: &location.Outcome{Record: goodRecord()}}}}
	wx := &scriptedWeatherUC{report: goodReport()}

	o := newOrchestrator(t, loc, wx, clockwork.NewFakeClock())
	o.Initialize(context.Background())
	before := o.Snapshot()
	require.NotNil(t, before.Weather)

	wx.set(nil, errors.NewRateLimitedError("429 from provider"))
	o.RefreshWeather(context.Background())

	after := o.Snapshot()
	assert.True(t, errors.IsRateLimitedError(after.WeatherError))
	assert.Equal(t, before.Weather, after.Weather)
	assert.Equal(t, before.Forecast, after.Forecast)
	assert.Equal(t, before.LastWeatherUpdateEpoch, after.LastWeatherUpdateEpoch)
	assert.False(t, after.IsWeatherLoading)
}

func TestRefreshWeather_SuccessClearsPriorError(t *testing.T) {
	loc := &scriptedLocationUC{script: []locationResult{{outcome: &location.Outcome{Record: goodRecord()}}}}
	wx := &scriptedWeatherUC{err: errors.NewNetworkError("transport", nil)}

	o := newOrchestrator(t, loc, wx, clockwork.NewFakeClock())
	o.Initialize(context.Background())
	require.Error(t, o.Snapshot().WeatherError)

	wx.set(goodReport(), nil)
	o.RefreshWeather(context.Background())

	state := o.Snapshot()
	assert.NoError(t, state.WeatherError)
	assert.NotNil(t, state.Weather)
}

func TestClearAll_DiscardsInFlightResult(t *testing.T) {
	loc := &scriptedLocationUC{script: []locationResult{{outcome: &location.Outcome{Record: goodRecord()}}}}
	wx := &scriptedWeatherUC{report: goodReport(), barrier: make(chan struct{})}

	o := newOrchestrator(t, loc, wx, clockwork.NewFakeClock())
	o.RequestLocation(context.Background())

	done := make(chan struct{})
	go func() {
		o.RefreshWeather(context.Background())
		close(done)
	}()

	// Wait for the fetch to be in flight, then clear state under it.
	assert.Eventually(t, func() bool { return wx.callCount() == 1 }, time.Second, 5*time.Millisecond)
	o.ClearAll()
	close(wx.barrier)
	<-done

	state := o.Snapshot()
	assert.Nil(t, state.Weather, "result from before the clear must be discarded")
	assert.Nil(t, state.Location)
	assert.False(t, state.Initialized)
}

func TestClears(t *testing.T) {
	loc := &scriptedLocationUC{script: []locationResult{{outcome: &location.Outcome{Record: goodRecord()}}}}
	wx := &scriptedWeatherUC{report: goodReport()}

	o := newOrchestrator(t, loc, wx, clockwork.NewFakeClock())
	o.Initialize(context.Background())

	o.ClearWeather()
	state := o.Snapshot()
	assert.Nil(t, state.Weather)
	assert.Nil(t, state.Forecast)
	assert.Zero(t, state.LastWeatherUpdateEpoch)
	assert.NotNil(t, state.Location)

	o.ClearLocation()
	assert.Nil(t, o.Snapshot().Location)
}

func TestAutoRefresh_FiresOnceWhenStale(t *testing.T) {
	loc := &scriptedLocationUC{script: []locationResult{{outcome: &location.Outcome{Record: goodRecord()}}}}
	wx := &scriptedWeatherUC{report: goodReport()}
	clock := clockwork.NewFakeClock()

	o := newOrchestrator(t, loc, wx, clock)
	o.Initialize(context.Background())
	require.Equal(t, 1, wx.callCount())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go o.RunAutoRefresh(ctx)

	// 31 one-minute polls: the 30-minute staleness threshold is crossed and
	// the refresh fires exactly once.
	for i := 0; i < 31; i++ {
		clock.BlockUntil(1)
		clock.Advance(time.Minute)
	}
	assert.Eventually(t, func() bool { return wx.callCount() == 2 }, time.Second, 5*time.Millisecond)

	// One more poll a minute later: the clocks were reset by the refresh, so
	// nothing fires until the next 30-minute boundary.
	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, wx.callCount())
}

func TestAutoRefresh_SkipsWhenNotFullyLoaded(t *testing.T) {
	wx := &scriptedWeatherUC{report: goodReport()}
	clock := clockwork.NewFakeClock()
	o := newOrchestrator(t, &scriptedLocationUC{script: []locationResult{{}}}, wx, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go o.RunAutoRefresh(ctx)

	for i := 0; i < 31; i++ {
		clock.BlockUntil(1)
		clock.Advance(time.Minute)
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, wx.callCount())
}

func TestStatusSummary(t *testing.T) {
	s := &State{}
	assert.Equal(t, "não inicializado", s.StatusSummary())

	s.Initialized = true
	s.LocationError = errors.NewPositionUnavailableError("no fix", nil)
	s.Location = goodRecord()
	assert.Equal(t, "localização padrão", s.StatusSummary())

	s.LocationError = nil
	s.WeatherError = errors.NewRateLimitedError("429")
	assert.Equal(t, "meteorologia indisponível", s.StatusSummary())
}
