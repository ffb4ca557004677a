package integrated

import (
	"context"
	"sync"
	"time"

	"agroalerta.app/internal/core/location"
	"agroalerta.app/internal/core/weather"
	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"github.com/jonboulle/clockwork"
)

// LocationResolver is the part of the location use case the orchestrator uses
type LocationResolver interface {
	ResolveLocation(ctx context.Context) (*location.Outcome, error)
}

// WeatherFetcher is the part of the weather use case the orchestrator uses
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, lat, lng float64) (*weather.Report, error)
}

// Pauses before each location resolution attempt. Only Timeout failures are
// retried at this level; the resolver runs its own native cascade internally.
var locationRetryDelays = []time.Duration{0, 2 * time.Second, 5 * time.Second}

// Orchestrator owns the integrated location+weather state. All mutation goes
// through its operations; readers get snapshots. Provider calls run outside
// the lock, and a generation counter discards results that arrive after the
// state they were meant for was cleared or re-initialized.
type Orchestrator struct {
	locationUC LocationResolver
	weatherUC  WeatherFetcher
	probe      ports.AvailabilityProbe
	config     ports.ConfigProvider
	logger     ports.Logger
	metrics    ports.MetricsCollector
	clock      clockwork.Clock

	mu                   sync.Mutex
	state                State
	generation           uint64
	lastAutoRefreshEpoch int64
}

// OrchestratorDependencies holds dependencies for creating the orchestrator
type OrchestratorDependencies struct {
	LocationUseCase LocationResolver
	WeatherUseCase  WeatherFetcher
	Probe           ports.AvailabilityProbe
	Config          ports.ConfigProvider
	Logger          ports.Logger
	Metrics         ports.MetricsCollector
	Clock           clockwork.Clock
}

func NewOrchestrator(deps OrchestratorDependencies) (*Orchestrator, error) {
	if deps.LocationUseCase == nil {
		return nil, errors.NewValidationError("location use case is required")
	}
	if deps.WeatherUseCase == nil {
		return nil, errors.NewValidationError("weather use case is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	return &Orchestrator{
		locationUC: deps.LocationUseCase,
		weatherUC:  deps.WeatherUseCase,
		probe:      deps.Probe,
		config:     deps.Config,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
	}, nil
}

// Snapshot returns a copy of the current state
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Initialize probes provider availability, resolves a location, then fetches
// weather for it. It always terminates with Initialized set, recording any
// failures in the state rather than returning them.
func (o *Orchestrator) Initialize(ctx context.Context) {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.state = State{}
	o.mu.Unlock()

	o.logger.Info("Initializing integrated state")

	availability := o.probeAvailability(ctx)
	o.mu.Lock()
	if gen == o.generation {
		o.state.APIAvailability = availability
	}
	o.mu.Unlock()

	o.resolveLocation(ctx, gen)

	o.mu.Lock()
	record := o.state.Location
	o.mu.Unlock()
	if record != nil {
		o.fetchWeather(ctx, gen, record.Coordinate.Latitude, record.Coordinate.Longitude)
	}

	o.mu.Lock()
	if gen == o.generation {
		o.state.Initialized = true
	}
	o.mu.Unlock()

	snap := o.Snapshot()
	o.logger.Info("Integrated state initialized",
		ports.F("status", snap.StatusSummary()))
}

// RequestLocation re-runs location resolution with application-level retries
// for Timeout failures. It never returns an error to the caller; exhausting
// the retries installs the fixed fallback coordinate and records the failure.
func (o *Orchestrator) RequestLocation(ctx context.Context) {
	o.mu.Lock()
	gen := o.generation
	o.mu.Unlock()
	o.resolveLocation(ctx, gen)
}

func (o *Orchestrator) resolveLocation(ctx context.Context, gen uint64) {
	o.setLocationLoading(gen, true)
	defer o.setLocationLoading(gen, false)

	var lastErr error
	for attempt, delay := range locationRetryDelays {
		if delay > 0 {
			select {
			case <-ctx.Done():
				o.installFallbackLocation(gen, ctx.Err())
				return
			case <-o.clock.After(delay):
			}
		}

		outcome, err := o.locationUC.ResolveLocation(ctx)
		if err == nil {
			o.applyLocation(gen, outcome)
			return
		}

		lastErr = err
		if !errors.IsTimeoutError(err) {
			break
		}
		o.logger.Warn("Location resolution timed out, retrying",
			ports.F("attempt", attempt+1),
			ports.F("error", err.Error()))
	}

	o.installFallbackLocation(gen, lastErr)
}

func (o *Orchestrator) applyLocation(gen uint64, outcome *location.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		o.logger.Debug("Discarding stale location result")
		return
	}

	o.state.Location = outcome.Record
	o.state.LocationError = outcome.LastError
	if outcome.UsedFallback {
		o.logger.Warn("Location resolution degraded to fallback",
			ports.F("error", errMessage(outcome.LastError)))
	}
}

// installFallbackLocation builds the fixed fallback record directly, used
// when resolution failed outright at this level.
func (o *Orchestrator) installFallbackLocation(gen uint64, cause error) {
	if cause == nil {
		return
	}

	cfg := o.config.GetLocationConfig()
	coord := location.NewCoordinate(cfg.FallbackLatitude, cfg.FallbackLongitude, 50000, ports.SourceFallback)
	record := &location.Record{
		Coordinate: coord,
		Address:    location.PlaceholderAddress(coord.Latitude, coord.Longitude, cfg.DefaultCountry),
		Confidence: location.Confidence(coord.Source, coord.AccuracyM),
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return
	}
	o.state.Location = record
	o.state.LocationError = cause
	o.logger.Warn("Installed fallback location after retries",
		ports.F("error", cause.Error()))
}

// RefreshWeather re-fetches weather for the current location. Without a
// location it is a logged no-op. A failed fetch records the error and keeps
// the previous data; stale-but-present beats blank.
func (o *Orchestrator) RefreshWeather(ctx context.Context) {
	o.mu.Lock()
	gen := o.generation
	record := o.state.Location
	o.mu.Unlock()

	if record == nil {
		o.logger.Warn("Weather refresh requested without a resolved location")
		return
	}

	o.fetchWeather(ctx, gen, record.Coordinate.Latitude, record.Coordinate.Longitude)
}

func (o *Orchestrator) fetchWeather(ctx context.Context, gen uint64, lat, lng float64) {
	o.setWeatherLoading(gen, true)
	defer o.setWeatherLoading(gen, false)

	report, err := o.weatherUC.FetchWeather(ctx, lat, lng)

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		o.logger.Debug("Discarding stale weather result")
		return
	}

	if err != nil {
		o.state.WeatherError = err
		o.logger.Error("Weather fetch failed",
			ports.F("error", err.Error()),
			ports.F("kind", errors.TypeOf(err).String()))
		return
	}

	now := o.clock.Now().Unix()
	o.state.Weather = report.Current
	o.state.Forecast = report.Forecast
	o.state.WeatherError = nil
	o.state.LastWeatherUpdateEpoch = now
	// A manual refresh resets the auto-refresh clock too, so the poller
	// cannot fire immediately after it.
	o.lastAutoRefreshEpoch = now
}

// ClearLocation resets the location portion of the state
func (o *Orchestrator) ClearLocation() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Location = nil
	o.state.LocationError = nil
}

// ClearWeather resets the weather portion of the state
func (o *Orchestrator) ClearWeather() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Weather = nil
	o.state.Forecast = nil
	o.state.WeatherError = nil
	o.state.LastWeatherUpdateEpoch = 0
}

// ClearAll resets the whole aggregate. In-flight calls started before the
// clear are discarded on arrival.
func (o *Orchestrator) ClearAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.state = State{}
	o.lastAutoRefreshEpoch = 0
}

// RunAutoRefresh polls the state every poll interval and re-triggers a
// weather refresh once the data is stale. Polling rather than a precise
// timer tolerates suspended or throttled hosts. Blocks until ctx is done.
func (o *Orchestrator) RunAutoRefresh(ctx context.Context) {
	cfg := o.config.GetRefreshConfig()
	ticker := o.clock.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	o.logger.Info("Auto-refresh loop started",
		ports.F("poll_interval", cfg.PollInterval.String()),
		ports.F("refresh_interval", cfg.Interval.String()))

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("Auto-refresh loop stopped")
			return
		case <-ticker.Chan():
			o.maybeAutoRefresh(ctx, cfg.Interval)
		}
	}
}

// maybeAutoRefresh fires a refresh when the weather is stale. Both the time
// since the last successful update and the time since the last automatic
// refresh must exceed the interval, so a slow in-flight refresh cannot be
// doubled by the next poll tick.
func (o *Orchestrator) maybeAutoRefresh(ctx context.Context, interval time.Duration) {
	now := o.clock.Now().Unix()
	intervalSec := int64(interval / time.Second)

	o.mu.Lock()
	fire := o.state.IsFullyLoaded() &&
		o.state.LastWeatherUpdateEpoch > 0 &&
		now-o.state.LastWeatherUpdateEpoch >= intervalSec &&
		now-o.lastAutoRefreshEpoch >= intervalSec
	if fire {
		o.lastAutoRefreshEpoch = now
	}
	o.mu.Unlock()

	if !fire {
		return
	}

	o.logger.Info("Weather data stale, auto-refreshing")
	if o.metrics != nil {
		o.metrics.RecordAutoRefresh()
	}
	o.RefreshWeather(ctx)
}

func (o *Orchestrator) probeAvailability(ctx context.Context) Availability {
	if o.probe == nil {
		return Availability{LocationProvider: true, WeatherProvider: true}
	}
	return Availability{
		LocationProvider: o.probe.LocationProviderAvailable(ctx),
		WeatherProvider:  o.probe.WeatherProviderAvailable(ctx),
	}
}

func (o *Orchestrator) setLocationLoading(gen uint64, loading bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen == o.generation {
		o.state.IsLocationLoading = loading
	}
}

func (o *Orchestrator) setWeatherLoading(gen uint64, loading bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen == o.generation {
		o.state.IsWeatherLoading = loading
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
