// Package app assembles the configured adapters and use cases into a
// runnable service.
package app

import (
	"context"
	"fmt"
	"time"

	"agroalerta.app/internal/adapters/api"
	"agroalerta.app/internal/adapters/infrastructure"
	"agroalerta.app/internal/config"
	"agroalerta.app/internal/core/integrated"
	"agroalerta.app/internal/core/location"
	"agroalerta.app/internal/core/notification"
	"agroalerta.app/internal/core/subscription"
	"agroalerta.app/internal/core/weather"
	"agroalerta.app/internal/ports"
	"github.com/go-co-op/gocron"
)

// Application owns the lifecycle of the HTTP server, the orchestrator's
// auto refresh loop and the notification scheduler.
type Application struct {
	config    *config.Config
	container *DependencyContainer

	locationUseCase     *location.UseCase
	weatherUseCase      *weather.UseCase
	orchestrator        *integrated.Orchestrator
	subscriptionUseCase *subscription.UseCase
	notificationUseCase *notification.UseCase

	httpServer    *api.HTTPServerAdapter
	scheduler     *gocron.Scheduler
	cancelRefresh context.CancelFunc
}

// NewApplication builds the full dependency graph from configuration
func NewApplication(cfg *config.Config) (*Application, error) {
	container, err := NewDependencyContainer(cfg)
	if err != nil {
		return nil, err
	}

	app := &Application{config: cfg, container: container}
	if err := app.initializeUseCases(); err != nil {
		return nil, err
	}
	if err := app.initializeHTTPServer(); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *Application) initializeUseCases() error {
	cfg := a.config
	p := a.container.Ports

	locationTimeout := time.Duration(cfg.Location.RequestTimeoutSec) * time.Second
	strategies := []location.Strategy{
		location.NewRemoteGeolocationStrategy(p.RemoteGeolocator, locationTimeout),
		location.NewIPLookupStrategy(p.IPLocator, p.PlacesRefiner, cfg.Location.RefineRadiusM, locationTimeout),
		location.NewEnhancedNativeStrategy(p.NativeGeolocator, p.PlacesRefiner, cfg.Location.RefineRadiusM),
		location.NewNativeCascadeStrategy(p.NativeGeolocator, nil, nil),
	}

	resolver, err := location.NewResolver(location.ResolverConfig{
		Strategies:     strategies,
		FallbackLat:    cfg.Location.FallbackLatitude,
		FallbackLng:    cfg.Location.FallbackLongitude,
		EnableFallback: cfg.Location.EnableFallback,
		Logger:         p.Logger,
		Metrics:        p.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create coordinate resolver: %w", err)
	}

	a.locationUseCase, err = location.NewUseCase(location.UseCaseDependencies{
		Resolver: resolver,
		Geocoder: p.ReverseGeocoder,
		Config:   p.ConfigProvider,
		Logger:   p.Logger,
	})
	if err != nil {
		return fmt.Errorf("create location use case: %w", err)
	}

	a.weatherUseCase, err = weather.NewUseCase(weather.UseCaseDependencies{
		Provider: p.WeatherProvider,
		Cache:    p.WeatherCache,
		Config:   p.ConfigProvider,
		Logger:   p.Logger,
		Metrics:  p.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create weather use case: %w", err)
	}

	a.orchestrator, err = integrated.NewOrchestrator(integrated.OrchestratorDependencies{
		LocationUseCase: a.locationUseCase,
		WeatherUseCase:  a.weatherUseCase,
		Probe:           a.container.Probe,
		Config:          p.ConfigProvider,
		Logger:          p.Logger,
		Metrics:         p.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}

	a.subscriptionUseCase, err = subscription.NewUseCase(subscription.UseCaseDependencies{
		SubscriptionRepo: p.SubscriptionRepository,
		TokenRepo:        p.TokenRepository,
		EmailProvider:    p.EmailProvider,
		Config:           p.ConfigProvider,
		Logger:           p.Logger,
	})
	if err != nil {
		return fmt.Errorf("create subscription use case: %w", err)
	}

	a.notificationUseCase, err = notification.NewUseCase(notification.UseCaseDependencies{
		SubscriptionRepo: p.SubscriptionRepository,
		TokenRepo:        p.TokenRepository,
		EmailProvider:    p.EmailProvider,
		WeatherFetcher:   a.weatherUseCase,
		Config:           p.ConfigProvider,
		Logger:           p.Logger,
	})
	if err != nil {
		return fmt.Errorf("create notification use case: %w", err)
	}

	return nil
}

func (a *Application) initializeHTTPServer() error {
	healthCheckers := []ports.HealthChecker{
		infrastructure.NewDatabaseHealthChecker(a.container.DB),
		infrastructure.NewCacheHealthChecker(a.container.Cache),
		infrastructure.NewProviderHealthChecker(a.container.Probe),
	}

	server, err := api.NewHTTPServerAdapter(api.ServerOptions{
		Config:              api.ServerConfig{Port: a.config.Server.Port},
		Orchestrator:        a.orchestrator,
		WeatherUseCase:      a.weatherUseCase,
		SubscriptionUseCase: a.subscriptionUseCase,
		HealthCheckers:      healthCheckers,
		Logger:              a.container.Ports.Logger,
	})
	if err != nil {
		return fmt.Errorf("create HTTP server: %w", err)
	}

	a.httpServer = server
	return nil
}

// Start boots the background loops and serves HTTP. It blocks until the
// server stops.
func (a *Application) Start() error {
	refreshCtx, cancel := context.WithCancel(context.Background())
	a.cancelRefresh = cancel

	go func() {
		a.orchestrator.Initialize(refreshCtx)
		a.orchestrator.RunAutoRefresh(refreshCtx)
	}()

	if err := a.startScheduler(); err != nil {
		cancel()
		return err
	}

	return a.httpServer.Start(refreshCtx)
}

// startScheduler registers the periodic notification jobs
func (a *Application) startScheduler() error {
	log := a.container.Ports.Logger
	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Every(a.config.Scheduler.HourlyInterval).Minutes().Do(func() {
		a.runUpdateJob(subscription.FrequencyHourly)
	})
	if err != nil {
		return fmt.Errorf("schedule hourly updates: %w", err)
	}

	_, err = scheduler.Every(a.config.Scheduler.DailyInterval).Minutes().Do(func() {
		a.runUpdateJob(subscription.FrequencyDaily)
	})
	if err != nil {
		return fmt.Errorf("schedule daily updates: %w", err)
	}

	_, err = scheduler.Every(1).Day().Do(func() {
		if err := a.notificationUseCase.CleanupExpiredTokens(context.Background()); err != nil {
			log.Error("Token cleanup failed", ports.F("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule token cleanup: %w", err)
	}

	scheduler.StartAsync()
	a.scheduler = scheduler

	log.Info("Notification scheduler started",
		ports.F("hourlyIntervalMin", a.config.Scheduler.HourlyInterval),
		ports.F("dailyIntervalMin", a.config.Scheduler.DailyInterval))
	return nil
}

func (a *Application) runUpdateJob(frequency subscription.Frequency) {
	log := a.container.Ports.Logger
	log.Debug("Running scheduled weather updates", ports.F("frequency", frequency.String()))

	err := a.notificationUseCase.SendWeatherUpdates(context.Background(),
		notification.SendWeatherUpdatesParams{Frequency: frequency})
	if err != nil {
		log.Error("Scheduled weather updates failed",
			ports.F("frequency", frequency.String()),
			ports.F("error", err.Error()))
	}
}

// Shutdown stops the scheduler and the background loops, drains the HTTP
// server and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	log := a.container.Ports.Logger
	log.Info("Shutting down application")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.cancelRefresh != nil {
		a.cancelRefresh()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", ports.F("error", err.Error()))
	}

	if err := a.container.Close(); err != nil {
		return fmt.Errorf("close dependencies: %w", err)
	}

	log.Info("Application stopped")
	return nil
}
