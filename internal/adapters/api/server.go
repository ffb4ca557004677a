// Package api provides the HTTP adapter. Handlers translate requests into
// use case calls and domain state into JSON responses.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"agroalerta.app/internal/core/integrated"
	"agroalerta.app/internal/core/subscription"
	"agroalerta.app/internal/core/weather"
	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registerValidatorsOnce sync.Once

// registerBindingValidators installs custom binding rules on gin's shared
// validator engine.
func registerBindingValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		return subscription.FrequencyFromString(fl.Field().String()).IsValid()
	})
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port int
}

// Use case interfaces the HTTP adapter depends on
type StateOrchestrator interface {
	Snapshot() integrated.State
	Initialize(ctx context.Context)
	RequestLocation(ctx context.Context)
	RefreshWeather(ctx context.Context)
	ClearLocation()
	ClearWeather()
	ClearAll()
}

type WeatherUseCase interface {
	FetchWeather(ctx context.Context, lat, lng float64) (*weather.Report, error)
}

type SubscriptionUseCase interface {
	Subscribe(ctx context.Context, params subscription.SubscribeParams) error
	ConfirmSubscription(ctx context.Context, params subscription.ConfirmParams) error
	Unsubscribe(ctx context.Context, params subscription.UnsubscribeParams) error
}

// HTTPServerAdapter implements the HTTP server using gin
type HTTPServerAdapter struct {
	router              *gin.Engine
	httpServer          *http.Server
	config              ServerConfig
	orchestrator        StateOrchestrator
	weatherUseCase      WeatherUseCase
	subscriptionUseCase SubscriptionUseCase
	healthCheckers      []ports.HealthChecker
	logger              ports.Logger
}

// ServerOptions represents options for creating the HTTP server
type ServerOptions struct {
	Config              ServerConfig
	Orchestrator        StateOrchestrator
	WeatherUseCase      WeatherUseCase
	SubscriptionUseCase SubscriptionUseCase
	HealthCheckers      []ports.HealthChecker
	Logger              ports.Logger
}

// Validate checks if all required dependencies are provided
func (opts *ServerOptions) Validate() error {
	if opts.Orchestrator == nil {
		return errors.NewValidationError("orchestrator is required")
	}
	if opts.WeatherUseCase == nil {
		return errors.NewValidationError("weather use case is required")
	}
	if opts.SubscriptionUseCase == nil {
		return errors.NewValidationError("subscription use case is required")
	}
	if opts.Logger == nil {
		return errors.NewValidationError("logger is required")
	}
	return nil
}

// NewHTTPServerAdapter creates a new HTTP server adapter
func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	registerValidatorsOnce.Do(registerBindingValidators)
	router := gin.New()
	router.Use(gin.Recovery())

	server := &HTTPServerAdapter{
		router:              router,
		config:              opts.Config,
		orchestrator:        opts.Orchestrator,
		weatherUseCase:      opts.WeatherUseCase,
		subscriptionUseCase: opts.SubscriptionUseCase,
		healthCheckers:      opts.HealthCheckers,
		logger:              opts.Logger,
	}

	server.setupRoutes()
	return server, nil
}

func (s *HTTPServerAdapter) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/state", s.getState)
		api.POST("/initialize", s.initialize)
		api.POST("/location/refresh", s.refreshLocation)
		api.POST("/weather/refresh", s.refreshWeather)
		api.DELETE("/location", s.clearLocation)
		api.DELETE("/weather", s.clearWeather)
		api.DELETE("/state", s.clearAll)

		api.GET("/weather", s.getWeather)

		api.POST("/subscriptions", s.subscribe)
		api.GET("/subscriptions/confirm/:token", s.confirmSubscription)
		api.GET("/subscriptions/unsubscribe/:token", s.unsubscribe)
	}

	s.router.GET("/health", s.getHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start begins serving HTTP requests. It blocks until the listener fails or
// Shutdown is called.
func (s *HTTPServerAdapter) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", ports.F("port", s.config.Port))

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting new requests and drains in-flight ones
func (s *HTTPServerAdapter) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// GetRouter returns the router for testing purposes
func (s *HTTPServerAdapter) GetRouter() *gin.Engine {
	return s.router
}

// HealthResponse aggregates component health checks
type HealthResponse struct {
	Status     string               `json:"status"`
	Components []ports.HealthStatus `json:"components"`
}

// getHealth handles GET /health requests
func (s *HTTPServerAdapter) getHealth(c *gin.Context) {
	response := HealthResponse{Status: "healthy"}

	for _, checker := range s.healthCheckers {
		status := checker.Check(c.Request.Context())
		response.Components = append(response.Components, status)
		if status.Status == "unhealthy" {
			response.Status = "unhealthy"
		} else if status.Status == "degraded" && response.Status == "healthy" {
			response.Status = "degraded"
		}
	}

	code := http.StatusOK
	if response.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}
