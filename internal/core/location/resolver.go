package location

import (
	"context"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
)

// Resolver implements Chain of Responsibility over coordinate strategies:
// each strategy is tried in priority order under its own timeout, and the
// first success short-circuits the chain. When every strategy fails the
// resolver degrades to the configured fallback coordinate instead of failing
// the caller, unless fallback is disabled.
type Resolver struct {
	strategies     []Strategy
	fallbackLat    float64
	fallbackLng    float64
	enableFallback bool
	logger         ports.Logger
	metrics        ports.MetricsCollector
}

// ResolverConfig holds configuration for creating the resolver
type ResolverConfig struct {
	Strategies     []Strategy
	FallbackLat    float64
	FallbackLng    float64
	EnableFallback bool
	Logger         ports.Logger
	Metrics        ports.MetricsCollector
}

// Resolution is the outcome of a resolve attempt. LastError carries the most
// recent strategy failure when the chain had to degrade; it is set alongside
// a usable coordinate when UsedFallback is true.
type Resolution struct {
	Coordinate   ports.Coordinate
	UsedFallback bool
	LastError    error
}

// Accuracy attributed to the fixed fallback coordinate. Deliberately huge:
// it says "somewhere around the capital".
const fallbackAccuracyM = 50000

// NewResolver creates a coordinate resolver
func NewResolver(config ResolverConfig) (*Resolver, error) {
	if len(config.Strategies) == 0 && !config.EnableFallback {
		return nil, errors.NewValidationError("resolver needs at least one strategy or the fallback enabled")
	}
	if config.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &Resolver{
		strategies:     config.Strategies,
		fallbackLat:    config.FallbackLat,
		fallbackLng:    config.FallbackLng,
		enableFallback: config.EnableFallback,
		logger:         config.Logger,
		metrics:        config.Metrics,
	}, nil
}

// Resolve tries each strategy in order and returns the best available
// coordinate. It completes within the sum of the configured strategy
// timeouts. An error is returned only when all strategies fail and the
// fallback is disabled.
func (r *Resolver) Resolve(ctx context.Context) (*Resolution, error) {
	var lastErr error

	for i, strategy := range r.strategies {
		r.logger.Debug("Trying location strategy",
			ports.F("strategy", strategy.Name()),
			ports.F("attempt", i+1))

		coord, err := r.runStrategy(ctx, strategy)
		if err == nil {
			r.recordAttempt(strategy.Name(), true)
			r.logger.Info("Location strategy succeeded",
				ports.F("strategy", strategy.Name()),
				ports.F("source", coord.Source.String()),
				ports.F("accuracy_m", coord.AccuracyM))
			return &Resolution{Coordinate: *coord}, nil
		}

		lastErr = err
		r.recordAttempt(strategy.Name(), false)
		r.logger.Warn("Location strategy failed, trying next",
			ports.F("strategy", strategy.Name()),
			ports.F("error", err.Error()))

		// A cancelled parent context dooms every remaining strategy too.
		if ctx.Err() != nil {
			break
		}
	}

	if !r.enableFallback {
		if lastErr == nil {
			lastErr = errors.NewPositionUnavailableError("no location strategies configured", nil)
		}
		return nil, lastErr
	}

	r.logger.Warn("All location strategies failed, using fallback coordinate",
		ports.F("strategies_tried", len(r.strategies)),
		ports.F("fallback_lat", r.fallbackLat),
		ports.F("fallback_lng", r.fallbackLng))

	fallback := ports.Coordinate{
		Latitude:  r.fallbackLat,
		Longitude: r.fallbackLng,
		AccuracyM: fallbackAccuracyM,
		Timestamp: time.Now().UnixMilli(),
		Source:    ports.SourceFallback,
	}
	return &Resolution{
		Coordinate:   fallback,
		UsedFallback: true,
		LastError:    lastErr,
	}, nil
}

// runStrategy executes one strategy under its own timeout and maps a
// deadline hit to the Timeout error kind.
func (r *Resolver) runStrategy(ctx context.Context, strategy Strategy) (*ports.Coordinate, error) {
	timeout := strategy.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	coord, err := strategy.Resolve(attemptCtx)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded {
			return nil, errors.NewTimeoutError("location strategy exceeded its timeout", err)
		}
		return nil, err
	}
	return coord, nil
}

func (r *Resolver) recordAttempt(strategy string, success bool) {
	if r.metrics != nil {
		r.metrics.RecordStrategyAttempt(strategy, success)
	}
}
