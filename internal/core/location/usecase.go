package location

import (
	"context"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
)

// CoordinateResolver is the part of the resolver the use case depends on
type CoordinateResolver interface {
	Resolve(ctx context.Context) (*Resolution, error)
}

// UseCase combines coordinate resolution, reverse geocoding and confidence
// scoring into full location records.
type UseCase struct {
	resolver CoordinateResolver
	geocoder ports.ReverseGeocoder
	config   ports.ConfigProvider
	logger   ports.Logger
}

// UseCaseDependencies holds dependencies for creating the location use case
type UseCaseDependencies struct {
	Resolver CoordinateResolver
	Geocoder ports.ReverseGeocoder
	Config   ports.ConfigProvider
	Logger   ports.Logger
}

// Outcome is a resolved location record plus degradation detail for the
// orchestrator: LastError is non-nil when the record rests on the fallback
// coordinate.
type Outcome struct {
	Record       *Record
	UsedFallback bool
	LastError    error
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Resolver == nil {
		return nil, errors.NewValidationError("coordinate resolver is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		resolver: deps.Resolver,
		geocoder: deps.Geocoder,
		config:   deps.Config,
		logger:   deps.Logger,
	}, nil
}

// ResolveLocation produces a fresh Record. The error return is non-nil only
// when resolution failed outright and the fallback was disabled.
func (uc *UseCase) ResolveLocation(ctx context.Context) (*Outcome, error) {
	resolution, err := uc.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	coord := resolution.Coordinate
	address := uc.resolveAddress(ctx, coord.Latitude, coord.Longitude)

	record := &Record{
		Coordinate: coord,
		Address:    address,
		Confidence: Confidence(coord.Source, coord.AccuracyM),
	}

	uc.logger.Info("Location resolved",
		ports.F("location", record.String()),
		ports.F("used_fallback", resolution.UsedFallback))

	return &Outcome{
		Record:       record,
		UsedFallback: resolution.UsedFallback,
		LastError:    resolution.LastError,
	}, nil
}

// resolveAddress reverse geocodes a coordinate, absorbing every failure into
// the deterministic placeholder address. Geocoding problems are logged at
// debug level only; they are an expected degraded state.
func (uc *UseCase) resolveAddress(ctx context.Context, lat, lng float64) ports.Address {
	country := uc.config.GetLocationConfig().DefaultCountry

	if uc.geocoder == nil {
		return PlaceholderAddress(lat, lng, country)
	}

	address, err := uc.geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil || address == nil {
		if err != nil {
			uc.logger.Debug("Reverse geocoding unavailable, using placeholder address",
				ports.F("error", err.Error()))
		}
		return PlaceholderAddress(lat, lng, country)
	}

	if address.Country == "" {
		address.Country = country
	}
	return *address
}
