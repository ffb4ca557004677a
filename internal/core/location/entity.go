package location

import (
	"fmt"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/validation"
)

// Record combines a resolved coordinate with its reverse-geocoded address and
// a confidence score. A new resolution supersedes the previous Record; records
// are never merged or mutated in place.
type Record struct {
	Coordinate ports.Coordinate
	Address    ports.Address
	Confidence float64
}

// ValidateCoordinate enforces the coordinate invariants
func ValidateCoordinate(c *ports.Coordinate) error {
	if c == nil {
		return fmt.Errorf("coordinate cannot be nil")
	}
	if !validation.IsValidLatitude(c.Latitude) {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Latitude)
	}
	if !validation.IsValidLongitude(c.Longitude) {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Longitude)
	}
	if !validation.IsValidAccuracy(c.AccuracyM) {
		return fmt.Errorf("accuracy %f cannot be negative", c.AccuracyM)
	}
	return nil
}

// NewCoordinate constructs a coordinate stamped with the current time
func NewCoordinate(lat, lng, accuracyM float64, source ports.CoordinateSource) ports.Coordinate {
	return ports.Coordinate{
		Latitude:  lat,
		Longitude: lng,
		AccuracyM: accuracyM,
		Timestamp: time.Now().UnixMilli(),
		Source:    source,
	}
}

// Placeholder address values used when reverse geocoding is unavailable.
// These are the strings the UI renders for a degraded location.
const (
	placeholderCity  = "Localização"
	placeholderState = "Desconhecida"
)

// PlaceholderAddress builds the deterministic degraded address for a raw
// coordinate. Reverse-geocoding failure is never fatal to resolution; callers
// substitute this instead of propagating an error.
func PlaceholderAddress(lat, lng float64, country string) ports.Address {
	return ports.Address{
		Formatted: fmt.Sprintf("%.4f, %.4f", lat, lng),
		City:      placeholderCity,
		State:     placeholderState,
		Country:   country,
	}
}

// String returns a short description of the record for logging
func (r *Record) String() string {
	return fmt.Sprintf("%s (%.4f, %.4f) ±%.0fm confidence=%.2f",
		r.Coordinate.Source, r.Coordinate.Latitude, r.Coordinate.Longitude,
		r.Coordinate.AccuracyM, r.Confidence)
}
