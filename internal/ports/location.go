package ports

import (
	"context"
	"time"
)

// CoordinateSource identifies the strategy that produced a coordinate
type CoordinateSource int

const (
	SourceUnknown CoordinateSource = iota
	SourceGPS
	SourceNetwork
	SourcePassive
	SourceRemoteGeolocation
	SourcePlacesRefined
	SourceIP
	SourceFallback
)

// String returns the string representation of a coordinate source
func (s CoordinateSource) String() string {
	switch s {
	case SourceGPS:
		return "gps"
	case SourceNetwork:
		return "network"
	case SourcePassive:
		return "passive"
	case SourceRemoteGeolocation:
		return "remote_geolocation"
	case SourcePlacesRefined:
		return "places_refined"
	case SourceIP:
		return "ip"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Coordinate is a resolved position with accuracy and provenance.
// Immutable once constructed; a new resolution produces a new Coordinate.
type Coordinate struct {
	Latitude  float64
	Longitude float64
	AccuracyM float64
	Timestamp int64 // epoch milliseconds
	Source    CoordinateSource
}

// Address is a human-readable location. It may carry placeholder values when
// reverse geocoding was unavailable; that is a degraded state, not an error.
type Address struct {
	Formatted  string
	City       string
	State      string
	Country    string
	PostalCode string
}

// Place is a nearby known place returned by the refinement provider
type Place struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// PositionOptions mirrors the native geolocation API options
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxCacheAge  time.Duration
}

// RemoteGeolocator resolves a coordinate from ambient network signal.
// Browser-sandboxed callers cannot supply WiFi or cell data, so in practice
// the request carries an IP hint only.
type RemoteGeolocator interface {
	Geolocate(ctx context.Context) (*Coordinate, error)
}

// IPLocator resolves a coarse coordinate from the caller's public IP
type IPLocator interface {
	Locate(ctx context.Context) (*Coordinate, error)
}

// PlacesRefiner snaps a coarse coordinate to a nearby known place
type PlacesRefiner interface {
	NearbyPlaces(ctx context.Context, lat, lng, radiusM float64) ([]Place, error)
}

// NativeGeolocator wraps the host runtime's positioning capability. Server
// deployments install a stub that always reports position unavailable.
type NativeGeolocator interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (*Coordinate, error)
	Available() bool
}

// ReverseGeocoder turns a coordinate into a structured address
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error)
}
