package external

import (
	"context"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
)

// UnavailableNativeGeolocator is the NativeGeolocator stub for server
// deployments, where no positioning hardware exists. The host environment
// selects it at wiring time instead of the adapters checking the environment
// themselves.
type UnavailableNativeGeolocator struct{}

// NewUnavailableNativeGeolocator creates the server-side stub
func NewUnavailableNativeGeolocator() ports.NativeGeolocator {
	return &UnavailableNativeGeolocator{}
}

func (g *UnavailableNativeGeolocator) Available() bool { return false }

func (g *UnavailableNativeGeolocator) CurrentPosition(context.Context, ports.PositionOptions) (*ports.Coordinate, error) {
	return nil, errors.NewPositionUnavailableError("native geolocation is not available on this host", nil)
}

// StaticNativeGeolocator reports a fixed position, for development and kiosk
// installations with a known site coordinate.
type StaticNativeGeolocator struct {
	latitude  float64
	longitude float64
	accuracyM float64
}

// NewStaticNativeGeolocator creates a geolocator pinned to one coordinate
func NewStaticNativeGeolocator(lat, lng, accuracyM float64) ports.NativeGeolocator {
	return &StaticNativeGeolocator{latitude: lat, longitude: lng, accuracyM: accuracyM}
}

func (g *StaticNativeGeolocator) Available() bool { return true }

func (g *StaticNativeGeolocator) CurrentPosition(context.Context, ports.PositionOptions) (*ports.Coordinate, error) {
	return &ports.Coordinate{
		Latitude:  g.latitude,
		Longitude: g.longitude,
		AccuracyM: g.accuracyM,
		Timestamp: time.Now().UnixMilli(),
		Source:    ports.SourceGPS,
	}, nil
}
