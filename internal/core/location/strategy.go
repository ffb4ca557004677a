package location

import (
	"context"
	"math"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"github.com/jonboulle/clockwork"
)

// Strategy is one named method of obtaining a coordinate. Strategies are
// tried in priority order by the Resolver; each runs under its own timeout
// and a failure falls through to the next strategy.
type Strategy interface {
	Name() string
	Timeout() time.Duration
	Resolve(ctx context.Context) (*ports.Coordinate, error)
}

// RetryProfile is one attempt of the native geolocation cascade. The retry
// policy is pure data so tests can exercise the execution loop separately.
type RetryProfile struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxCacheAge  time.Duration
}

// DefaultNativeProfiles is the standalone native cascade: a fast
// high-accuracy attempt first, then progressively more patient attempts
// accepting older cached fixes.
var DefaultNativeProfiles = []RetryProfile{
	{HighAccuracy: true, Timeout: 15 * time.Second, MaxCacheAge: 5 * time.Minute},
	{HighAccuracy: false, Timeout: 45 * time.Second, MaxCacheAge: 10 * time.Minute},
	{HighAccuracy: false, Timeout: 60 * time.Second, MaxCacheAge: 15 * time.Minute},
	{HighAccuracy: false, Timeout: 30 * time.Second, MaxCacheAge: 30 * time.Minute},
}

const cascadeAttemptPause = time.Second

// remoteGeolocationStrategy asks the network-based geolocation endpoint.
// The request carries an IP hint only; in practice its accuracy is close to
// an IP lookup despite the higher base confidence.
type remoteGeolocationStrategy struct {
	geolocator ports.RemoteGeolocator
	timeout    time.Duration
}

// NewRemoteGeolocationStrategy creates the highest-priority strategy
func NewRemoteGeolocationStrategy(geolocator ports.RemoteGeolocator, timeout time.Duration) Strategy {
	return &remoteGeolocationStrategy{geolocator: geolocator, timeout: timeout}
}

func (s *remoteGeolocationStrategy) Name() string { return "remote_geolocation" }

func (s *remoteGeolocationStrategy) Timeout() time.Duration { return s.timeout }

func (s *remoteGeolocationStrategy) Resolve(ctx context.Context) (*ports.Coordinate, error) {
	coord, err := s.geolocator.Geolocate(ctx)
	if err != nil {
		return nil, err
	}
	if err := ValidateCoordinate(coord); err != nil {
		return nil, errors.NewProviderError("remote geolocation returned invalid coordinate", err)
	}
	return coord, nil
}

// ipLookupStrategy resolves a coarse coordinate from the public IP, then
// optionally snaps it to a nearby known place to improve apparent accuracy.
type ipLookupStrategy struct {
	locator       ports.IPLocator
	refiner       ports.PlacesRefiner
	refineRadiusM float64
	timeout       time.Duration
}

// NewIPLookupStrategy creates the IP-based strategy. The refiner may be nil
// when the places capability is unconfigured.
func NewIPLookupStrategy(locator ports.IPLocator, refiner ports.PlacesRefiner, refineRadiusM float64, timeout time.Duration) Strategy {
	return &ipLookupStrategy{
		locator:       locator,
		refiner:       refiner,
		refineRadiusM: refineRadiusM,
		timeout:       timeout,
	}
}

func (s *ipLookupStrategy) Name() string { return "ip_lookup" }

func (s *ipLookupStrategy) Timeout() time.Duration { return s.timeout }

func (s *ipLookupStrategy) Resolve(ctx context.Context) (*ports.Coordinate, error) {
	coord, err := s.locator.Locate(ctx)
	if err != nil {
		return nil, err
	}
	if err := ValidateCoordinate(coord); err != nil {
		return nil, errors.NewProviderError("ip lookup returned invalid coordinate", err)
	}

	if refined := refineWithPlaces(ctx, s.refiner, coord, s.refineRadiusM); refined != nil {
		return refined, nil
	}
	return coord, nil
}

// enhancedNativeStrategy takes a quick low-accuracy native reading and tries
// to refine it via the places capability, keeping the raw reading when
// refinement is unavailable or fails.
type enhancedNativeStrategy struct {
	native        ports.NativeGeolocator
	refiner       ports.PlacesRefiner
	refineRadiusM float64
}

// Quick native read: short timeout, generous cache acceptance.
var enhancedNativeOptions = ports.PositionOptions{
	HighAccuracy: false,
	Timeout:      7 * time.Second,
	MaxCacheAge:  10 * time.Minute,
}

// NewEnhancedNativeStrategy creates the refined-native strategy
func NewEnhancedNativeStrategy(native ports.NativeGeolocator, refiner ports.PlacesRefiner, refineRadiusM float64) Strategy {
	return &enhancedNativeStrategy{native: native, refiner: refiner, refineRadiusM: refineRadiusM}
}

func (s *enhancedNativeStrategy) Name() string { return "enhanced_native" }

func (s *enhancedNativeStrategy) Timeout() time.Duration {
	return enhancedNativeOptions.Timeout + 5*time.Second
}

func (s *enhancedNativeStrategy) Resolve(ctx context.Context) (*ports.Coordinate, error) {
	if !s.native.Available() {
		return nil, errors.NewPositionUnavailableError("native geolocation not available in this environment", nil)
	}

	coord, err := s.native.CurrentPosition(ctx, enhancedNativeOptions)
	if err != nil {
		return nil, err
	}
	if err := ValidateCoordinate(coord); err != nil {
		return nil, errors.NewPositionUnavailableError("native geolocation returned invalid coordinate", err)
	}

	if refined := refineWithPlaces(ctx, s.refiner, coord, s.refineRadiusM); refined != nil {
		return refined, nil
	}
	return coord, nil
}

// nativeCascadeStrategy runs the standalone retry cascade over the native
// positioning capability, used when the provider APIs are all unavailable.
type nativeCascadeStrategy struct {
	native   ports.NativeGeolocator
	profiles []RetryProfile
	clock    clockwork.Clock
}

// NewNativeCascadeStrategy creates the cascade strategy. A nil profile list
// selects DefaultNativeProfiles; the clock is injectable for tests.
func NewNativeCascadeStrategy(native ports.NativeGeolocator, profiles []RetryProfile, clock clockwork.Clock) Strategy {
	if profiles == nil {
		profiles = DefaultNativeProfiles
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &nativeCascadeStrategy{native: native, profiles: profiles, clock: clock}
}

func (s *nativeCascadeStrategy) Name() string { return "native_cascade" }

func (s *nativeCascadeStrategy) Timeout() time.Duration {
	var total time.Duration
	for _, p := range s.profiles {
		total += p.Timeout + cascadeAttemptPause
	}
	return total + 5*time.Second
}

func (s *nativeCascadeStrategy) Resolve(ctx context.Context) (*ports.Coordinate, error) {
	if !s.native.Available() {
		return nil, errors.NewPositionUnavailableError("native geolocation not available in this environment", nil)
	}

	var lastErr error
	for i, profile := range s.profiles {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.NewTimeoutError("native cascade aborted", ctx.Err())
			case <-s.clock.After(cascadeAttemptPause):
			}
		}

		coord, err := s.native.CurrentPosition(ctx, ports.PositionOptions{
			HighAccuracy: profile.HighAccuracy,
			Timeout:      profile.Timeout,
			MaxCacheAge:  profile.MaxCacheAge,
		})
		if err == nil {
			if vErr := ValidateCoordinate(coord); vErr == nil {
				return coord, nil
			}
			err = errors.NewPositionUnavailableError("native geolocation returned invalid coordinate", nil)
		}
		lastErr = err

		// Permission denial will not change between profiles.
		if errors.IsType(err, errors.ErrorTypePermissionDenied) {
			return nil, err
		}
	}

	return nil, errors.NewPositionUnavailableError("all native geolocation attempts failed", lastErr)
}

// refineWithPlaces snaps a coordinate to the nearest known place within
// radiusM. Returns nil when refinement is unavailable, fails, or finds
// nothing close enough; callers keep the original coordinate in that case.
func refineWithPlaces(ctx context.Context, refiner ports.PlacesRefiner, coord *ports.Coordinate, radiusM float64) *ports.Coordinate {
	if refiner == nil {
		return nil
	}

	places, err := refiner.NearbyPlaces(ctx, coord.Latitude, coord.Longitude, radiusM)
	if err != nil || len(places) == 0 {
		return nil
	}

	nearest := places[0]
	nearestDist := haversineM(coord.Latitude, coord.Longitude, nearest.Latitude, nearest.Longitude)
	for _, p := range places[1:] {
		if d := haversineM(coord.Latitude, coord.Longitude, p.Latitude, p.Longitude); d < nearestDist {
			nearest, nearestDist = p, d
		}
	}
	if nearestDist > radiusM {
		return nil
	}

	refined := ports.Coordinate{
		Latitude:  nearest.Latitude,
		Longitude: nearest.Longitude,
		AccuracyM: radiusM / 2,
		Timestamp: coord.Timestamp,
		Source:    ports.SourcePlacesRefined,
	}
	return &refined
}

const earthRadiusM = 6371000

// haversineM computes the great-circle distance between two points in meters
func haversineM(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
