package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Location resolution
	RemoteGeolocator RemoteGeolocator
	IPLocator        IPLocator
	PlacesRefiner    PlacesRefiner
	NativeGeolocator NativeGeolocator
	ReverseGeocoder  ReverseGeocoder

	// Weather
	WeatherProvider WeatherProvider
	WeatherCache    WeatherCache

	// Subscription
	SubscriptionRepository SubscriptionRepository
	TokenRepository        TokenRepository

	// Communication
	EmailProvider EmailProvider

	// Infrastructure
	ConfigProvider ConfigProvider
	Logger         Logger
	Metrics        MetricsCollector
}
