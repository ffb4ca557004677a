package ports

import (
	"time"
)

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port int
}

// AppConfig represents application-level configuration
type AppConfig struct {
	BaseURL  string
	Language string
}

// LocationConfig represents location resolution configuration
type LocationConfig struct {
	GoogleAPIKey       string
	GeolocationBaseURL string
	GeocodingBaseURL   string
	PlacesBaseURL      string
	IPLookupBaseURL    string
	DefaultCountry     string
	FallbackLatitude   float64
	FallbackLongitude  float64
	RefineRadiusM      float64
	RequestTimeout     time.Duration
	EnableFallback     bool
}

// WeatherConfig represents weather provider configuration
type WeatherConfig struct {
	APIKey         string
	BaseURL        string
	Language       string
	RequestTimeout time.Duration
	EnableCache    bool
	CacheTTL       time.Duration
}

// RefreshConfig represents the orchestrator's staleness-driven refresh policy
type RefreshConfig struct {
	Interval     time.Duration
	PollInterval time.Duration
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string
}

// EmailConfig represents email configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromAddress  string
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Type  string
	Redis RedisConfig
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  int
	ReadTimeout  int
	WriteTimeout int
}

// SchedulerConfig represents the alert notification scheduler configuration
type SchedulerConfig struct {
	HourlyInterval int
	DailyInterval  int
}

// ConfigProvider defines the contract for configuration management
type ConfigProvider interface {
	GetAppConfig() AppConfig
	GetServerConfig() ServerConfig
	GetLocationConfig() LocationConfig
	GetWeatherConfig() WeatherConfig
	GetRefreshConfig() RefreshConfig
	GetDatabaseConfig() DatabaseConfig
	GetEmailConfig() EmailConfig
	GetCacheConfig() CacheConfig
	GetSchedulerConfig() SchedulerConfig
}

// Logger defines the contract for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a log field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// MetricsCollector defines the contract for metrics collection
type MetricsCollector interface {
	RecordStrategyAttempt(strategy string, success bool)
	RecordWeatherAPICall(endpoint string, success bool)
	RecordCacheHit()
	RecordCacheMiss()
	RecordAutoRefresh()
}
