package infrastructure

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetricsCollector implements the MetricsCollector port with
// Prometheus counters, exposed on /metrics by the HTTP server.
type PrometheusMetricsCollector struct {
	strategyAttempts *prometheus.CounterVec
	weatherAPICalls  *prometheus.CounterVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	autoRefreshes    prometheus.Counter
}

// NewPrometheusMetricsCollector creates a collector registered on the given
// registerer. Pass prometheus.DefaultRegisterer outside of tests.
func NewPrometheusMetricsCollector(reg prometheus.Registerer) *PrometheusMetricsCollector {
	factory := promauto.With(reg)

	return &PrometheusMetricsCollector{
		strategyAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "location_strategy_attempts_total",
			Help: "Location resolution strategy attempts by strategy and outcome",
		}, []string{"strategy", "success"}),
		weatherAPICalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_api_calls_total",
			Help: "Weather provider calls by endpoint and outcome",
		}, []string{"endpoint", "success"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "weather_cache_hits_total",
			Help: "Weather cache hits",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "weather_cache_misses_total",
			Help: "Weather cache misses",
		}),
		autoRefreshes: factory.NewCounter(prometheus.CounterOpts{
			Name: "weather_auto_refreshes_total",
			Help: "Automatic staleness-driven weather refreshes",
		}),
	}
}

func (m *PrometheusMetricsCollector) RecordStrategyAttempt(strategy string, success bool) {
	m.strategyAttempts.WithLabelValues(strategy, strconv.FormatBool(success)).Inc()
}

func (m *PrometheusMetricsCollector) RecordWeatherAPICall(endpoint string, success bool) {
	m.weatherAPICalls.WithLabelValues(endpoint, strconv.FormatBool(success)).Inc()
}

func (m *PrometheusMetricsCollector) RecordCacheHit() {
	m.cacheHits.Inc()
}

func (m *PrometheusMetricsCollector) RecordCacheMiss() {
	m.cacheMisses.Inc()
}

func (m *PrometheusMetricsCollector) RecordAutoRefresh() {
	m.autoRefreshes.Inc()
}
