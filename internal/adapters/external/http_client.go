// Package external provides adapters for external services
// These adapters implement ports for geolocation, geocoding, weather and email providers.
package external

import (
	"net/http"
)

// HTTPClient interface for HTTP requests (for testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
