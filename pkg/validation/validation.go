package validation

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail validates email format
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// IsNotEmpty checks if string is not empty after trimming
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidLatitude checks latitude is within the WGS84 range
func IsValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// IsValidLongitude checks longitude is within the WGS84 range
func IsValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

// IsValidAccuracy checks a reported position accuracy in meters
func IsValidAccuracy(accuracyM float64) bool {
	return accuracyM >= 0
}

// IsValidFrequency validates alert subscription frequency
func IsValidFrequency(frequency string) bool {
	return frequency == "hourly" || frequency == "daily"
}

// TrimAndValidate trims string and validates it's not empty
func TrimAndValidate(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}
