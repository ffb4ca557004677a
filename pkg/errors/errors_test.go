package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewTimeoutError("geolocation attempt exceeded deadline", nil)
	assert.Equal(t, "TIMEOUT: geolocation attempt exceeded deadline", err.Error())

	cause := fmt.Errorf("dial tcp: i/o timeout")
	wrapped := NewNetworkError("failed to call weather provider", cause)
	assert.Contains(t, wrapped.Error(), "NETWORK_ERROR")
	assert.Contains(t, wrapped.Error(), "caused by: dial tcp: i/o timeout")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := NewProviderError("provider returned status 500", cause)

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrorTypeProvider, appErr.Type)
}

func TestErrorType_String(t *testing.T) {
	cases := []struct {
		errType ErrorType
		want    string
	}{
		{ErrorTypePermissionDenied, "PERMISSION_DENIED"},
		{ErrorTypePositionUnavailable, "POSITION_UNAVAILABLE"},
		{ErrorTypeTimeout, "TIMEOUT"},
		{ErrorTypeNetwork, "NETWORK_ERROR"},
		{ErrorTypeProvider, "PROVIDER_ERROR"},
		{ErrorTypeLocationInvalid, "LOCATION_INVALID"},
		{ErrorTypeRateLimited, "RATE_LIMITED"},
		{ErrorTypeConfiguration, "CONFIGURATION_ERROR"},
		{ErrorType(999), "UNKNOWN_ERROR"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.errType.String())
	}
}

func TestErrorType_Retryable(t *testing.T) {
	assert.True(t, ErrorTypeTimeout.Retryable())
	assert.True(t, ErrorTypeNetwork.Retryable())
	assert.True(t, ErrorTypePositionUnavailable.Retryable())
	assert.True(t, ErrorTypeRateLimited.Retryable())

	assert.False(t, ErrorTypeConfiguration.Retryable())
	assert.False(t, ErrorTypeValidation.Retryable())
	assert.False(t, ErrorTypePermissionDenied.Retryable())
	assert.False(t, ErrorTypeLocationInvalid.Retryable())
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeRateLimited, TypeOf(NewRateLimitedError("too many requests")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(fmt.Errorf("plain error")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(nil))
}

func TestTypeCheckers(t *testing.T) {
	assert.True(t, IsTimeoutError(NewTimeoutError("deadline", nil)))
	assert.True(t, IsConfigurationError(NewConfigurationError("missing API key", nil)))
	assert.True(t, IsRateLimitedError(NewRateLimitedError("429")))
	assert.True(t, IsNotFoundError(NewNotFoundError("missing")))
	assert.False(t, IsTimeoutError(NewNetworkError("net", nil)))
	assert.False(t, IsValidationError(nil))
}
