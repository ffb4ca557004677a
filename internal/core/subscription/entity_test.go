package subscription

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequency_FromString(t *testing.T) {
	assert.Equal(t, FrequencyHourly, FrequencyFromString("hourly"))
	assert.Equal(t, FrequencyDaily, FrequencyFromString("daily"))
	assert.Equal(t, FrequencyDaily, FrequencyFromString(" Daily "))
	assert.Equal(t, FrequencyUnknown, FrequencyFromString("weekly"))
}

func TestFrequency_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(FrequencyDaily)
	require.NoError(t, err)
	assert.Equal(t, `"daily"`, string(data))

	var f Frequency
	require.NoError(t, json.Unmarshal([]byte(`"hourly"`), &f))
	assert.Equal(t, FrequencyHourly, f)

	assert.Error(t, json.Unmarshal([]byte(`"weekly"`), &f))
}

func TestTokenType_Validation(t *testing.T) {
	assert.True(t, TokenTypeConfirmation.IsValid())
	assert.True(t, TokenTypeUnsubscribe.IsValid())
	assert.False(t, TokenTypeUnknown.IsValid())
	assert.Equal(t, TokenTypeUnsubscribe, TokenTypeFromString("unsubscribe"))
}

func TestNewToken_RandomAndExpiring(t *testing.T) {
	first := NewToken(1, TokenTypeConfirmation, time.Hour)
	second := NewToken(1, TokenTypeConfirmation, time.Hour)

	assert.NotEmpty(t, first.Token)
	assert.NotEqual(t, first.Token, second.Token)
	assert.False(t, first.IsExpired())

	expired := NewToken(1, TokenTypeConfirmation, -time.Minute)
	assert.True(t, expired.IsExpired())
}

func TestSubscription_IsValid(t *testing.T) {
	sub := NewSubscription("farmer@example.mz", "Maputo", -25.9692, 32.5732, FrequencyDaily)
	assert.NoError(t, sub.IsValid())

	tests := []struct {
		name   string
		mutate func(*Subscription)
	}{
		{"empty_email", func(s *Subscription) { s.Email = "" }},
		{"bad_email", func(s *Subscription) { s.Email = "not-an-email" }},
		{"empty_region", func(s *Subscription) { s.Region = "  " }},
		{"bad_latitude", func(s *Subscription) { s.Latitude = 91 }},
		{"bad_longitude", func(s *Subscription) { s.Longitude = -181 }},
		{"bad_frequency", func(s *Subscription) { s.Frequency = FrequencyUnknown }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := NewSubscription("farmer@example.mz", "Maputo", -25.9692, 32.5732, FrequencyDaily)
			tt.mutate(bad)
			assert.Error(t, bad.IsValid())
		})
	}
}

func TestSubscription_ConfirmationWindow(t *testing.T) {
	sub := NewSubscription("farmer@example.mz", "Maputo", -25.9692, 32.5732, FrequencyDaily)
	assert.False(t, sub.IsExpired())

	sub.CreatedAt = time.Now().Add(-25 * time.Hour)
	assert.True(t, sub.IsExpired())

	sub.Confirm()
	assert.True(t, sub.IsConfirmed())
	assert.False(t, sub.IsExpired())
}
