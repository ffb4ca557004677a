// Package subscription implements alert subscriptions for weather updates.
// A subscription binds an email address to a region and its coordinate; the
// notifier later feeds that coordinate through the weather pipeline.
package subscription

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"agroalerta.app/pkg/errors"
	"agroalerta.app/pkg/validation"
	"github.com/google/uuid"
)

// Frequency represents how often a subscriber receives weather alerts
type Frequency int

const (
	FrequencyUnknown Frequency = iota
	FrequencyHourly
	FrequencyDaily
)

// String returns the string representation of the frequency
func (f Frequency) String() string {
	switch f {
	case FrequencyHourly:
		return "hourly"
	case FrequencyDaily:
		return "daily"
	default:
		return "unknown"
	}
}

// IsValid checks if the frequency is valid
func (f Frequency) IsValid() bool {
	return f == FrequencyHourly || f == FrequencyDaily
}

// FrequencyFromString converts string to Frequency enum
func FrequencyFromString(s string) Frequency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hourly":
		return FrequencyHourly
	case "daily":
		return FrequencyDaily
	default:
		return FrequencyUnknown
	}
}

// UnmarshalJSON implements json.Unmarshaler for Frequency
func (f *Frequency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed := FrequencyFromString(s)
	if !parsed.IsValid() {
		return fmt.Errorf("invalid frequency: %s", s)
	}
	*f = parsed
	return nil
}

// MarshalJSON implements json.Marshaler for Frequency
func (f Frequency) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalText implements encoding.TextUnmarshaler so gin can bind
// form values
func (f *Frequency) UnmarshalText(text []byte) error {
	parsed := FrequencyFromString(string(text))
	if !parsed.IsValid() {
		return fmt.Errorf("invalid frequency: %s", text)
	}
	*f = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for Frequency
func (f Frequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// TokenType represents the purpose of a subscription token
type TokenType int

const (
	TokenTypeUnknown TokenType = iota
	TokenTypeConfirmation
	TokenTypeUnsubscribe
)

// String returns the string representation of the token type
func (t TokenType) String() string {
	switch t {
	case TokenTypeConfirmation:
		return "confirmation"
	case TokenTypeUnsubscribe:
		return "unsubscribe"
	default:
		return "unknown"
	}
}

// IsValid checks if the token type is valid
func (t TokenType) IsValid() bool {
	return t == TokenTypeConfirmation || t == TokenTypeUnsubscribe
}

// TokenTypeFromString converts string to TokenType enum
func TokenTypeFromString(s string) TokenType {
	switch s {
	case "confirmation":
		return TokenTypeConfirmation
	case "unsubscribe":
		return TokenTypeUnsubscribe
	default:
		return TokenTypeUnknown
	}
}

// Subscription represents an alert subscription
type Subscription struct {
	ID        uint
	Email     string
	Region    string
	Latitude  float64
	Longitude float64
	Frequency Frequency
	Confirmed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Token represents a confirmation or unsubscribe token
type Token struct {
	ID             uint
	Token          string
	SubscriptionID uint
	Type           TokenType
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// NewToken creates a new random token for a subscription
func NewToken(subscriptionID uint, tokenType TokenType, expiresIn time.Duration) *Token {
	now := time.Now()
	return &Token{
		Token:          uuid.New().String(),
		SubscriptionID: subscriptionID,
		Type:           tokenType,
		ExpiresAt:      now.Add(expiresIn),
		CreatedAt:      now,
	}
}

// IsExpired checks if the token has expired
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// NewSubscription creates a new unconfirmed subscription
func NewSubscription(email, region string, lat, lng float64, frequency Frequency) *Subscription {
	now := time.Now()
	return &Subscription{
		Email:     strings.TrimSpace(email),
		Region:    strings.TrimSpace(region),
		Latitude:  lat,
		Longitude: lng,
		Frequency: frequency,
		Confirmed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsValid validates subscription data
func (s *Subscription) IsValid() error {
	if !validation.IsNotEmpty(s.Email) {
		return errors.NewValidationError("email cannot be empty")
	}
	if !validation.IsValidEmail(s.Email) {
		return errors.NewValidationError("invalid email format")
	}
	if !validation.IsNotEmpty(s.Region) {
		return errors.NewValidationError("region cannot be empty")
	}
	if !validation.IsValidLatitude(s.Latitude) {
		return errors.NewValidationError("latitude must be between -90 and 90")
	}
	if !validation.IsValidLongitude(s.Longitude) {
		return errors.NewValidationError("longitude must be between -180 and 180")
	}
	if !s.Frequency.IsValid() {
		return errors.NewValidationError("frequency must be hourly or daily")
	}
	return nil
}

// Confirm marks the subscription as confirmed
func (s *Subscription) Confirm() {
	s.Confirmed = true
	s.UpdatedAt = time.Now()
}

// IsConfirmed checks if the subscription is confirmed
func (s *Subscription) IsConfirmed() bool {
	return s.Confirmed
}

// IsExpired reports whether an unconfirmed subscription has outlived its
// 24-hour confirmation window. Confirmed subscriptions never expire.
func (s *Subscription) IsExpired() bool {
	if s.Confirmed {
		return false
	}
	return time.Since(s.CreatedAt) > 24*time.Hour
}
