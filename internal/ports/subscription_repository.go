package ports

import (
	"context"
	"time"
)

// SubscriptionData represents subscription information at the port boundary
type SubscriptionData struct {
	ID        uint
	Email     string
	Region    string
	Latitude  float64
	Longitude float64
	Frequency string
	Confirmed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenData represents token information at the port boundary
type TokenData struct {
	ID             uint
	Token          string
	SubscriptionID uint
	Type           string
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// SubscriptionRepository defines the contract for subscription persistence
type SubscriptionRepository interface {
	Save(ctx context.Context, sub *SubscriptionData) error
	FindByID(ctx context.Context, id uint) (*SubscriptionData, error)
	FindByEmailAndRegion(ctx context.Context, email, region string) (*SubscriptionData, error)
	FindConfirmedByFrequency(ctx context.Context, frequency string) ([]*SubscriptionData, error)
	Update(ctx context.Context, sub *SubscriptionData) error
	Delete(ctx context.Context, sub *SubscriptionData) error
}

// TokenRepository defines the contract for token persistence
type TokenRepository interface {
	Save(ctx context.Context, token *TokenData) error
	FindByToken(ctx context.Context, token string) (*TokenData, error)
	Delete(ctx context.Context, token *TokenData) error
	DeleteExpired(ctx context.Context) error
}
