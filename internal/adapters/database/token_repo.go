package database

import (
	"context"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"gorm.io/gorm"
)

// TokenModel represents the database model for confirmation and
// unsubscribe tokens.
type TokenModel struct {
	ID             uint      `gorm:"primaryKey"`
	Token          string    `gorm:"uniqueIndex;not null"`
	SubscriptionID uint      `gorm:"index;not null"`
	Type           string    `gorm:"not null"`
	ExpiresAt      time.Time `gorm:"not null"`
	CreatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (TokenModel) TableName() string {
	return "tokens"
}

// TokenRepositoryAdapter implements the TokenRepository port using GORM
type TokenRepositoryAdapter struct {
	db *gorm.DB
}

// NewTokenRepositoryAdapter creates a new token repository adapter
func NewTokenRepositoryAdapter(db *gorm.DB) ports.TokenRepository {
	return &TokenRepositoryAdapter{db: db}
}

// Save persists a token, creating it when it has no ID yet
func (r *TokenRepositoryAdapter) Save(ctx context.Context, token *ports.TokenData) error {
	if token == nil {
		return errors.NewValidationError("token cannot be nil")
	}

	model := r.dataToModel(token)
	var result *gorm.DB

	if token.ID == 0 {
		result = r.db.WithContext(ctx).Create(model)
		token.ID = model.ID
	} else {
		result = r.db.WithContext(ctx).Save(model)
	}

	if result.Error != nil {
		return errors.NewDatabaseError("failed to save token", result.Error)
	}
	return nil
}

// FindByToken retrieves a token by its value
func (r *TokenRepositoryAdapter) FindByToken(ctx context.Context, token string) (*ports.TokenData, error) {
	if token == "" {
		return nil, errors.NewValidationError("token cannot be empty")
	}

	var model TokenModel
	result := r.db.WithContext(ctx).Where("token = ?", token).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("token not found")
		}
		return nil, errors.NewDatabaseError("failed to find token", result.Error)
	}

	return r.modelToData(&model), nil
}

// Delete removes a token
func (r *TokenRepositoryAdapter) Delete(ctx context.Context, token *ports.TokenData) error {
	if token == nil {
		return errors.NewValidationError("token cannot be nil")
	}
	if token.ID == 0 {
		return errors.NewValidationError("token ID cannot be zero for delete")
	}

	if result := r.db.WithContext(ctx).Delete(&TokenModel{}, token.ID); result.Error != nil {
		return errors.NewDatabaseError("failed to delete token", result.Error)
	}
	return nil
}

// DeleteExpired removes all tokens past their expiry
func (r *TokenRepositoryAdapter) DeleteExpired(ctx context.Context) error {
	result := r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&TokenModel{})
	if result.Error != nil {
		return errors.NewDatabaseError("failed to delete expired tokens", result.Error)
	}
	return nil
}

func (r *TokenRepositoryAdapter) dataToModel(token *ports.TokenData) *TokenModel {
	return &TokenModel{
		ID:             token.ID,
		Token:          token.Token,
		SubscriptionID: token.SubscriptionID,
		Type:           token.Type,
		ExpiresAt:      token.ExpiresAt,
		CreatedAt:      token.CreatedAt,
	}
}

func (r *TokenRepositoryAdapter) modelToData(model *TokenModel) *ports.TokenData {
	return &ports.TokenData{
		ID:             model.ID,
		Token:          model.Token,
		SubscriptionID: model.SubscriptionID,
		Type:           model.Type,
		ExpiresAt:      model.ExpiresAt,
		CreatedAt:      model.CreatedAt,
	}
}
