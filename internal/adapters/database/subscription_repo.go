// Package database provides GORM-backed persistence adapters for alert
// subscriptions and confirmation tokens.
package database

import (
	"context"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"gorm.io/gorm"
)

// SubscriptionModel represents the database model for alert subscriptions.
// Region is the display name; the coordinate is what the notifier feeds to
// the weather pipeline.
type SubscriptionModel struct {
	ID        uint    `gorm:"primaryKey"`
	Email     string  `gorm:"index;not null"`
	Region    string  `gorm:"not null"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
	Frequency string  `gorm:"not null"`
	Confirmed bool    `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// SubscriptionRepositoryAdapter implements the SubscriptionRepository port using GORM
type SubscriptionRepositoryAdapter struct {
	db *gorm.DB
}

// NewSubscriptionRepositoryAdapter creates a new subscription repository adapter
func NewSubscriptionRepositoryAdapter(db *gorm.DB) ports.SubscriptionRepository {
	return &SubscriptionRepositoryAdapter{db: db}
}

// Save persists a subscription, creating it when it has no ID yet
func (r *SubscriptionRepositoryAdapter) Save(ctx context.Context, sub *ports.SubscriptionData) error {
	if sub == nil {
		return errors.NewValidationError("subscription cannot be nil")
	}

	model := r.dataToModel(sub)
	var result *gorm.DB

	if sub.ID == 0 {
		result = r.db.WithContext(ctx).Create(model)
		sub.ID = model.ID
	} else {
		result = r.db.WithContext(ctx).Save(model)
	}

	if result.Error != nil {
		return errors.NewDatabaseError("failed to save subscription", result.Error)
	}
	return nil
}

// FindByID retrieves a subscription by its ID
func (r *SubscriptionRepositoryAdapter) FindByID(ctx context.Context, id uint) (*ports.SubscriptionData, error) {
	if id == 0 {
		return nil, errors.NewValidationError("subscription ID cannot be zero")
	}

	var model SubscriptionModel
	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("subscription not found")
		}
		return nil, errors.NewDatabaseError("failed to find subscription by ID", result.Error)
	}

	return r.modelToData(&model), nil
}

// FindByEmailAndRegion retrieves a subscription by email and region
func (r *SubscriptionRepositoryAdapter) FindByEmailAndRegion(ctx context.Context, email, region string) (*ports.SubscriptionData, error) {
	if email == "" {
		return nil, errors.NewValidationError("email cannot be empty")
	}
	if region == "" {
		return nil, errors.NewValidationError("region cannot be empty")
	}

	var model SubscriptionModel
	result := r.db.WithContext(ctx).Where("email = ? AND region = ?", email, region).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("subscription not found")
		}
		return nil, errors.NewDatabaseError("failed to find subscription", result.Error)
	}

	return r.modelToData(&model), nil
}

// FindConfirmedByFrequency lists confirmed subscriptions for one notification frequency
func (r *SubscriptionRepositoryAdapter) FindConfirmedByFrequency(ctx context.Context, frequency string) ([]*ports.SubscriptionData, error) {
	if frequency == "" {
		return nil, errors.NewValidationError("frequency cannot be empty")
	}

	var models []SubscriptionModel
	result := r.db.WithContext(ctx).Where("frequency = ? AND confirmed = ?", frequency, true).Find(&models)
	if result.Error != nil {
		return nil, errors.NewDatabaseError("failed to list subscriptions", result.Error)
	}

	subs := make([]*ports.SubscriptionData, 0, len(models))
	for i := range models {
		subs = append(subs, r.modelToData(&models[i]))
	}
	return subs, nil
}

// Update modifies an existing subscription
func (r *SubscriptionRepositoryAdapter) Update(ctx context.Context, sub *ports.SubscriptionData) error {
	if sub == nil {
		return errors.NewValidationError("subscription cannot be nil")
	}
	if sub.ID == 0 {
		return errors.NewValidationError("subscription ID cannot be zero for update")
	}

	model := r.dataToModel(sub)
	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return errors.NewDatabaseError("failed to update subscription", result.Error)
	}
	return nil
}

// Delete removes a subscription
func (r *SubscriptionRepositoryAdapter) Delete(ctx context.Context, sub *ports.SubscriptionData) error {
	if sub == nil {
		return errors.NewValidationError("subscription cannot be nil")
	}
	if sub.ID == 0 {
		return errors.NewValidationError("subscription ID cannot be zero for delete")
	}

	if result := r.db.WithContext(ctx).Delete(&SubscriptionModel{}, sub.ID); result.Error != nil {
		return errors.NewDatabaseError("failed to delete subscription", result.Error)
	}
	return nil
}

func (r *SubscriptionRepositoryAdapter) dataToModel(sub *ports.SubscriptionData) *SubscriptionModel {
	return &SubscriptionModel{
		ID:        sub.ID,
		Email:     sub.Email,
		Region:    sub.Region,
		Latitude:  sub.Latitude,
		Longitude: sub.Longitude,
		Frequency: sub.Frequency,
		Confirmed: sub.Confirmed,
		CreatedAt: sub.CreatedAt,
		UpdatedAt: sub.UpdatedAt,
	}
}

func (r *SubscriptionRepositoryAdapter) modelToData(model *SubscriptionModel) *ports.SubscriptionData {
	return &ports.SubscriptionData{
		ID:        model.ID,
		Email:     model.Email,
		Region:    model.Region,
		Latitude:  model.Latitude,
		Longitude: model.Longitude,
		Frequency: model.Frequency,
		Confirmed: model.Confirmed,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
