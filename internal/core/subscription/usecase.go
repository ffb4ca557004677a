package subscription

import (
	"context"
	"fmt"
	"time"

	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"agroalerta.app/pkg/validation"
)

const (
	confirmationTokenTTL = 24 * time.Hour
	unsubscribeTokenTTL  = 365 * 24 * time.Hour
)

// UseCase implements subscription management
type UseCase struct {
	subscriptionRepo ports.SubscriptionRepository
	tokenRepo        ports.TokenRepository
	emailProvider    ports.EmailProvider
	config           ports.ConfigProvider
	logger           ports.Logger
}

// UseCaseDependencies holds the dependencies for the subscription use case
type UseCaseDependencies struct {
	SubscriptionRepo ports.SubscriptionRepository
	TokenRepo        ports.TokenRepository
	EmailProvider    ports.EmailProvider
	Config           ports.ConfigProvider
	Logger           ports.Logger
}

// SubscribeParams holds the input for a new subscription
type SubscribeParams struct {
	Email     string
	Region    string
	Latitude  float64
	Longitude float64
	Frequency Frequency
}

type ConfirmParams struct {
	Token string
}

type UnsubscribeParams struct {
	Token string
}

// NewUseCase creates a subscription use case
func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.SubscriptionRepo == nil {
		return nil, errors.NewValidationError("subscription repository is required")
	}
	if deps.TokenRepo == nil {
		return nil, errors.NewValidationError("token repository is required")
	}
	if deps.EmailProvider == nil {
		return nil, errors.NewValidationError("email provider is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		subscriptionRepo: deps.SubscriptionRepo,
		tokenRepo:        deps.TokenRepo,
		emailProvider:    deps.EmailProvider,
		config:           deps.Config,
		logger:           deps.Logger,
	}, nil
}

func (uc *UseCase) validateSubscribeParams(params SubscribeParams) error {
	if !validation.IsNotEmpty(params.Email) {
		return errors.NewValidationError("email is required")
	}
	if !validation.IsValidEmail(params.Email) {
		return errors.NewValidationError("invalid email format")
	}
	if !validation.IsNotEmpty(params.Region) {
		return errors.NewValidationError("region is required")
	}
	if !validation.IsValidLatitude(params.Latitude) {
		return errors.NewValidationError("latitude must be between -90 and 90")
	}
	if !validation.IsValidLongitude(params.Longitude) {
		return errors.NewValidationError("longitude must be between -180 and 180")
	}
	if !params.Frequency.IsValid() {
		return errors.NewValidationError("invalid frequency")
	}
	return nil
}

// Subscribe registers an email for weather alerts at a coordinate and sends
// the confirmation email. Re-subscribing while unconfirmed updates the
// pending subscription instead of duplicating it.
func (uc *UseCase) Subscribe(ctx context.Context, params SubscribeParams) error {
	if err := uc.validateSubscribeParams(params); err != nil {
		return err
	}

	uc.logger.Debug("Processing subscription",
		ports.F("email", params.Email),
		ports.F("region", params.Region),
		ports.F("frequency", params.Frequency))

	existing, err := uc.subscriptionRepo.FindByEmailAndRegion(ctx, params.Email, params.Region)
	if err != nil && !errors.IsNotFoundError(err) {
		return fmt.Errorf("check existing subscription: %w", err)
	}

	if existing != nil {
		sub := uc.convertFromPortsSubscription(existing)
		if sub.IsConfirmed() {
			return errors.NewAlreadyExistsError("already subscribed")
		}

		if !sub.IsExpired() {
			uc.logger.Debug("Updating existing unconfirmed subscription",
				ports.F("subscriptionID", existing.ID),
				ports.F("newFrequency", params.Frequency))

			existing.Frequency = params.Frequency.String()
			existing.Latitude = params.Latitude
			existing.Longitude = params.Longitude
			existing.UpdatedAt = time.Now()

			if err := uc.subscriptionRepo.Update(ctx, existing); err != nil {
				return fmt.Errorf("update existing subscription: %w", err)
			}

			if err := uc.sendConfirmationEmail(ctx, uc.convertFromPortsSubscription(existing)); err != nil {
				uc.logger.Error("Failed to send confirmation email for updated subscription",
					ports.F("error", err),
					ports.F("email", params.Email))
				return fmt.Errorf("send confirmation email: %w", err)
			}
			return nil
		}

		// Past the confirmation window the pending row is dead weight.
		if err := uc.subscriptionRepo.Delete(ctx, existing); err != nil {
			uc.logger.Warn("Failed to delete expired subscription", ports.F("error", err))
		}
	}

	sub := NewSubscription(params.Email, params.Region, params.Latitude, params.Longitude, params.Frequency)
	subData := uc.convertToPortsSubscription(sub)
	if err := uc.subscriptionRepo.Save(ctx, subData); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	sub.ID = subData.ID

	if err := uc.sendConfirmationEmail(ctx, sub); err != nil {
		uc.logger.Error("Failed to send confirmation email",
			ports.F("error", err),
			ports.F("email", params.Email))
		return fmt.Errorf("send confirmation email: %w", err)
	}

	uc.logger.Debug("Subscription created",
		ports.F("email", params.Email),
		ports.F("region", params.Region))
	return nil
}

// ConfirmSubscription activates a subscription from its confirmation token
func (uc *UseCase) ConfirmSubscription(ctx context.Context, params ConfirmParams) error {
	if params.Token == "" {
		return errors.NewValidationError("token is required")
	}

	tokenData, err := uc.tokenRepo.FindByToken(ctx, params.Token)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return errors.NewTokenError("invalid or expired confirmation token")
		}
		return fmt.Errorf("find token: %w", err)
	}

	if time.Now().After(tokenData.ExpiresAt) {
		return errors.NewTokenError("invalid or expired confirmation token")
	}
	if tokenData.Type != TokenTypeConfirmation.String() {
		return errors.NewTokenError("invalid token type")
	}

	subData, err := uc.subscriptionRepo.FindByID(ctx, tokenData.SubscriptionID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return errors.NewNotFoundError("subscription not found")
		}
		return fmt.Errorf("find subscription: %w", err)
	}

	sub := uc.convertFromPortsSubscription(subData)
	if sub.IsConfirmed() {
		return errors.NewAlreadyExistsError("subscription is already confirmed")
	}

	sub.Confirm()
	if err := uc.subscriptionRepo.Update(ctx, uc.convertToPortsSubscription(sub)); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	if err := uc.tokenRepo.Delete(ctx, tokenData); err != nil {
		uc.logger.Warn("Failed to delete confirmation token", ports.F("error", err))
	}

	if err := uc.sendWelcomeEmail(ctx, sub); err != nil {
		uc.logger.Warn("Failed to send welcome email", ports.F("error", err))
	}

	uc.logger.Debug("Subscription confirmed",
		ports.F("email", sub.Email),
		ports.F("region", sub.Region))
	return nil
}

// Unsubscribe removes a subscription from its unsubscribe token
func (uc *UseCase) Unsubscribe(ctx context.Context, params UnsubscribeParams) error {
	if params.Token == "" {
		return errors.NewValidationError("token is required")
	}

	tokenData, err := uc.tokenRepo.FindByToken(ctx, params.Token)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return errors.NewTokenError("invalid unsubscribe token")
		}
		return fmt.Errorf("find token: %w", err)
	}

	if time.Now().After(tokenData.ExpiresAt) {
		return errors.NewTokenError("invalid unsubscribe token")
	}
	if tokenData.Type != TokenTypeUnsubscribe.String() {
		return errors.NewTokenError("invalid token type")
	}

	subData, err := uc.subscriptionRepo.FindByID(ctx, tokenData.SubscriptionID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return errors.NewNotFoundError("subscription not found")
		}
		return fmt.Errorf("find subscription: %w", err)
	}

	if err := uc.subscriptionRepo.Delete(ctx, subData); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if err := uc.tokenRepo.Delete(ctx, tokenData); err != nil {
		uc.logger.Warn("Failed to delete unsubscribe token", ports.F("error", err))
	}

	sub := uc.convertFromPortsSubscription(subData)
	if err := uc.sendUnsubscribeConfirmationEmail(ctx, sub); err != nil {
		uc.logger.Warn("Failed to send unsubscribe confirmation email", ports.F("error", err))
	}

	uc.logger.Debug("Unsubscribed",
		ports.F("email", sub.Email),
		ports.F("region", sub.Region))
	return nil
}

// GetSubscriptionsForUpdates lists confirmed subscriptions for one frequency
func (uc *UseCase) GetSubscriptionsForUpdates(ctx context.Context, frequency Frequency) ([]*Subscription, error) {
	if !frequency.IsValid() {
		return nil, errors.NewValidationError("invalid frequency")
	}

	subsData, err := uc.subscriptionRepo.FindConfirmedByFrequency(ctx, frequency.String())
	if err != nil {
		return nil, fmt.Errorf("list subscriptions for frequency %s: %w", frequency, err)
	}

	subs := make([]*Subscription, len(subsData))
	for i, data := range subsData {
		subs[i] = uc.convertFromPortsSubscription(data)
	}
	return subs, nil
}

func (uc *UseCase) createToken(ctx context.Context, subscriptionID uint, tokenType TokenType, ttl time.Duration) (*Token, error) {
	token := NewToken(subscriptionID, tokenType, ttl)
	tokenData := &ports.TokenData{
		Token:          token.Token,
		SubscriptionID: token.SubscriptionID,
		Type:           token.Type.String(),
		ExpiresAt:      token.ExpiresAt,
		CreatedAt:      token.CreatedAt,
	}
	if err := uc.tokenRepo.Save(ctx, tokenData); err != nil {
		return nil, fmt.Errorf("save %s token: %w", tokenType, err)
	}
	token.ID = tokenData.ID
	return token, nil
}

func (uc *UseCase) sendConfirmationEmail(ctx context.Context, sub *Subscription) error {
	token, err := uc.createToken(ctx, sub.ID, TokenTypeConfirmation, confirmationTokenTTL)
	if err != nil {
		return err
	}

	params := ports.EmailParams{
		To:      sub.Email,
		Subject: "Confirme a sua subscrição de alertas meteorológicos",
		Body:    uc.buildConfirmationEmailBody(sub, token.Token),
		IsHTML:  true,
	}
	if err := uc.emailProvider.SendEmail(ctx, params); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}

func (uc *UseCase) sendWelcomeEmail(ctx context.Context, sub *Subscription) error {
	token, err := uc.createToken(ctx, sub.ID, TokenTypeUnsubscribe, unsubscribeTokenTTL)
	if err != nil {
		uc.logger.Warn("Failed to create unsubscribe token", ports.F("error", err))
		return nil
	}

	params := ports.EmailParams{
		To:      sub.Email,
		Subject: "Bem-vindo aos alertas meteorológicos",
		Body:    uc.buildWelcomeEmailBody(sub, token.Token),
		IsHTML:  true,
	}
	if err := uc.emailProvider.SendEmail(ctx, params); err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}
	return nil
}

func (uc *UseCase) sendUnsubscribeConfirmationEmail(ctx context.Context, sub *Subscription) error {
	params := ports.EmailParams{
		To:      sub.Email,
		Subject: "Subscrição de alertas cancelada",
		Body:    uc.buildUnsubscribeConfirmationBody(sub),
		IsHTML:  true,
	}
	if err := uc.emailProvider.SendEmail(ctx, params); err != nil {
		return fmt.Errorf("send unsubscribe confirmation email: %w", err)
	}
	return nil
}

func (uc *UseCase) convertToPortsSubscription(sub *Subscription) *ports.SubscriptionData {
	return &ports.SubscriptionData{
		ID:        sub.ID,
		Email:     sub.Email,
		Region:    sub.Region,
		Latitude:  sub.Latitude,
		Longitude: sub.Longitude,
		Frequency: sub.Frequency.String(),
		Confirmed: sub.Confirmed,
		CreatedAt: sub.CreatedAt,
		UpdatedAt: sub.UpdatedAt,
	}
}

func (uc *UseCase) convertFromPortsSubscription(data *ports.SubscriptionData) *Subscription {
	return &Subscription{
		ID:        data.ID,
		Email:     data.Email,
		Region:    data.Region,
		Latitude:  data.Latitude,
		Longitude: data.Longitude,
		Frequency: FrequencyFromString(data.Frequency),
		Confirmed: data.Confirmed,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func (uc *UseCase) buildConfirmationEmailBody(sub *Subscription, token string) string {
	baseURL := uc.config.GetAppConfig().BaseURL
	confirmURL := fmt.Sprintf("%s/api/subscriptions/confirm/%s", baseURL, token)

	return fmt.Sprintf(`
		<h2>Confirme a sua subscrição</h2>
		<p>Olá!</p>
		<p>Obrigado por subscrever alertas meteorológicos para <strong>%s</strong>.</p>
		<p>Clique na ligação abaixo para confirmar a sua subscrição:</p>
		<p><a href="%s">Confirmar subscrição</a></p>
		<p>Se não pediu esta subscrição, pode ignorar este email.</p>
	`, sub.Region, confirmURL)
}

func (uc *UseCase) buildWelcomeEmailBody(sub *Subscription, unsubscribeToken string) string {
	baseURL := uc.config.GetAppConfig().BaseURL
	unsubscribeURL := fmt.Sprintf("%s/api/subscriptions/unsubscribe/%s", baseURL, unsubscribeToken)

	return fmt.Sprintf(`
		<h2>Bem-vindo aos alertas meteorológicos!</h2>
		<p>Olá!</p>
		<p>A sua subscrição para <strong>%s</strong> foi confirmada.</p>
		<p>Vai receber alertas com frequência <strong>%s</strong>.</p>
		<p>Para cancelar a subscrição, clique <a href="%s">aqui</a>.</p>
	`, sub.Region, sub.Frequency, unsubscribeURL)
}

func (uc *UseCase) buildUnsubscribeConfirmationBody(sub *Subscription) string {
	return fmt.Sprintf(`
		<h2>Subscrição cancelada</h2>
		<p>Olá!</p>
		<p>A sua subscrição de alertas meteorológicos para <strong>%s</strong> foi cancelada.</p>
	`, sub.Region)
}
