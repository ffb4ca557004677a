package notification

import (
	"context"
	"fmt"
	"time"

	"agroalerta.app/internal/core/subscription"
	"agroalerta.app/internal/core/weather"
	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
)

// WeatherFetcher is the slice of the weather use case the notifier needs
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, lat, lng float64) (*weather.Report, error)
}

// UseCase sends weather update emails to confirmed subscriptions
type UseCase struct {
	subscriptionRepo ports.SubscriptionRepository
	tokenRepo        ports.TokenRepository
	emailProvider    ports.EmailProvider
	weatherFetcher   WeatherFetcher
	config           ports.ConfigProvider
	logger           ports.Logger
}

// UseCaseDependencies holds the dependencies for the notification use case
type UseCaseDependencies struct {
	SubscriptionRepo ports.SubscriptionRepository
	TokenRepo        ports.TokenRepository
	EmailProvider    ports.EmailProvider
	WeatherFetcher   WeatherFetcher
	Config           ports.ConfigProvider
	Logger           ports.Logger
}

type SendWeatherUpdatesParams struct {
	Frequency subscription.Frequency
}

// NewUseCase creates a notification use case
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
	if deps.WeatherFetcher == nil {
		return nil, errors.NewValidationError("weather fetcher is required")
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
		weatherFetcher:   deps.WeatherFetcher,
		config:           deps.Config,
		logger:           deps.Logger,
	}, nil
}

// SendWeatherUpdates sends one update email to every confirmed subscription
// of the given frequency. A failed subscription does not stop the run; the
// error reports how many failed.
func (uc *UseCase) SendWeatherUpdates(ctx context.Context, params SendWeatherUpdatesParams) error {
	if !params.Frequency.IsValid() {
		return errors.NewValidationError("invalid frequency")
	}

	subsData, err := uc.subscriptionRepo.FindConfirmedByFrequency(ctx, params.Frequency.String())
	if err != nil {
		return fmt.Errorf("list subscriptions for frequency %s: %w", params.Frequency, err)
	}

	if len(subsData) == 0 {
		uc.logger.Debug("No subscriptions for frequency", ports.F("frequency", params.Frequency))
		return nil
	}

	uc.logger.Info("Processing weather updates",
		ports.F("frequency", params.Frequency),
		ports.F("count", len(subsData)))

	errorCount := 0
	for _, subData := range subsData {
		sub := uc.convertFromPortsSubscription(subData)
		if err := uc.sendUpdateToSubscription(ctx, sub); err != nil {
			uc.logger.Error("Failed to send weather update",
				ports.F("error", err),
				ports.F("email", sub.Email),
				ports.F("region", sub.Region))
			errorCount++
		}
	}

	uc.logger.Info("Weather update run completed",
		ports.F("frequency", params.Frequency),
		ports.F("total", len(subsData)),
		ports.F("errors", errorCount))

	if errorCount > 0 {
		return fmt.Errorf("failed to send %d out of %d weather updates", errorCount, len(subsData))
	}
	return nil
}

func (uc *UseCase) sendUpdateToSubscription(ctx context.Context, sub *subscription.Subscription) error {
	report, err := uc.weatherFetcher.FetchWeather(ctx, sub.Latitude, sub.Longitude)
	if err != nil {
		return fmt.Errorf("fetch weather for %s: %w", sub.Region, err)
	}

	alerts := EvaluateAlerts(report)

	unsubscribeToken, err := uc.getOrCreateUnsubscribeToken(ctx, sub.ID)
	if err != nil {
		uc.logger.Warn("Failed to get unsubscribe token", ports.F("error", err))
	}

	subject := fmt.Sprintf("Boletim meteorológico para %s", sub.Region)
	if len(alerts) > 0 {
		subject = fmt.Sprintf("Alerta meteorológico para %s", sub.Region)
	}

	params := ports.EmailParams{
		To:      sub.Email,
		Subject: subject,
		Body:    uc.buildUpdateEmailBody(sub, report, alerts, unsubscribeToken),
		IsHTML:  true,
	}
	if err := uc.emailProvider.SendEmail(ctx, params); err != nil {
		return fmt.Errorf("send weather update email: %w", err)
	}

	uc.logger.Debug("Weather update sent",
		ports.F("email", sub.Email),
		ports.F("region", sub.Region),
		ports.F("alerts", len(alerts)))
	return nil
}

// getOrCreateUnsubscribeToken mints a fresh unsubscribe token for the email
// footer. Tokens are single rows keyed by value, so minting per run keeps the
// repository contract small; expired ones fall to CleanupExpiredTokens.
func (uc *UseCase) getOrCreateUnsubscribeToken(ctx context.Context, subscriptionID uint) (string, error) {
	token := subscription.NewToken(subscriptionID, subscription.TokenTypeUnsubscribe, 365*24*time.Hour)
	tokenData := &ports.TokenData{
		Token:          token.Token,
		SubscriptionID: token.SubscriptionID,
		Type:           token.Type.String(),
		ExpiresAt:      token.ExpiresAt,
		CreatedAt:      token.CreatedAt,
	}
	if err := uc.tokenRepo.Save(ctx, tokenData); err != nil {
		return "", fmt.Errorf("create unsubscribe token: %w", err)
	}
	return token.Token, nil
}

// CleanupExpiredTokens removes tokens past their expiry
func (uc *UseCase) CleanupExpiredTokens(ctx context.Context) error {
	if err := uc.tokenRepo.DeleteExpired(ctx); err != nil {
		return fmt.Errorf("cleanup expired tokens: %w", err)
	}
	uc.logger.Debug("Expired tokens cleaned up")
	return nil
}

// GetStats reports confirmed subscription counts per frequency
func (uc *UseCase) GetStats(ctx context.Context) (Stats, error) {
	hourly, err := uc.subscriptionRepo.FindConfirmedByFrequency(ctx, subscription.FrequencyHourly.String())
	if err != nil {
		return Stats{}, fmt.Errorf("count hourly subscriptions: %w", err)
	}
	daily, err := uc.subscriptionRepo.FindConfirmedByFrequency(ctx, subscription.FrequencyDaily.String())
	if err != nil {
		return Stats{}, fmt.Errorf("count daily subscriptions: %w", err)
	}

	return Stats{
		TotalSubscriptions:  len(hourly) + len(daily),
		HourlySubscriptions: len(hourly),
		DailySubscriptions:  len(daily),
		LastUpdated:         time.Now(),
	}, nil
}

func (uc *UseCase) convertFromPortsSubscription(data *ports.SubscriptionData) *subscription.Subscription {
	return &subscription.Subscription{
		ID:        data.ID,
		Email:     data.Email,
		Region:    data.Region,
		Latitude:  data.Latitude,
		Longitude: data.Longitude,
		Frequency: subscription.FrequencyFromString(data.Frequency),
		Confirmed: data.Confirmed,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func (uc *UseCase) buildUpdateEmailBody(sub *subscription.Subscription, report *weather.Report, alerts []Alert, unsubscribeToken string) string {
	body := fmt.Sprintf("<h2>Boletim meteorológico para %s</h2>", sub.Region)

	for _, alert := range alerts {
		body += fmt.Sprintf(`
		<div style="background-color: #fff3cd; border-left: 4px solid #cc6600; padding: 12px; margin: 12px 0;">
			<strong>Alerta:</strong> %s
		</div>`, alert.Message)
	}

	if report.Current != nil {
		body += fmt.Sprintf(`
		<div style="background-color: #f5f5f5; padding: 16px; border-radius: 8px; margin: 16px 0;">
			<h3 style="margin-top: 0;">Condições atuais</h3>
			<p><strong>Temperatura:</strong> %d°C (sensação de %d°C)</p>
			<p><strong>Humidade:</strong> %d%%</p>
			<p><strong>Condição:</strong> %s</p>
		</div>`,
			report.Current.Temperature.ValueC,
			report.Current.Temperature.FeelsLikeC,
			report.Current.HumidityPct,
			report.Current.Condition.Description)
	}

	if len(report.Forecast) > 0 {
		body += `<h3>Próximos dias</h3><ul>`
		for _, day := range report.Forecast {
			body += fmt.Sprintf(
				"<li><strong>%s:</strong> %d°C a %d°C, chuva %d%%</li>",
				day.Date, day.Temperature.MinC, day.Temperature.MaxC,
				day.Precipitation.ProbabilityPct)
		}
		body += `</ul>`
	}

	body += fmt.Sprintf(`
	<hr style="border: none; border-top: 1px solid #ddd; margin: 20px 0;">
	<p style="font-size: 12px; color: #888;">
		Recebe este email porque subscreveu alertas <strong>%s</strong> para <strong>%s</strong>.
	</p>`, sub.Frequency, sub.Region)

	if unsubscribeToken != "" {
		unsubscribeURL := fmt.Sprintf("%s/api/subscriptions/unsubscribe/%s",
			uc.config.GetAppConfig().BaseURL, unsubscribeToken)
		body += fmt.Sprintf(`
	<p style="font-size: 12px; color: #888;">
		Para cancelar a subscrição, <a href="%s">clique aqui</a>.
	</p>`, unsubscribeURL)
	}

	return body
}
