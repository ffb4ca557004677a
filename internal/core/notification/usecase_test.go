package notification

import (
	"context"
	"testing"
	"time"

	"agroalerta.app/internal/core/subscription"
	"agroalerta.app/internal/core/weather"
	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...ports.Field) {}
func (nopLogger) Info(string, ...ports.Field)  {}
func (nopLogger) Warn(string, ...ports.Field)  {}
func (nopLogger) Error(string, ...ports.Field) {}

type stubConfig struct{}

func (stubConfig) GetAppConfig() ports.AppConfig {
	return ports.AppConfig{BaseURL: "http://localhost:8080", Language: "pt"}
}
func (stubConfig) GetServerConfig() ports.ServerConfig       { return ports.ServerConfig{} }
func (stubConfig) GetLocationConfig() ports.LocationConfig   { return ports.LocationConfig{} }
func (stubConfig) GetWeatherConfig() ports.WeatherConfig     { return ports.WeatherConfig{} }
func (stubConfig) GetRefreshConfig() ports.RefreshConfig     { return ports.RefreshConfig{} }
func (stubConfig) GetDatabaseConfig() ports.DatabaseConfig   { return ports.DatabaseConfig{} }
func (stubConfig) GetEmailConfig() ports.EmailConfig         { return ports.EmailConfig{} }
func (stubConfig) GetCacheConfig() ports.CacheConfig         { return ports.CacheConfig{} }
func (stubConfig) GetSchedulerConfig() ports.SchedulerConfig { return ports.SchedulerConfig{} }

type stubSubscriptionRepo struct {
	confirmed map[string][]*ports.SubscriptionData
	listErr   error
}

func (r *stubSubscriptionRepo) Save(context.Context, *ports.SubscriptionData) error   { return nil }
func (r *stubSubscriptionRepo) Update(context.Context, *ports.SubscriptionData) error { return nil }
func (r *stubSubscriptionRepo) Delete(context.Context, *ports.SubscriptionData) error { return nil }

func (r *stubSubscriptionRepo) FindByID(context.Context, uint) (*ports.SubscriptionData, error) {
	return nil, errors.NewNotFoundError("subscription not found")
}

func (r *stubSubscriptionRepo) FindByEmailAndRegion(context.Context, string, string) (*ports.SubscriptionData, error) {
	return nil, errors.NewNotFoundError("subscription not found")
}

func (r *stubSubscriptionRepo) FindConfirmedByFrequency(_ context.Context, frequency string) ([]*ports.SubscriptionData, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.confirmed[frequency], nil
}

type stubTokenRepo struct {
	saved          []*ports.TokenData
	saveErr        error
	deletedExpired bool
}

func (r *stubTokenRepo) Save(_ context.Context, token *ports.TokenData) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	token.ID = uint(len(r.saved) + 1)
	r.saved = append(r.saved, token)
	return nil
}

func (r *stubTokenRepo) FindByToken(context.Context, string) (*ports.TokenData, error) {
	return nil, errors.NewNotFoundError("token not found")
}

func (r *stubTokenRepo) Delete(context.Context, *ports.TokenData) error { return nil }

func (r *stubTokenRepo) DeleteExpired(context.Context) error {
	r.deletedExpired = true
	return nil
}

type recordingEmailProvider struct {
	sent    []ports.EmailParams
	failFor string
}

func (p *recordingEmailProvider) SendEmail(_ context.Context, params ports.EmailParams) error {
	if p.failFor != "" && params.To == p.failFor {
		return errors.NewEmailError("smtp rejected recipient", nil)
	}
	p.sent = append(p.sent, params)
	return nil
}

type stubWeatherFetcher struct {
	report *weather.Report
	err    error
	calls  []struct{ lat, lng float64 }
}

func (f *stubWeatherFetcher) FetchWeather(_ context.Context, lat, lng float64) (*weather.Report, error) {
	f.calls = append(f.calls, struct{ lat, lng float64 }{lat, lng})
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func confirmedSub(id uint, email, region string, lat, lng float64) *ports.SubscriptionData {
	return &ports.SubscriptionData{
		ID:        id,
		Email:     email,
		Region:    region,
		Latitude:  lat,
		Longitude: lng,
		Frequency: "daily",
		Confirmed: true,
		CreatedAt: time.Now(),
	}
}

func newNotificationUseCase(t *testing.T, subs *stubSubscriptionRepo, tokens *stubTokenRepo, email *recordingEmailProvider, fetcher *stubWeatherFetcher) *UseCase {
	t.Helper()
	uc, err := NewUseCase(UseCaseDependencies{
		SubscriptionRepo: subs,
		TokenRepo:        tokens,
		EmailProvider:    email,
		WeatherFetcher:   fetcher,
		Config:           stubConfig{},
		Logger:           nopLogger{},
	})
	require.NoError(t, err)
	return uc
}

func TestSendWeatherUpdates_SendsToEachSubscription(t *testing.T) {
	subs := &stubSubscriptionRepo{confirmed: map[string][]*ports.SubscriptionData{
		"daily": {
			confirmedSub(1, "a@example.mz", "Maputo", -25.9692, 32.5732),
			confirmedSub(2, "b@example.mz", "Beira", -19.8436, 34.8389),
		},
	}}
	tokens := &stubTokenRepo{}
	email := &recordingEmailProvider{}
	fetcher := &stubWeatherFetcher{report: mildReport()}
	uc := newNotificationUseCase(t, subs, tokens, email, fetcher)

	err := uc.SendWeatherUpdates(context.Background(), SendWeatherUpdatesParams{Frequency: subscription.FrequencyDaily})
	require.NoError(t, err)

	require.Len(t, email.sent, 2)
	assert.Equal(t, "a@example.mz", email.sent[0].To)
	assert.Contains(t, email.sent[0].Subject, "Boletim")
	assert.Contains(t, email.sent[0].Subject, "Maputo")
	assert.Contains(t, email.sent[0].Body, "27°C")
	assert.True(t, email.sent[0].IsHTML)

	// Each subscription's own coordinate goes to the weather pipeline.
	require.Len(t, fetcher.calls, 2)
	assert.Equal(t, -19.8436, fetcher.calls[1].lat)

	// Every email carries a fresh unsubscribe token.
	require.Len(t, tokens.saved, 2)
	assert.Contains(t, email.sent[0].Body, tokens.saved[0].Token)
}

func TestSendWeatherUpdates_AlertSubjectOnThresholdTrip(t *testing.T) {
	report := mildReport()
	report.Current.Temperature.ValueC = 40

	subs := &stubSubscriptionRepo{confirmed: map[string][]*ports.SubscriptionData{
		"daily": {confirmedSub(1, "a@example.mz", "Tete", -16.1564, 33.5867)},
	}}
	email := &recordingEmailProvider{}
	uc := newNotificationUseCase(t, subs, &stubTokenRepo{}, email, &stubWeatherFetcher{report: report})

	require.NoError(t, uc.SendWeatherUpdates(context.Background(), SendWeatherUpdatesParams{Frequency: subscription.FrequencyDaily}))

	require.Len(t, email.sent, 1)
	assert.Contains(t, email.sent[0].Subject, "Alerta")
	assert.Contains(t, email.sent[0].Body, "Calor extremo")
}

func TestSendWeatherUpdates_PartialFailureContinues(t *testing.T) {
	subs := &stubSubscriptionRepo{confirmed: map[string][]*ports.SubscriptionData{
		"daily": {
			confirmedSub(1, "fails@example.mz", "Maputo", -25.9692, 32.5732),
			confirmedSub(2, "works@example.mz", "Beira", -19.8436, 34.8389),
		},
	}}
	email := &recordingEmailProvider{failFor: "fails@example.mz"}
	uc := newNotificationUseCase(t, subs, &stubTokenRepo{}, email, &stubWeatherFetcher{report: mildReport()})

	err := uc.SendWeatherUpdates(context.Background(), SendWeatherUpdatesParams{Frequency: subscription.FrequencyDaily})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 out of 2")

	require.Len(t, email.sent, 1)
	assert.Equal(t, "works@example.mz", email.sent[0].To)
}

func TestSendWeatherUpdates_NoSubscriptionsIsNoop(t *testing.T) {
	email := &recordingEmailProvider{}
	fetcher := &stubWeatherFetcher{report: mildReport()}
	uc := newNotificationUseCase(t, &stubSubscriptionRepo{}, &stubTokenRepo{}, email, fetcher)

	require.NoError(t, uc.SendWeatherUpdates(context.Background(), SendWeatherUpdatesParams{Frequency: subscription.FrequencyHourly}))
	assert.Empty(t, email.sent)
	assert.Empty(t, fetcher.calls)
}

func TestSendWeatherUpdates_WeatherFailureCountsAsError(t *testing.T) {
	subs := &stubSubscriptionRepo{confirmed: map[string][]*ports.SubscriptionData{
		"daily": {confirmedSub(1, "a@example.mz", "Maputo", -25.9692, 32.5732)},
	}}
	email := &recordingEmailProvider{}
	fetcher := &stubWeatherFetcher{err: errors.NewRateLimitedError("quota exhausted")}
	uc := newNotificationUseCase(t, subs, &stubTokenRepo{}, email, fetcher)

	err := uc.SendWeatherUpdates(context.Background(), SendWeatherUpdatesParams{Frequency: subscription.FrequencyDaily})
	require.Error(t, err)
	assert.Empty(t, email.sent)
}

func TestSendWeatherUpdates_InvalidFrequency(t *testing.T) {
	uc := newNotificationUseCase(t, &stubSubscriptionRepo{}, &stubTokenRepo{}, &recordingEmailProvider{}, &stubWeatherFetcher{})

	err := uc.SendWeatherUpdates(context.Background(), SendWeatherUpdatesParams{Frequency: subscription.FrequencyUnknown})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestSendWeatherUpdates_TokenFailureStillSends(t *testing.T) {
	subs := &stubSubscriptionRepo{confirmed: map[string][]*ports.SubscriptionData{
		"daily": {confirmedSub(1, "a@example.mz", "Maputo", -25.9692, 32.5732)},
	}}
	tokens := &stubTokenRepo{saveErr: errors.NewDatabaseError("insert failed", nil)}
	email := &recordingEmailProvider{}
	uc := newNotificationUseCase(t, subs, tokens, email, &stubWeatherFetcher{report: mildReport()})

	require.NoError(t, uc.SendWeatherUpdates(context.Background(), SendWeatherUpdatesParams{Frequency: subscription.FrequencyDaily}))

	require.Len(t, email.sent, 1)
	assert.NotContains(t, email.sent[0].Body, "unsubscribe/")
}

func TestCleanupExpiredTokens(t *testing.T) {
	tokens := &stubTokenRepo{}
	uc := newNotificationUseCase(t, &stubSubscriptionRepo{}, tokens, &recordingEmailProvider{}, &stubWeatherFetcher{})

	require.NoError(t, uc.CleanupExpiredTokens(context.Background()))
	assert.True(t, tokens.deletedExpired)
}

func TestGetStats(t *testing.T) {
	subs := &stubSubscriptionRepo{confirmed: map[string][]*ports.SubscriptionData{
		"hourly": {confirmedSub(1, "a@example.mz", "Maputo", -25.9692, 32.5732)},
		"daily": {
			confirmedSub(2, "b@example.mz", "Beira", -19.8436, 34.8389),
			confirmedSub(3, "c@example.mz", "Tete", -16.1564, 33.5867),
		},
	}}
	uc := newNotificationUseCase(t, subs, &stubTokenRepo{}, &recordingEmailProvider{}, &stubWeatherFetcher{})

	stats, err := uc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSubscriptions)
	assert.Equal(t, 1, stats.HourlySubscriptions)
	assert.Equal(t, 2, stats.DailySubscriptions)
}

func TestNewUseCase_RequiresDependencies(t *testing.T) {
	_, err := NewUseCase(UseCaseDependencies{})
	assert.Error(t, err)

	_, err = NewUseCase(UseCaseDependencies{
		SubscriptionRepo: &stubSubscriptionRepo{},
		TokenRepo:        &stubTokenRepo{},
		EmailProvider:    &recordingEmailProvider{},
		Config:           stubConfig{},
		Logger:           nopLogger{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather fetcher is required")
}
