package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wordhaven/creditledger/internal/clock"
	identitydomain "github.com/wordhaven/creditledger/internal/identity/domain"
	identityrepository "github.com/wordhaven/creditledger/internal/identity/repository"
	identityservice "github.com/wordhaven/creditledger/internal/identity/service"
	ledgerdomain "github.com/wordhaven/creditledger/internal/ledger/domain"
	ledgerrepository "github.com/wordhaven/creditledger/internal/ledger/repository"
	ledgerservice "github.com/wordhaven/creditledger/internal/ledger/service"
	"github.com/wordhaven/creditledger/internal/payment/adapters"
	"github.com/wordhaven/creditledger/internal/payment/domain"
	"github.com/wordhaven/creditledger/internal/payment/repository"
)

type stubAdapter struct {
	name      string
	secret    *domain.IntentSecret
	result    *domain.ProviderResult
	createErr error
	fetchErr  error
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) CreateIntent(ctx context.Context, userID string, amountMinor int64, currency string) (*domain.IntentSecret, error) {
	if a.createErr != nil {
		return nil, a.createErr
	}
	return a.secret, nil
}

func (a *stubAdapter) FetchResult(ctx context.Context, resultID string) (*domain.ProviderResult, error) {
	if a.fetchErr != nil {
		return nil, a.fetchErr
	}
	return a.result, nil
}

type fixture struct {
	conn     *gorm.DB
	adapter  *stubAdapter
	identity identitydomain.Service
	ledger   ledgerdomain.Service
	payment  domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&identitydomain.User{},
		&ledgerdomain.SpendRecord{},
		&ledgerdomain.RechargeRecord{},
		&ledgerdomain.UsageRecord{},
		&ledgerdomain.HumanizeRecord{},
		&ledgerdomain.CheckRecord{},
		&domain.Intent{},
		&domain.Result{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC))

	ledger := ledgerservice.New(ledgerservice.Params{
		DB: conn, Log: zap.NewNop(), Node: node,
		Repo: ledgerrepository.New(), Clock: fake,
	})
	identity := identityservice.New(identityservice.Params{
		DB: conn, Log: zap.NewNop(),
		Repo: identityrepository.New(), Ledger: ledger, Clock: fake,
	})

	adapter := &stubAdapter{name: "stub"}
	registry := adapters.NewRegistry(adapters.RegistryParams{
		Adapters: []domain.ProviderAdapter{adapter},
	})
	payment := New(Params{
		DB: conn, Log: zap.NewNop(), Node: node,
		Repo: repository.New(), Registry: registry,
		Identity: identity, Ledger: ledger, Clock: fake,
	})
	return &fixture{conn: conn, adapter: adapter, identity: identity, ledger: ledger, payment: payment}
}

func (f *fixture) registerUser(t *testing.T) string {
	t.Helper()
	user, err := f.identity.Register(context.Background(), identitydomain.RegisterRequest{
		Name: "payer", Email: "payer@example.com", Password: "pw",
	})
	require.NoError(t, err)
	return user.UserID
}

func (f *fixture) openIntent(t *testing.T, userID, secret string, amountMinor int64, currency string) {
	t.Helper()
	f.adapter.secret = &domain.IntentSecret{ClientSecret: secret}
	_, err := f.payment.OpenIntent(context.Background(), userID, amountMinor, currency, "stub")
	require.NoError(t, err)
}

func TestOpenIntentPersists(t *testing.T) {
	f := newFixture(t)
	userID := f.registerUser(t)

	f.adapter.secret = &domain.IntentSecret{ClientSecret: "cs_123"}
	secret, err := f.payment.OpenIntent(context.Background(), userID, 400, "usd", "stub")
	require.NoError(t, err)
	assert.Equal(t, "cs_123", secret.ClientSecret)

	var intent domain.Intent
	require.NoError(t, f.conn.Where("client_secret = ?", "cs_123").Take(&intent).Error)
	assert.Equal(t, userID, intent.UserID)
	assert.Equal(t, int64(400), intent.AmountMinor)
	assert.Equal(t, "USD", intent.Currency)
	assert.Equal(t, "stub", intent.Provider)
}

func TestOpenIntentStoresIntentID(t *testing.T) {
	f := newFixture(t)
	userID := f.registerUser(t)

	// Providers with a separate intent id use it as the join key; the
	// client secret is a short-lived credential handed to the frontend.
	f.adapter.secret = &domain.IntentSecret{IntentID: "int_1", ClientSecret: "jwt_abc"}
	_, err := f.payment.OpenIntent(context.Background(), userID, 400, "usd", "stub")
	require.NoError(t, err)

	var intent domain.Intent
	require.NoError(t, f.conn.Where("client_secret = ?", "int_1").Take(&intent).Error)
}

func TestOpenIntentProviderFailure(t *testing.T) {
	f := newFixture(t)
	userID := f.registerUser(t)

	f.adapter.createErr = fmt.Errorf("%w: boom", domain.ErrProvider)
	_, err := f.payment.OpenIntent(context.Background(), userID, 400, "usd", "stub")
	require.ErrorIs(t, err, domain.ErrProvider)

	var count int64
	require.NoError(t, f.conn.Model(&domain.Intent{}).Count(&count).Error)
	assert.Zero(t, count, "failed provider calls persist nothing")
}

func TestOpenIntentValidation(t *testing.T) {
	f := newFixture(t)
	userID := f.registerUser(t)
	ctx := context.Background()

	_, err := f.payment.OpenIntent(ctx, "", 400, "usd", "stub")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.payment.OpenIntent(ctx, userID, 0, "usd", "stub")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.payment.OpenIntent(ctx, "ghost", 400, "usd", "stub")
	assert.ErrorIs(t, err, domain.ErrUnknownUser)

	_, err = f.payment.OpenIntent(ctx, userID, 400, "usd", "paypal")
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestConfirmSuccessCreditsBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.registerUser(t)
	f.openIntent(t, userID, "cs_1", 400, "usd")

	f.adapter.result = &domain.ProviderResult{
		UserID:              userID,
		ResultID:            "pi_1",
		ClientSecret:        "cs_1",
		AmountMinor:         400,
		AmountReceivedMinor: 400,
		Currency:            "usd",
		Status:              "succeeded",
		PaymentMethod:       "card",
		Created:             time.Date(2026, 8, 27, 11, 0, 0, 0, time.UTC),
	}

	result, err := f.payment.Confirm(ctx, "pi_1", "stub")
	require.NoError(t, err)
	assert.True(t, result.Succeeded)
	assert.True(t, result.Credits.Equal(decimal.NewFromInt(500)))
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(4)), "amount in major units, got %s", result.Amount)

	// 500 gift + 500 purchased.
	balance, err := f.ledger.Balance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1000)), "got %s", balance)

	recharges, err := f.ledger.RechargeHistory(ctx, userID)
	require.NoError(t, err)
	require.Len(t, recharges, 2)

	var audit domain.Result
	require.NoError(t, f.conn.Where("result_id = ?", "pi_1").Take(&audit).Error)
	assert.Equal(t, "succeeded", audit.Status)
}

func TestConfirmAmountMismatchWritesAuditOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.registerUser(t)
	f.openIntent(t, userID, "cs_1", 400, "usd")

	f.adapter.result = &domain.ProviderResult{
		UserID:              userID,
		ResultID:            "pi_1",
		ClientSecret:        "cs_1",
		AmountMinor:         400,
		AmountReceivedMinor: 200,
		Currency:            "usd",
		Status:              "succeeded",
		PaymentMethod:       "card",
		Created:             time.Date(2026, 8, 27, 11, 0, 0, 0, time.UTC),
	}

	result, err := f.payment.Confirm(ctx, "pi_1", "stub")
	require.NoError(t, err)
	assert.False(t, result.Succeeded)

	balance, err := f.ledger.Balance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(500)), "only the welcome gift, got %s", balance)

	var audits int64
	require.NoError(t, f.conn.Model(&domain.Result{}).Count(&audits).Error)
	assert.Equal(t, int64(1), audits, "failed results still leave an audit row")
}

func TestConfirmDuplicateResultRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.registerUser(t)
	f.openIntent(t, userID, "cs_1", 400, "usd")

	f.adapter.result = &domain.ProviderResult{
		UserID:              userID,
		ResultID:            "pi_1",
		ClientSecret:        "cs_1",
		AmountMinor:         400,
		AmountReceivedMinor: 400,
		Currency:            "usd",
		Status:              "succeeded",
		PaymentMethod:       "card",
		Created:             time.Date(2026, 8, 27, 11, 0, 0, 0, time.UTC),
	}

	_, err := f.payment.Confirm(ctx, "pi_1", "stub")
	require.NoError(t, err)

	_, err = f.payment.Confirm(ctx, "pi_1", "stub")
	require.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	// Exactly one audit row and one paid recharge survive the replay.
	var audits int64
	require.NoError(t, f.conn.Model(&domain.Result{}).Count(&audits).Error)
	assert.Equal(t, int64(1), audits)

	balance, err := f.ledger.Balance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1000)), "got %s", balance)
}

func TestConfirmUnknownSecret(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.registerUser(t)

	f.adapter.result = &domain.ProviderResult{
		UserID:              userID,
		ResultID:            "pi_1",
		ClientSecret:        "cs_never_opened",
		AmountMinor:         400,
		AmountReceivedMinor: 400,
		Currency:            "usd",
		Status:              "succeeded",
		PaymentMethod:       "card",
		Created:             time.Date(2026, 8, 27, 11, 0, 0, 0, time.UTC),
	}

	_, err := f.payment.Confirm(ctx, "pi_1", "stub")
	require.ErrorIs(t, err, domain.ErrUnknownIntent)

	var audits int64
	require.NoError(t, f.conn.Model(&domain.Result{}).Count(&audits).Error)
	assert.Zero(t, audits, "nothing is written before the intent check passes")
}

func TestConfirmUnknownRateAmountCreditsZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.registerUser(t)
	f.openIntent(t, userID, "cs_1", 123, "usd")

	f.adapter.result = &domain.ProviderResult{
		UserID:              userID,
		ResultID:            "pi_1",
		ClientSecret:        "cs_1",
		AmountMinor:         123,
		AmountReceivedMinor: 123,
		Currency:            "usd",
		Status:              "succeeded",
		PaymentMethod:       "card",
		Created:             time.Date(2026, 8, 27, 11, 0, 0, 0, time.UTC),
	}

	result, err := f.payment.Confirm(ctx, "pi_1", "stub")
	require.NoError(t, err)
	assert.True(t, result.Succeeded)
	assert.True(t, result.Credits.IsZero(), "unlisted amount credits zero")

	balance, err := f.ledger.Balance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(500)))
}

func TestConfirmProviderFailure(t *testing.T) {
	f := newFixture(t)
	userID := f.registerUser(t)
	f.openIntent(t, userID, "cs_1", 400, "usd")

	f.adapter.fetchErr = errors.Join(domain.ErrProvider, errors.New("timeout"))
	_, err := f.payment.Confirm(context.Background(), "pi_1", "stub")
	require.ErrorIs(t, err, domain.ErrProvider)
}
