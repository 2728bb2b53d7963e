package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput     = errors.New("invalid_input")
	ErrUnknownUser      = errors.New("unknown_user")
	ErrUnknownProvider  = errors.New("unknown_provider")
	ErrUnknownIntent    = errors.New("unknown_intent")
	ErrAlreadyProcessed = errors.New("already_processed")
	ErrProvider         = errors.New("payment_provider_unavailable")
)

// IntentSecret is what a provider returns when an intent is opened. IntentID
// is empty for providers whose client secret doubles as the intent handle.
type IntentSecret struct {
	IntentID     string
	ClientSecret string
}

// ProviderResult is a provider's view of a settled (or failed) payment,
// normalized across adapters.
type ProviderResult struct {
	UserID              string
	ResultID            string
	ClientSecret        string
	AmountMinor         int64
	AmountReceivedMinor int64
	Currency            string
	Status              string
	PaymentMethod       string
	Created             time.Time
}

// ProviderAdapter is one upstream payment provider.
type ProviderAdapter interface {
	Name() string
	CreateIntent(ctx context.Context, userID string, amountMinor int64, currency string) (*IntentSecret, error)
	FetchResult(ctx context.Context, resultID string) (*ProviderResult, error)
}

type ConfirmResult struct {
	UserID        string
	Succeeded     bool
	Amount        decimal.Decimal
	Currency      string
	Credits       decimal.Decimal
	PaymentMethod string
	Created       time.Time
}

type Service interface {
	// OpenIntent asks the provider for a client secret and persists the
	// intent. Nothing is stored when the provider call fails.
	OpenIntent(ctx context.Context, userID string, amountMinor int64, currency, provider string) (*IntentSecret, error)
	// Confirm fetches the provider result and settles it: on success one
	// recharge row plus the audit row, on failure the audit row alone, both
	// in one transaction keyed by the unique result id.
	Confirm(ctx context.Context, resultID, provider string) (*ConfirmResult, error)
}

type Repository interface {
	InsertIntent(ctx context.Context, tx *gorm.DB, intent *Intent) error
	SecretExists(ctx context.Context, tx *gorm.DB, clientSecret string) (bool, error)
	ResultIDExists(ctx context.Context, tx *gorm.DB, resultID string) (bool, error)
	InsertResult(ctx context.Context, tx *gorm.DB, result *Result) error
}
