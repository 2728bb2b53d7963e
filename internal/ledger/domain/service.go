package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrUnknownUser         = errors.New("unknown_user")
	ErrInvalidKind         = errors.New("invalid_kind")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInsufficientBalance = errors.New("insufficient_balance")
)

// DebitRequest is one unit of work for a billable action: the request record,
// the spend row, and the provider usage row commit together or not at all.
type DebitRequest struct {
	UserID string
	Kind   SpendKind
	Cost   decimal.Decimal

	OriginText string
	ResultJSON []byte
	WordCount  int

	ProviderCost    decimal.Decimal
	ProviderBalance decimal.Decimal
}

type DebitResult struct {
	NewBalance decimal.Decimal
}

// CreditRequest adds credits to a balance. Amount is the paid amount in major
// units and may be zero for gifts and referral rewards.
type CreditRequest struct {
	UserID   string
	Amount   decimal.Decimal
	Currency string
	Credits  decimal.Decimal
	Kind     RechargeKind
}

// Service owns every write to the ledger tables. The balance check and the
// spend insert happen inside one transaction serialized per user.
type Service interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	Debit(ctx context.Context, req DebitRequest) (*DebitResult, error)
	Credit(ctx context.Context, req CreditRequest) error
	// CreditTx joins an enclosing transaction so callers can commit a credit
	// together with their own rows (registration gift, payment settlement,
	// referral rewards).
	CreditTx(ctx context.Context, tx *gorm.DB, req CreditRequest) error

	SpendHistory(ctx context.Context, userID string) ([]SpendRecord, error)
	RechargeHistory(ctx context.Context, userID string) ([]RechargeRecord, error)
	UsageHistory(ctx context.Context, userID string) ([]UsageRecord, error)
	HumanizeHistory(ctx context.Context, userID string) ([]HumanizeRecord, error)
	CheckHistory(ctx context.Context, userID string) ([]CheckRecord, error)
}

// Repository is the storage surface for the ledger tables. All methods take
// the transaction handle so the service controls unit-of-work boundaries.
type Repository interface {
	LockUser(ctx context.Context, tx *gorm.DB, userID string) (bool, error)
	SumSpend(ctx context.Context, tx *gorm.DB, userID string) (decimal.Decimal, error)
	SumRecharge(ctx context.Context, tx *gorm.DB, userID string) (decimal.Decimal, error)

	InsertSpend(ctx context.Context, tx *gorm.DB, record *SpendRecord) error
	InsertRecharge(ctx context.Context, tx *gorm.DB, record *RechargeRecord) error
	InsertUsage(ctx context.Context, tx *gorm.DB, record *UsageRecord) error
	InsertHumanize(ctx context.Context, tx *gorm.DB, record *HumanizeRecord) error
	InsertCheck(ctx context.Context, tx *gorm.DB, record *CheckRecord) error

	ListSpend(ctx context.Context, tx *gorm.DB, userID string) ([]SpendRecord, error)
	ListRecharge(ctx context.Context, tx *gorm.DB, userID string) ([]RechargeRecord, error)
	ListUsage(ctx context.Context, tx *gorm.DB, userID string) ([]UsageRecord, error)
	ListHumanize(ctx context.Context, tx *gorm.DB, userID string) ([]HumanizeRecord, error)
	ListCheck(ctx context.Context, tx *gorm.DB, userID string) ([]CheckRecord, error)
}
