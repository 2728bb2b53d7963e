package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput    = errors.New("invalid_input")
	ErrUnknownUser     = errors.New("unknown_user")
	ErrUnknownCode     = errors.New("unknown_code")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrAlreadyReferred = errors.New("already_referred")
	ErrSelfReferral    = errors.New("self_referral")
)

type Service interface {
	// IssueCode returns the user's referral code, creating one on first call.
	// Issuing twice returns the same code.
	IssueCode(ctx context.Context, userID string) (string, error)
	// Redeem pays out a referral: one redemption row, the referee's reward,
	// and the referrer's reward commit together.
	Redeem(ctx context.Context, refereeID, code string, rechargeCredit decimal.Decimal) error
	// CheckEligible reports whether Redeem would currently be accepted. It
	// never returns an error; any failed precondition reads as false.
	CheckEligible(ctx context.Context, userID, code string) bool
	History(ctx context.Context, userID string) ([]HistoryEntry, error)
}

type Repository interface {
	InsertCode(ctx context.Context, tx *gorm.DB, code *Code) error
	FindCodeByUser(ctx context.Context, tx *gorm.DB, userID string) (*Code, error)
	FindCodeByCode(ctx context.Context, tx *gorm.DB, code string) (*Code, error)

	InsertRedemption(ctx context.Context, tx *gorm.DB, redemption *Redemption) error
	RefereeRedeemed(ctx context.Context, tx *gorm.DB, refereeID string) (bool, error)
	ListRedemptionsByUser(ctx context.Context, tx *gorm.DB, userID string) ([]Redemption, error)
}
