package domain

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput = errors.New("invalid_input")
	ErrUnknownUser  = errors.New("unknown_user")
	ErrTextTooShort = errors.New("text_too_short")
	ErrInvalidMode  = errors.New("invalid_mode")
)

// Result is the outcome of one billable action: the provider payload plus
// what the ledger recorded for it.
type Result struct {
	Output     json.RawMessage
	WordCount  int
	Cost       decimal.Decimal
	NewBalance decimal.Decimal
}

// Service orchestrates billable actions: validate, call the provider, then
// hand the ledger one debit covering the whole action.
type Service interface {
	Humanize(ctx context.Context, userID, text, mode string) (*Result, error)
	HumanizeChunks(ctx context.Context, userID string, chunks []string, mode string) (*Result, error)
	Check(ctx context.Context, userID, text string) (*Result, error)
	Recharge(ctx context.Context, userID string, amountMinor int64, currency string, credits decimal.Decimal, kind string) error
}
