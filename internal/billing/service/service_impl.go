package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/wordhaven/creditledger/internal/billing/domain"
	identitydomain "github.com/wordhaven/creditledger/internal/identity/domain"
	ledgerdomain "github.com/wordhaven/creditledger/internal/ledger/domain"
	"github.com/wordhaven/creditledger/internal/pricing"
	"github.com/wordhaven/creditledger/internal/textprovider"
)

var minorUnitsPerMajor = decimal.NewFromInt(100)

type Params struct {
	fx.In

	Log      *zap.Logger
	Ledger   ledgerdomain.Service
	Identity identitydomain.Service
	Provider textprovider.Client
}

type service struct {
	log      *zap.Logger
	ledger   ledgerdomain.Service
	identity identitydomain.Service
	provider textprovider.Client
}

func New(p Params) domain.Service {
	return &service{
		log:      p.Log.Named("billing.service"),
		ledger:   p.Ledger,
		identity: p.Identity,
		provider: p.Provider,
	}
}

func (s *service) Humanize(ctx context.Context, userID, text, mode string) (*domain.Result, error) {
	wordCount, cost, err := s.validate(ctx, userID, text, pricing.Mode(mode), true)
	if err != nil {
		return nil, err
	}

	return s.runDebit(ctx, userID, text, wordCount, cost, ledgerdomain.SpendKindHumanize,
		func(ctx context.Context) (json.RawMessage, error) {
			return s.provider.Humanize(ctx, text, pricing.Mode(mode))
		})
}

// HumanizeChunks bills the combined word count of all chunks as one action:
// one spend row, one request record, one provider usage row.
func (s *service) HumanizeChunks(ctx context.Context, userID string, chunks []string, mode string) (*domain.Result, error) {
	joined := strings.TrimSpace(strings.Join(chunks, "\n"))
	wordCount, cost, err := s.validate(ctx, userID, joined, pricing.Mode(mode), true)
	if err != nil {
		return nil, err
	}

	return s.runDebit(ctx, userID, joined, wordCount, cost, ledgerdomain.SpendKindHumanize,
		func(ctx context.Context) (json.RawMessage, error) {
			return s.provider.HumanizeBatch(ctx, chunks, pricing.Mode(mode))
		})
}

func (s *service) Check(ctx context.Context, userID, text string) (*domain.Result, error) {
	wordCount, cost, err := s.validate(ctx, userID, text, "", false)
	if err != nil {
		return nil, err
	}

	return s.runDebit(ctx, userID, text, wordCount, cost, ledgerdomain.SpendKindCheck,
		func(ctx context.Context) (json.RawMessage, error) {
			return s.provider.Detect(ctx, text)
		})
}

// validate runs the shared pre-checks in a fixed order: empty text, unknown
// user, word count, balance, and finally the mode. Cost is computed before
// the mode check, so an unpriceable mode never reaches the provider.
func (s *service) validate(ctx context.Context, userID, text string, mode pricing.Mode, humanize bool) (int, decimal.Decimal, error) {
	if strings.TrimSpace(text) == "" {
		return 0, decimal.Zero, domain.ErrInvalidInput
	}

	exists, err := s.identity.ExistsByID(ctx, userID)
	if err != nil {
		return 0, decimal.Zero, err
	}
	if !exists {
		return 0, decimal.Zero, domain.ErrUnknownUser
	}

	wordCount := pricing.WordCount(text)
	if wordCount < pricing.MinBillableWords {
		return 0, decimal.Zero, domain.ErrTextTooShort
	}

	var cost decimal.Decimal
	if humanize {
		cost = pricing.HumanizeCost(wordCount, mode)
	} else {
		cost = pricing.CheckCost(wordCount)
	}

	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return 0, decimal.Zero, err
	}
	if balance.LessThan(cost) {
		return 0, decimal.Zero, ledgerdomain.ErrInsufficientBalance
	}

	if humanize && !mode.Valid() {
		return 0, decimal.Zero, domain.ErrInvalidMode
	}
	return wordCount, cost, nil
}

// runDebit samples the provider balance around the call so the usage row
// records what the action actually consumed upstream. A zero delta means the
// provider did not meter this call; fall back to the word count.
func (s *service) runDebit(
	ctx context.Context,
	userID, text string,
	wordCount int,
	cost decimal.Decimal,
	kind ledgerdomain.SpendKind,
	call func(context.Context) (json.RawMessage, error),
) (*domain.Result, error) {
	balanceBefore, err := s.provider.Balance(ctx)
	if err != nil {
		return nil, err
	}

	output, err := call(ctx)
	if err != nil {
		return nil, err
	}

	balanceAfter, err := s.provider.Balance(ctx)
	if err != nil {
		return nil, err
	}

	providerCost := balanceBefore.Sub(balanceAfter)
	if providerCost.IsZero() {
		providerCost = decimal.NewFromInt(int64(wordCount))
	}

	debit, err := s.ledger.Debit(ctx, ledgerdomain.DebitRequest{
		UserID:          userID,
		Kind:            kind,
		Cost:            cost,
		OriginText:      text,
		ResultJSON:      output,
		WordCount:       wordCount,
		ProviderCost:    providerCost,
		ProviderBalance: balanceAfter,
	})
	if err != nil {
		return nil, err
	}

	return &domain.Result{
		Output:     output,
		WordCount:  wordCount,
		Cost:       cost,
		NewBalance: debit.NewBalance,
	}, nil
}

func (s *service) Recharge(ctx context.Context, userID string, amountMinor int64, currency string, credits decimal.Decimal, kind string) error {
	if amountMinor < 0 || credits.IsNegative() {
		return domain.ErrInvalidInput
	}

	exists, err := s.identity.ExistsByID(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUnknownUser
	}

	return s.ledger.Credit(ctx, ledgerdomain.CreditRequest{
		UserID:   userID,
		Amount:   decimal.NewFromInt(amountMinor).Div(minorUnitsPerMajor),
		Currency: currency,
		Credits:  credits,
		Kind:     ledgerdomain.RechargeKind(kind),
	})
}
