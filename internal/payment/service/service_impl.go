package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wordhaven/creditledger/internal/clock"
	identitydomain "github.com/wordhaven/creditledger/internal/identity/domain"
	ledgerdomain "github.com/wordhaven/creditledger/internal/ledger/domain"
	"github.com/wordhaven/creditledger/internal/observability"
	"github.com/wordhaven/creditledger/internal/payment/adapters"
	"github.com/wordhaven/creditledger/internal/payment/domain"
	"github.com/wordhaven/creditledger/internal/pricing"
	"github.com/wordhaven/creditledger/pkg/db"
)

var minorUnitsPerMajor = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Node     *snowflake.Node
	Repo     domain.Repository
	Registry *adapters.Registry
	Identity identitydomain.Service
	Ledger   ledgerdomain.Service
	Clock    clock.Clock
	Metrics  *observability.Metrics `optional:"true"`
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	node     *snowflake.Node
	repo     domain.Repository
	registry *adapters.Registry
	identity identitydomain.Service
	ledger   ledgerdomain.Service
	clock    clock.Clock
	metrics  *observability.Metrics
}

func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		node:     p.Node,
		repo:     p.Repo,
		registry: p.Registry,
		identity: p.Identity,
		ledger:   p.Ledger,
		clock:    p.Clock,
		metrics:  p.Metrics,
	}
}

func (s *service) OpenIntent(ctx context.Context, userID string, amountMinor int64, currency, provider string) (*domain.IntentSecret, error) {
	if userID == "" || amountMinor <= 0 || currency == "" {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.identity.ExistsByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUnknownUser
	}

	adapter, ok := s.registry.Get(provider)
	if !ok {
		return nil, domain.ErrUnknownProvider
	}

	secret, err := adapter.CreateIntent(ctx, userID, amountMinor, currency)
	if err != nil {
		return nil, err
	}

	// Providers that hand out a separate intent id use it as the join key;
	// the client secret may be a short-lived credential.
	stored := secret.IntentID
	if stored == "" {
		stored = secret.ClientSecret
	}

	if err := s.repo.InsertIntent(ctx, s.db, &domain.Intent{
		ID:           s.node.Generate(),
		UserID:       userID,
		AmountMinor:  amountMinor,
		Currency:     strings.ToUpper(currency),
		ClientSecret: stored,
		Provider:     adapter.Name(),
		Time:         s.clock.Now(),
	}); err != nil {
		return nil, err
	}

	s.log.Info("payment intent opened",
		zap.String("user_id", userID),
		zap.String("provider", adapter.Name()),
		zap.Int64("amount_minor", amountMinor),
	)
	return secret, nil
}

func (s *service) Confirm(ctx context.Context, resultID, provider string) (*domain.ConfirmResult, error) {
	if resultID == "" {
		return nil, domain.ErrInvalidInput
	}

	adapter, ok := s.registry.Get(provider)
	if !ok {
		return nil, domain.ErrUnknownProvider
	}

	result, err := adapter.FetchResult(ctx, resultID)
	if err != nil {
		return nil, err
	}

	exists, err := s.identity.ExistsByID(ctx, result.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUnknownUser
	}

	known, err := s.repo.SecretExists(ctx, s.db, result.ClientSecret)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, domain.ErrUnknownIntent
	}

	seen, err := s.repo.ResultIDExists(ctx, s.db, result.ResultID)
	if err != nil {
		return nil, err
	}
	if seen {
		return nil, domain.ErrAlreadyProcessed
	}

	succeeded := result.Status == "succeeded" && result.AmountMinor == result.AmountReceivedMinor
	currency := strings.ToUpper(result.Currency)
	amountMajor := decimal.NewFromInt(result.AmountReceivedMinor).Div(minorUnitsPerMajor)
	// Credits come from the rate table keyed by the intent amount. An
	// unlisted amount credits zero; the audit row still records the money.
	credits := pricing.CreditForAmount(result.Currency, result.AmountMinor)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if succeeded {
			if err := s.ledger.CreditTx(ctx, tx, ledgerdomain.CreditRequest{
				UserID:   result.UserID,
				Amount:   amountMajor,
				Currency: currency,
				Credits:  credits,
				Kind:     ledgerdomain.RechargeKindPaid,
			}); err != nil {
				return err
			}
		}

		return s.repo.InsertResult(ctx, tx, &domain.Result{
			ID:                  s.node.Generate(),
			UserID:              result.UserID,
			ResultID:            result.ResultID,
			AmountMinor:         result.AmountMinor,
			AmountReceivedMinor: result.AmountReceivedMinor,
			ClientSecret:        result.ClientSecret,
			Currency:            currency,
			Status:              result.Status,
			PaymentMethod:       result.PaymentMethod,
			ProviderCreated:     result.Created,
			Time:                s.clock.Now(),
		})
	})
	if err != nil {
		// Two confirms racing past the pre-check collide on the unique
		// result id; the loser reads as already processed.
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyProcessed
		}
		return nil, err
	}

	status := "failed"
	if succeeded {
		status = "succeeded"
	}
	if s.metrics != nil {
		s.metrics.PaymentEvents.WithLabelValues(adapter.Name(), status).Inc()
	}
	s.log.Info("payment confirmed",
		zap.String("user_id", result.UserID),
		zap.String("provider", adapter.Name()),
		zap.String("status", status),
		zap.String("credits", credits.String()),
	)

	return &domain.ConfirmResult{
		UserID:        result.UserID,
		Succeeded:     succeeded,
		Amount:        amountMajor,
		Currency:      currency,
		Credits:       credits,
		PaymentMethod: result.PaymentMethod,
		Created:       result.Created,
	}, nil
}
