package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wordhaven/creditledger/internal/clock"
	"github.com/wordhaven/creditledger/internal/ledger/domain"
	"github.com/wordhaven/creditledger/internal/observability"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Node    *snowflake.Node
	Repo    domain.Repository
	Clock   clock.Clock
	Metrics *observability.Metrics `optional:"true"`
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	node    *snowflake.Node
	repo    domain.Repository
	clock   clock.Clock
	metrics *observability.Metrics
}

func New(p Params) domain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("ledger.service"),
		node:    p.Node,
		repo:    p.Repo,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

// Balance is derived state: sum of recharges minus sum of spends. There is no
// stored balance column to drift out of sync.
func (s *service) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.balance(ctx, s.db, userID)
}

func (s *service) balance(ctx context.Context, tx *gorm.DB, userID string) (decimal.Decimal, error) {
	recharged, err := s.repo.SumRecharge(ctx, tx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	spent, err := s.repo.SumSpend(ctx, tx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return recharged.Sub(spent), nil
}

// Debit commits the request record, the spend entry, and the provider usage
// entry as one unit of work. The balance check runs inside the same
// transaction, after a row lock on the user, so two concurrent debits cannot
// both pass the check on the same funds.
func (s *service) Debit(ctx context.Context, req domain.DebitRequest) (*domain.DebitResult, error) {
	if req.UserID == "" {
		return nil, domain.ErrUnknownUser
	}
	if !req.Kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	if req.Cost.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	var newBalance decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.LockUser(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrUnknownUser
		}

		balance, err := s.balance(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if balance.LessThan(req.Cost) {
			return domain.ErrInsufficientBalance
		}

		now := s.clock.Now()
		switch req.Kind {
		case domain.SpendKindHumanize:
			err = s.repo.InsertHumanize(ctx, tx, &domain.HumanizeRecord{
				ID:         s.node.Generate(),
				UserID:     req.UserID,
				Time:       now,
				OriginText: req.OriginText,
				ResultJSON: req.ResultJSON,
				WordCount:  req.WordCount,
			})
		case domain.SpendKindCheck:
			err = s.repo.InsertCheck(ctx, tx, &domain.CheckRecord{
				ID:         s.node.Generate(),
				UserID:     req.UserID,
				Time:       now,
				OriginText: req.OriginText,
				ResultJSON: req.ResultJSON,
				WordCount:  req.WordCount,
			})
		}
		if err != nil {
			return err
		}

		if err := s.repo.InsertSpend(ctx, tx, &domain.SpendRecord{
			ID:          s.node.Generate(),
			UserID:      req.UserID,
			Time:        now,
			SpendCredit: req.Cost,
			SpendKind:   req.Kind,
		}); err != nil {
			return err
		}

		if err := s.repo.InsertUsage(ctx, tx, &domain.UsageRecord{
			ID:              s.node.Generate(),
			UserID:          req.UserID,
			Time:            now,
			UsageKind:       req.Kind,
			SpendWords:      req.ProviderCost,
			ProviderBalance: req.ProviderBalance,
		}); err != nil {
			return err
		}

		newBalance = balance.Sub(req.Cost)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.LedgerSpends.WithLabelValues(string(req.Kind)).Inc()
	}
	s.log.Info("debit committed",
		zap.String("user_id", req.UserID),
		zap.String("kind", string(req.Kind)),
		zap.String("cost", req.Cost.String()),
		zap.String("balance", newBalance.String()),
	)

	return &domain.DebitResult{NewBalance: newBalance}, nil
}

func (s *service) Credit(ctx context.Context, req domain.CreditRequest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.CreditTx(ctx, tx, req)
	})
}

func (s *service) CreditTx(ctx context.Context, tx *gorm.DB, req domain.CreditRequest) error {
	if req.UserID == "" {
		return domain.ErrUnknownUser
	}
	if !req.Kind.Valid() {
		return domain.ErrInvalidKind
	}
	if req.Credits.IsNegative() || req.Amount.IsNegative() {
		return domain.ErrInvalidAmount
	}

	if err := s.repo.InsertRecharge(ctx, tx, &domain.RechargeRecord{
		ID:             s.node.Generate(),
		UserID:         req.UserID,
		Time:           s.clock.Now(),
		Amount:         req.Amount,
		Currency:       req.Currency,
		RechargeCredit: req.Credits,
		RechargeKind:   req.Kind,
	}); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.LedgerRecharges.WithLabelValues(string(req.Kind)).Inc()
	}
	s.log.Info("credit committed",
		zap.String("user_id", req.UserID),
		zap.String("kind", string(req.Kind)),
		zap.String("credits", req.Credits.String()),
	)
	return nil
}

func (s *service) SpendHistory(ctx context.Context, userID string) ([]domain.SpendRecord, error) {
	return s.repo.ListSpend(ctx, s.db, userID)
}

func (s *service) RechargeHistory(ctx context.Context, userID string) ([]domain.RechargeRecord, error) {
	return s.repo.ListRecharge(ctx, s.db, userID)
}

func (s *service) UsageHistory(ctx context.Context, userID string) ([]domain.UsageRecord, error) {
	return s.repo.ListUsage(ctx, s.db, userID)
}

func (s *service) HumanizeHistory(ctx context.Context, userID string) ([]domain.HumanizeRecord, error) {
	return s.repo.ListHumanize(ctx, s.db, userID)
}

func (s *service) CheckHistory(ctx context.Context, userID string) ([]domain.CheckRecord, error) {
	return s.repo.ListCheck(ctx, s.db, userID)
}
