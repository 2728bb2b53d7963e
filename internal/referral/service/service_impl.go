package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wordhaven/creditledger/internal/clock"
	identitydomain "github.com/wordhaven/creditledger/internal/identity/domain"
	ledgerdomain "github.com/wordhaven/creditledger/internal/ledger/domain"
	"github.com/wordhaven/creditledger/internal/referral/domain"
	"github.com/wordhaven/creditledger/pkg/db"
)

// Reward split: the referee gets half of the qualifying recharge, the
// referrer a quarter. Both are zero-amount recharges; no money moves.
var (
	referrerShare = decimal.RequireFromString("0.25")
	refereeShare  = decimal.RequireFromString("0.50")
)

const (
	rewardCurrency = "USD"
	codeLength     = 10
	issueAttempts  = 5
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Node     *snowflake.Node
	Repo     domain.Repository
	Identity identitydomain.Service
	Ledger   ledgerdomain.Service
	Clock    clock.Clock
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	node     *snowflake.Node
	repo     domain.Repository
	identity identitydomain.Service
	ledger   ledgerdomain.Service
	clock    clock.Clock
}

func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("referral.service"),
		node:     p.Node,
		repo:     p.Repo,
		identity: p.Identity,
		ledger:   p.Ledger,
		clock:    p.Clock,
	}
}

func (s *service) IssueCode(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrInvalidInput
	}
	exists, err := s.identity.ExistsByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", domain.ErrUnknownUser
	}

	existing, err := s.repo.FindCodeByUser(ctx, s.db, userID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.Code, nil
	}

	// A duplicate key here is either a code collision or a concurrent issue
	// for the same user; regenerate and re-check until one wins.
	for attempt := 0; attempt < issueAttempts; attempt++ {
		now := s.clock.Now()
		code := &domain.Code{
			Code:      generateCode(userID, now.Format("2006-01-02 15:04:05"), attempt),
			UserID:    userID,
			CreatedAt: now,
		}
		err := s.repo.InsertCode(ctx, s.db, code)
		if err == nil {
			s.log.Info("referral code issued", zap.String("user_id", userID))
			return code.Code, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return "", err
		}

		existing, lookupErr := s.repo.FindCodeByUser(ctx, s.db, userID)
		if lookupErr != nil {
			return "", lookupErr
		}
		if existing != nil {
			return existing.Code, nil
		}
	}
	return "", fmt.Errorf("issue referral code for %s: exhausted attempts", userID)
}

func generateCode(userID, timestamp string, attempt int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", userID, timestamp, attempt)))
	return strings.ToUpper(hex.EncodeToString(sum[:]))[:codeLength]
}

func (s *service) Redeem(ctx context.Context, refereeID, code string, rechargeCredit decimal.Decimal) error {
	referrerID, err := s.checkRedeemable(ctx, refereeID, code, rechargeCredit)
	if err != nil {
		return err
	}

	refereeReward := rechargeCredit.Mul(refereeShare)
	referrerReward := rechargeCredit.Mul(referrerShare)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertRedemption(ctx, tx, &domain.Redemption{
			ID:             s.node.Generate(),
			ReferrerUserID: referrerID,
			RefereeUserID:  refereeID,
			Code:           code,
			Time:           s.clock.Now(),
			RechargeCredit: rechargeCredit,
		}); err != nil {
			return err
		}

		if err := s.ledger.CreditTx(ctx, tx, ledgerdomain.CreditRequest{
			UserID:   refereeID,
			Amount:   decimal.Zero,
			Currency: rewardCurrency,
			Credits:  refereeReward,
			Kind:     ledgerdomain.RechargeKindReferral,
		}); err != nil {
			return err
		}

		return s.ledger.CreditTx(ctx, tx, ledgerdomain.CreditRequest{
			UserID:   referrerID,
			Amount:   decimal.Zero,
			Currency: rewardCurrency,
			Credits:  referrerReward,
			Kind:     ledgerdomain.RechargeKindReferral,
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrAlreadyReferred
		}
		return err
	}

	s.log.Info("referral redeemed",
		zap.String("referrer", referrerID),
		zap.String("referee", refereeID),
		zap.String("credit", rechargeCredit.String()),
	)
	return nil
}

// checkRedeemable runs the precondition chain in a fixed order and returns
// the referrer behind the code.
func (s *service) checkRedeemable(ctx context.Context, refereeID, code string, rechargeCredit decimal.Decimal) (string, error) {
	if refereeID == "" || code == "" {
		return "", domain.ErrInvalidInput
	}

	exists, err := s.identity.ExistsByID(ctx, refereeID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", domain.ErrUnknownUser
	}

	codeRow, err := s.repo.FindCodeByCode(ctx, s.db, code)
	if err != nil {
		return "", err
	}
	if codeRow == nil {
		return "", domain.ErrUnknownCode
	}

	if rechargeCredit.LessThanOrEqual(decimal.Zero) {
		return "", domain.ErrInvalidAmount
	}

	redeemed, err := s.repo.RefereeRedeemed(ctx, s.db, refereeID)
	if err != nil {
		return "", err
	}
	if redeemed {
		return "", domain.ErrAlreadyReferred
	}

	referrerExists, err := s.identity.ExistsByID(ctx, codeRow.UserID)
	if err != nil {
		return "", err
	}
	if !referrerExists {
		return "", domain.ErrUnknownCode
	}

	if codeRow.UserID == refereeID {
		return "", domain.ErrSelfReferral
	}
	return codeRow.UserID, nil
}

func (s *service) CheckEligible(ctx context.Context, userID, code string) bool {
	// Eligibility needs a positive credit; probe with one.
	_, err := s.checkRedeemable(ctx, userID, code, decimal.NewFromInt(1))
	return err == nil
}

func (s *service) History(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	exists, err := s.identity.ExistsByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUnknownUser
	}

	redemptions, err := s.repo.ListRedemptionsByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.HistoryEntry, 0, len(redemptions))
	for _, redemption := range redemptions {
		entry := domain.HistoryEntry{
			Code:           redemption.Code,
			Time:           redemption.Time,
			RechargeCredit: redemption.RechargeCredit,
		}
		if referrer, err := s.identity.Get(ctx, redemption.ReferrerUserID); err == nil {
			entry.ReferrerName = referrer.UserName
		}
		if referee, err := s.identity.Get(ctx, redemption.RefereeUserID); err == nil {
			entry.RefereeName = referee.UserName
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
