package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wordhaven/creditledger/internal/clock"
	"github.com/wordhaven/creditledger/internal/identity/domain"
	"github.com/wordhaven/creditledger/internal/identity/password"
	ledgerdomain "github.com/wordhaven/creditledger/internal/ledger/domain"
	"github.com/wordhaven/creditledger/pkg/db"
)

// Every new account starts with a 500-credit welcome gift, recorded as a
// zero-amount recharge so the ledger stays the single source of balance.
var welcomeGiftCredits = decimal.NewFromInt(500)

const welcomeGiftCurrency = "USD"

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Ledger ledgerdomain.Service
	Clock  clock.Clock
}

type service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	ledger ledgerdomain.Service
	clock  clock.Clock
}

func New(p Params) domain.Service {
	return &service{
		db:     p.DB,
		log:    p.Log.Named("identity.service"),
		repo:   p.Repo,
		ledger: p.Ledger,
		clock:  p.Clock,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		UserID:       uuid.NewString(),
		UserName:     req.Name,
		UserEmail:    req.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, user); err != nil {
			return err
		}
		return s.ledger.CreditTx(ctx, tx, ledgerdomain.CreditRequest{
			UserID:   user.UserID,
			Amount:   decimal.Zero,
			Currency: welcomeGiftCurrency,
			Credits:  welcomeGiftCredits,
			Kind:     ledgerdomain.RechargeKindGift,
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.UserID))
	return user, nil
}

func (s *service) Login(ctx context.Context, email, pass string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || pass == "" {
		return nil, domain.ErrBadCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownUser) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}
	if !password.Verify(pass, user.PasswordHash) {
		return nil, domain.ErrBadCredentials
	}
	return user, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, s.db, userID)
}

func (s *service) Update(ctx context.Context, req domain.UpdateRequest) error {
	if !req.Field.Valid() {
		return domain.ErrInvalidField
	}
	if req.Value == "" {
		return domain.ErrInvalidInput
	}

	value := req.Value
	switch req.Field {
	case domain.FieldEmail:
		value = strings.ToLower(strings.TrimSpace(value))
	case domain.FieldPasswordHash:
		hash, err := password.Hash(value)
		if err != nil {
			return err
		}
		value = hash
	}

	err := s.repo.UpdateField(ctx, s.db, req.UserID, req.Field, value)
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, s.db, userID); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("user_id", userID))
	return nil
}

func (s *service) ExistsByID(ctx context.Context, userID string) (bool, error) {
	return s.repo.ExistsByID(ctx, s.db, userID)
}

func (s *service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, s.db, strings.ToLower(strings.TrimSpace(email)))
}
