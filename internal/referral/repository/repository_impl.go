package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wordhaven/creditledger/internal/referral/domain"
)

type repository struct{}

func New() domain.Repository {
	return &repository{}
}

func (r *repository) InsertCode(ctx context.Context, tx *gorm.DB, code *domain.Code) error {
	return tx.WithContext(ctx).Create(code).Error
}

func (r *repository) FindCodeByUser(ctx context.Context, tx *gorm.DB, userID string) (*domain.Code, error) {
	var code domain.Code
	err := tx.WithContext(ctx).Where("user_id = ?", userID).Take(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

func (r *repository) FindCodeByCode(ctx context.Context, tx *gorm.DB, code string) (*domain.Code, error) {
	var row domain.Code
	err := tx.WithContext(ctx).Where("code = ?", code).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) InsertRedemption(ctx context.Context, tx *gorm.DB, redemption *domain.Redemption) error {
	return tx.WithContext(ctx).Create(redemption).Error
}

func (r *repository) RefereeRedeemed(ctx context.Context, tx *gorm.DB, refereeID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&domain.Redemption{}).
		Where("referee_user_id = ?", refereeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListRedemptionsByUser(ctx context.Context, tx *gorm.DB, userID string) ([]domain.Redemption, error) {
	var redemptions []domain.Redemption
	err := tx.WithContext(ctx).
		Where("referrer_user_id = ? OR referee_user_id = ?", userID, userID).
		Order("time DESC").
		Find(&redemptions).Error
	return redemptions, err
}
