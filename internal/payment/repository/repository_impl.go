package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wordhaven/creditledger/internal/payment/domain"
)

type repository struct{}

func New() domain.Repository {
	return &repository{}
}

func (r *repository) InsertIntent(ctx context.Context, tx *gorm.DB, intent *domain.Intent) error {
	return tx.WithContext(ctx).Create(intent).Error
}

func (r *repository) SecretExists(ctx context.Context, tx *gorm.DB, clientSecret string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&domain.Intent{}).
		Where("client_secret = ?", clientSecret).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ResultIDExists(ctx context.Context, tx *gorm.DB, resultID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&domain.Result{}).
		Where("result_id = ?", resultID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) InsertResult(ctx context.Context, tx *gorm.DB, result *domain.Result) error {
	return tx.WithContext(ctx).Create(result).Error
}
