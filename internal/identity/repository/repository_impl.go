package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wordhaven/creditledger/internal/identity/domain"
)

type repository struct{}

func New() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, tx *gorm.DB, user *domain.User) error {
	return tx.WithContext(ctx).Create(user).Error
}

func (r *repository) FindByID(ctx context.Context, tx *gorm.DB, userID string) (*domain.User, error) {
	var user domain.User
	err := tx.WithContext(ctx).Where("user_id = ?", userID).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnknownUser
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := tx.WithContext(ctx).Where("user_email = ?", email).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnknownUser
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdateField(ctx context.Context, tx *gorm.DB, userID string, field domain.UpdateField, value string) error {
	res := tx.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Update(string(field), value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUnknownUser
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, tx *gorm.DB, userID string) error {
	res := tx.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUnknownUser
	}
	return nil
}

func (r *repository) ExistsByID(ctx context.Context, tx *gorm.DB, userID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_email = ?", email).
		Count(&count).Error
	return count > 0, err
}
