package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wordhaven/creditledger/internal/ledger/domain"
)

type repository struct{}

// New returns the gorm-backed ledger repository. Every method takes the
// transaction handle so the service decides unit-of-work boundaries.
func New() domain.Repository {
	return &repository{}
}

// LockUser takes a row lock on the user so concurrent debits for the same
// user serialize. SQLite has a single writer and rejects FOR UPDATE, so the
// locking clause is skipped there.
func (r *repository) LockUser(ctx context.Context, tx *gorm.DB, userID string) (bool, error) {
	q := tx.WithContext(ctx).Table("users").Select("user_id").Where("user_id = ?", userID)
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row struct {
		UserID string
	}
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repository) SumSpend(ctx context.Context, tx *gorm.DB, userID string) (decimal.Decimal, error) {
	return r.sum(ctx, tx, "SELECT COALESCE(SUM(spend_credit), 0) AS total FROM spend_history WHERE user_id = ?", userID)
}

func (r *repository) SumRecharge(ctx context.Context, tx *gorm.DB, userID string) (decimal.Decimal, error) {
	return r.sum(ctx, tx, "SELECT COALESCE(SUM(recharge_credit), 0) AS total FROM recharge_history WHERE user_id = ?", userID)
}

func (r *repository) sum(ctx context.Context, tx *gorm.DB, query, userID string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := tx.WithContext(ctx).Raw(query, userID).Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *repository) InsertSpend(ctx context.Context, tx *gorm.DB, record *domain.SpendRecord) error {
	return tx.WithContext(ctx).Create(record).Error
}

func (r *repository) InsertRecharge(ctx context.Context, tx *gorm.DB, record *domain.RechargeRecord) error {
	return tx.WithContext(ctx).Create(record).Error
}

func (r *repository) InsertUsage(ctx context.Context, tx *gorm.DB, record *domain.UsageRecord) error {
	return tx.WithContext(ctx).Create(record).Error
}

func (r *repository) InsertHumanize(ctx context.Context, tx *gorm.DB, record *domain.HumanizeRecord) error {
	return tx.WithContext(ctx).Create(record).Error
}

func (r *repository) InsertCheck(ctx context.Context, tx *gorm.DB, record *domain.CheckRecord) error {
	return tx.WithContext(ctx).Create(record).Error
}

func (r *repository) ListSpend(ctx context.Context, tx *gorm.DB, userID string) ([]domain.SpendRecord, error) {
	var records []domain.SpendRecord
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("time DESC").
		Find(&records).Error
	return records, err
}

func (r *repository) ListRecharge(ctx context.Context, tx *gorm.DB, userID string) ([]domain.RechargeRecord, error) {
	var records []domain.RechargeRecord
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("time DESC").
		Find(&records).Error
	return records, err
}

func (r *repository) ListUsage(ctx context.Context, tx *gorm.DB, userID string) ([]domain.UsageRecord, error) {
	var records []domain.UsageRecord
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("time DESC").
		Find(&records).Error
	return records, err
}

func (r *repository) ListHumanize(ctx context.Context, tx *gorm.DB, userID string) ([]domain.HumanizeRecord, error) {
	var records []domain.HumanizeRecord
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("time DESC").
		Find(&records).Error
	return records, err
}

func (r *repository) ListCheck(ctx context.Context, tx *gorm.DB, userID string) ([]domain.CheckRecord, error) {
	var records []domain.CheckRecord
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("time DESC").
		Find(&records).Error
	return records, err
}
