package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SpendKind identifies the billable action behind a spend row.
type SpendKind string

const (
	SpendKindHumanize SpendKind = "humanize"
	SpendKindCheck    SpendKind = "check"
)

func (k SpendKind) Valid() bool {
	return k == SpendKindHumanize || k == SpendKindCheck
}

// RechargeKind identifies how credits entered a balance.
type RechargeKind string

const (
	RechargeKindPaid     RechargeKind = "paid"
	RechargeKindGift     RechargeKind = "gift"
	RechargeKindReferral RechargeKind = "referral"
)

func (k RechargeKind) Valid() bool {
	switch k {
	case RechargeKindPaid, RechargeKindGift, RechargeKindReferral:
		return true
	}
	return false
}

// SpendRecord is an immutable debit entry. Rows are never updated or deleted.
type SpendRecord struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	UserID      string          `gorm:"size:255;not null;index"`
	Time        time.Time       `gorm:"not null;index"`
	SpendCredit decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	SpendKind   SpendKind       `gorm:"type:text;not null"`
}

func (SpendRecord) TableName() string { return "spend_history" }

// RechargeRecord is an immutable credit entry. Amount is the paid amount in
// major units; zero for gifts and referral rewards.
type RechargeRecord struct {
	ID             snowflake.ID    `gorm:"primaryKey"`
	UserID         string          `gorm:"size:255;not null;index"`
	Time           time.Time       `gorm:"not null;index"`
	Amount         decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Currency       string          `gorm:"size:16;not null"`
	RechargeCredit decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	RechargeKind   RechargeKind    `gorm:"type:text;not null"`
}

func (RechargeRecord) TableName() string { return "recharge_history" }

// UsageRecord tracks provider-side consumption for a billable action. It is
// internal cost accounting and never charged to the user.
type UsageRecord struct {
	ID              snowflake.ID    `gorm:"primaryKey"`
	UserID          string          `gorm:"size:255;not null;index"`
	Time            time.Time       `gorm:"not null;index"`
	UsageKind       SpendKind       `gorm:"type:text;not null"`
	SpendWords      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	ProviderBalance decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (UsageRecord) TableName() string { return "api_history" }

// HumanizeRecord stores one humanization request with its serialized result.
type HumanizeRecord struct {
	ID         snowflake.ID   `gorm:"primaryKey"`
	UserID     string         `gorm:"size:255;not null;index"`
	Time       time.Time      `gorm:"not null;index"`
	OriginText string         `gorm:"type:text;not null"`
	ResultJSON datatypes.JSON `gorm:"not null"`
	WordCount  int            `gorm:"not null"`
}

func (HumanizeRecord) TableName() string { return "humanize_history" }

// CheckRecord stores one AI-detection request with its serialized verdict.
type CheckRecord struct {
	ID         snowflake.ID   `gorm:"primaryKey"`
	UserID     string         `gorm:"size:255;not null;index"`
	Time       time.Time      `gorm:"not null;index"`
	OriginText string         `gorm:"type:text;not null"`
	ResultJSON datatypes.JSON `gorm:"not null"`
	WordCount  int            `gorm:"not null"`
}

func (CheckRecord) TableName() string { return "check_history" }
