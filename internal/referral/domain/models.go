package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Code is a user's referral code. One code per user; the unique user index
// makes IssueCode idempotent under concurrency.
type Code struct {
	Code      string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Code) TableName() string { return "referral_codes" }

// Redemption records one referral payout. The unique referee index enforces
// at most one redemption per referred user, whatever the code.
type Redemption struct {
	ID             snowflake.ID    `gorm:"primaryKey"`
	ReferrerUserID string          `gorm:"size:255;not null;index"`
	RefereeUserID  string          `gorm:"size:255;not null;uniqueIndex"`
	Code           string          `gorm:"size:64;not null"`
	Time           time.Time       `gorm:"not null"`
	RechargeCredit decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (Redemption) TableName() string { return "referral_redemptions" }

// HistoryEntry is a redemption enriched with display names for both sides.
type HistoryEntry struct {
	ReferrerName   string          `json:"referrer_name"`
	RefereeName    string          `json:"referee_name"`
	Code           string          `json:"code"`
	Time           time.Time       `json:"time"`
	RechargeCredit decimal.Decimal `json:"recharge_credit"`
}
