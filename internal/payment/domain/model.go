package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Intent is a provider payment intent we opened. ClientSecret is the join
// key a later result must present; it is unique across providers.
type Intent struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	UserID       string       `gorm:"size:255;not null;index"`
	AmountMinor  int64        `gorm:"not null"`
	Currency     string       `gorm:"size:16;not null"`
	ClientSecret string       `gorm:"size:255;not null;uniqueIndex"`
	Provider     string       `gorm:"size:32;not null"`
	Time         time.Time    `gorm:"not null"`
}

func (Intent) TableName() string { return "payment_intents" }

// Result is the audit row for one processed provider result. It is written
// for failures too; the unique ResultID is what makes Confirm idempotent.
type Result struct {
	ID                  snowflake.ID `gorm:"primaryKey"`
	UserID              string       `gorm:"size:255;not null;index"`
	ResultID            string       `gorm:"size:255;not null;uniqueIndex"`
	AmountMinor         int64        `gorm:"not null"`
	AmountReceivedMinor int64        `gorm:"not null"`
	ClientSecret        string       `gorm:"size:255;not null"`
	Currency            string       `gorm:"size:16;not null"`
	Status              string       `gorm:"size:32;not null"`
	PaymentMethod       string       `gorm:"size:64;not null"`
	ProviderCreated     time.Time    `gorm:"not null"`
	Time                time.Time    `gorm:"not null"`
}

func (Result) TableName() string { return "payment_results" }
