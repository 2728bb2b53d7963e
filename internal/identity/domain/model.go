package domain

import "time"

// User is the account row every ledger entry references by user_id. Deleting
// a user removes only this row; history tables keep their entries.
type User struct {
	UserID       string    `gorm:"primaryKey;size:255"`
	UserName     string    `gorm:"size:255;not null"`
	UserEmail    string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:512;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (User) TableName() string { return "users" }
