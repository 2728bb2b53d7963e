package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrInvalidInput   = errors.New("invalid_input")
	ErrEmailTaken     = errors.New("email_taken")
	ErrUnknownUser    = errors.New("unknown_user")
	ErrBadCredentials = errors.New("bad_credentials")
	ErrInvalidField   = errors.New("invalid_field")
)

// UpdateField is the closed set of mutable user columns. Anything outside it
// is rejected; callers cannot name arbitrary columns.
type UpdateField string

const (
	FieldName         UpdateField = "user_name"
	FieldEmail        UpdateField = "user_email"
	FieldPasswordHash UpdateField = "password_hash"
)

func (f UpdateField) Valid() bool {
	switch f {
	case FieldName, FieldEmail, FieldPasswordHash:
		return true
	}
	return false
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

type UpdateRequest struct {
	UserID string
	Field  UpdateField
	Value  string
}

type Service interface {
	// Register creates the user and the welcome-gift recharge in one unit of
	// work. A failed gift insert rolls the account back.
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	Get(ctx context.Context, userID string) (*User, error)
	Update(ctx context.Context, req UpdateRequest) error
	// Delete removes the profile row only; ledger history stays.
	Delete(ctx context.Context, userID string) error
	ExistsByID(ctx context.Context, userID string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, user *User) error
	FindByID(ctx context.Context, tx *gorm.DB, userID string) (*User, error)
	FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error)
	UpdateField(ctx context.Context, tx *gorm.DB, userID string, field UpdateField, value string) error
	Delete(ctx context.Context, tx *gorm.DB, userID string) error
	ExistsByID(ctx context.Context, tx *gorm.DB, userID string) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}
