package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wordhaven/creditledger/internal/clock"
	"github.com/wordhaven/creditledger/internal/identity/domain"
	"github.com/wordhaven/creditledger/internal/identity/repository"
	ledgerdomain "github.com/wordhaven/creditledger/internal/ledger/domain"
	ledgerrepository "github.com/wordhaven/creditledger/internal/ledger/repository"
	ledgerservice "github.com/wordhaven/creditledger/internal/ledger/service"
)

func newFixture(t *testing.T) (*gorm.DB, domain.Service, ledgerdomain.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.User{},
		&ledgerdomain.SpendRecord{},
		&ledgerdomain.RechargeRecord{},
		&ledgerdomain.UsageRecord{},
		&ledgerdomain.HumanizeRecord{},
		&ledgerdomain.CheckRecord{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC))

	ledger := ledgerservice.New(ledgerservice.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		Node:  node,
		Repo:  ledgerrepository.New(),
		Clock: fake,
	})
	identity := New(Params{
		DB:     conn,
		Log:    zap.NewNop(),
		Repo:   repository.New(),
		Ledger: ledger,
		Clock:  fake,
	})
	return conn, identity, ledger
}

func TestRegisterGrantsWelcomeGift(t *testing.T) {
	_, identity, ledger := newFixture(t)
	ctx := context.Background()

	user, err := identity.Register(ctx, domain.RegisterRequest{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.UserID)
	assert.Equal(t, "alice@example.com", user.UserEmail, "email is stored lowercased")

	balance, err := ledger.Balance(ctx, user.UserID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(500)), "got %s", balance)

	recharges, err := ledger.RechargeHistory(ctx, user.UserID)
	require.NoError(t, err)
	require.Len(t, recharges, 1)
	assert.Equal(t, ledgerdomain.RechargeKindGift, recharges[0].RechargeKind)
	assert.True(t, recharges[0].Amount.IsZero(), "gift carries no paid amount")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, identity, _ := newFixture(t)
	ctx := context.Background()

	_, err := identity.Register(ctx, domain.RegisterRequest{Name: "a", Email: "dup@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = identity.Register(ctx, domain.RegisterRequest{Name: "b", Email: "dup@example.com", Password: "y"})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	_, identity, _ := newFixture(t)
	ctx := context.Background()

	_, err := identity.Register(ctx, domain.RegisterRequest{Name: "", Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = identity.Register(ctx, domain.RegisterRequest{Name: "a", Email: "", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = identity.Register(ctx, domain.RegisterRequest{Name: "a", Email: "a@b.c", Password: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	_, identity, _ := newFixture(t)
	ctx := context.Background()

	registered, err := identity.Register(ctx, domain.RegisterRequest{
		Name: "Bob", Email: "bob@example.com", Password: "hunter2",
	})
	require.NoError(t, err)

	user, err := identity.Login(ctx, "bob@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, user.UserID)

	_, err = identity.Login(ctx, "bob@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	_, err = identity.Login(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
}

func TestUpdateClosedFieldSet(t *testing.T) {
	_, identity, _ := newFixture(t)
	ctx := context.Background()

	user, err := identity.Register(ctx, domain.RegisterRequest{
		Name: "Carol", Email: "carol@example.com", Password: "pw",
	})
	require.NoError(t, err)

	require.NoError(t, identity.Update(ctx, domain.UpdateRequest{
		UserID: user.UserID, Field: domain.FieldName, Value: "Caroline",
	}))
	updated, err := identity.Get(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Caroline", updated.UserName)

	// Password updates re-hash; the stored value is never the raw input.
	require.NoError(t, identity.Update(ctx, domain.UpdateRequest{
		UserID: user.UserID, Field: domain.FieldPasswordHash, Value: "newpw",
	}))
	_, err = identity.Login(ctx, "carol@example.com", "newpw")
	require.NoError(t, err)

	err = identity.Update(ctx, domain.UpdateRequest{
		UserID: user.UserID, Field: "is_admin", Value: "true",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidField)

	err = identity.Update(ctx, domain.UpdateRequest{
		UserID: "ghost", Field: domain.FieldName, Value: "x",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}

func TestDeleteKeepsLedgerHistory(t *testing.T) {
	_, identity, ledger := newFixture(t)
	ctx := context.Background()

	user, err := identity.Register(ctx, domain.RegisterRequest{
		Name: "Dave", Email: "dave@example.com", Password: "pw",
	})
	require.NoError(t, err)

	require.NoError(t, identity.Delete(ctx, user.UserID))

	exists, err := identity.ExistsByID(ctx, user.UserID)
	require.NoError(t, err)
	assert.False(t, exists)

	recharges, err := ledger.RechargeHistory(ctx, user.UserID)
	require.NoError(t, err)
	assert.Len(t, recharges, 1, "ledger rows outlive the profile")
}
