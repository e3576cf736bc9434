package ledger_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/blues/launchpad/internal/errs"
	"github.com/blues/launchpad/internal/ledger"
	"github.com/blues/launchpad/internal/testkit"
)

func TestTransfer_MovesFunds(t *testing.T) {
	ctx := context.Background()
	db := testkit.NewDB(t)
	l := ledger.New(db)
	alice := testkit.Principal(t, 1).String()
	vault := testkit.Principal(t, 99).String()

	_, err := l.Deposit(ctx, alice, 500)
	require.NoError(t, err)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return l.Transfer(ctx, tx, alice, vault, 200)
	}))

	got, err := l.Balance(ctx, nil, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(300), got)

	got, err = l.Balance(ctx, nil, vault)
	require.NoError(t, err)
	require.Equal(t, uint64(200), got)
}

func TestTransfer_InsufficientFundsLeavesBalances(t *testing.T) {
	ctx := context.Background()
	db := testkit.NewDB(t)
	l := ledger.New(db)
	alice := testkit.Principal(t, 1).String()
	vault := testkit.Principal(t, 99).String()

	_, err := l.Deposit(ctx, alice, 50)
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		return l.Transfer(ctx, tx, alice, vault, 51)
	})
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)

	got, err := l.Balance(ctx, nil, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(50), got)

	got, err = l.Balance(ctx, nil, vault)
	require.NoError(t, err)
	require.Zero(t, got)
}

func TestTransfer_Edges(t *testing.T) {
	ctx := context.Background()
	db := testkit.NewDB(t)
	l := ledger.New(db)
	alice := testkit.Principal(t, 1).String()
	bob := testkit.Principal(t, 2).String()

	err := l.Transfer(ctx, db, alice, alice, 1)
	require.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))

	require.NoError(t, l.Transfer(ctx, db, alice, bob, 0))

	_, err = l.Deposit(ctx, alice, 0)
	require.Equal(t, "amount", errs.Field(err))

	balance, err := l.Deposit(ctx, alice, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(10), balance)
	balance, err = l.Deposit(ctx, alice, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(15), balance)

	got, err := l.Balance(ctx, nil, bob)
	require.NoError(t, err)
	require.Zero(t, got)
}

func TestDeposit_BeyondStorageCapacityOverflows(t *testing.T) {
	ctx := context.Background()
	db := testkit.NewDB(t)
	l := ledger.New(db)
	alice := testkit.Principal(t, 1).String()
	bob := testkit.Principal(t, 2).String()
	require.Equal(t, uint64(math.MaxInt64), l.Max())

	_, err := l.Deposit(ctx, alice, math.MaxInt64)
	require.NoError(t, err)

	_, err = l.Deposit(ctx, alice, 1)
	require.Equal(t, errs.CodeOverflow, errs.CodeOf(err))
	require.False(t, errs.CodeOf(err).Retryable())

	_, err = l.Deposit(ctx, bob, 1)
	require.NoError(t, err)
	err = db.Transaction(func(tx *gorm.DB) error {
		return l.Transfer(ctx, tx, bob, alice, 1)
	})
	require.Equal(t, errs.CodeOverflow, errs.CodeOf(err))

	got, err := l.Balance(ctx, nil, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxInt64), got)
	got, err = l.Balance(ctx, nil, bob)
	require.NoError(t, err)
	require.Equal(t, uint64(1), got)
}
