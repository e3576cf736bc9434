// Package ledger 实现托管转账原语：在同一事务内原子地扣减和入账，
// 余额不足时显式失败。
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blues/launchpad/internal/errs"
	"github.com/blues/launchpad/internal/model"
)

// Ledger 账本
type Ledger struct {
	db  *gorm.DB
	max uint64
}

// New 创建账本
func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db, max: capacity(db)}
}

// capacity sqlite 的 INTEGER 为有符号 64 位，其余存储为 numeric(20,0)
func capacity(db *gorm.DB) uint64 {
	if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return math.MaxInt64
	}
	return math.MaxUint64
}

// Max 存储可容纳的最大金额，超过即视为溢出
func (l *Ledger) Max() uint64 {
	return l.max
}

// add 受存储容量约束的加法
func (l *Ledger) add(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0 && sum <= l.max
}

// Transfer 在 tx 中把 amount 从 from 转到 to
func (l *Ledger) Transfer(ctx context.Context, tx *gorm.DB, from, to string, amount uint64) error {
	if from == to {
		return errs.New(errs.CodeInvalidArgument, "transfer to self")
	}
	if amount == 0 {
		return nil
	}

	accounts, err := lockAccounts(ctx, tx, from, to)
	if err != nil {
		return err
	}
	src, dst := accounts[from], accounts[to]

	if src.Balance < amount {
		return errs.Wrap(errs.CodeInsufficientFunds, "debit "+from,
			fmt.Errorf("balance %d < %d", src.Balance, amount))
	}
	credited, ok := l.add(dst.Balance, amount)
	if !ok {
		return errs.Wrap(errs.CodeOverflow, "credit "+to, errs.ErrOverflow)
	}

	if err := setBalance(ctx, tx, from, src.Balance-amount); err != nil {
		return err
	}
	return setBalance(ctx, tx, to, credited)
}

// Balance 在 tx 中读取余额，不存在的账户余额为 0
func (l *Ledger) Balance(ctx context.Context, tx *gorm.DB, holder string) (uint64, error) {
	if tx == nil {
		tx = l.db
	}
	var account model.AccountModel
	err := tx.WithContext(ctx).Where("holder = ?", holder).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errs.Wrap(errs.CodeStorageUnavailable, "read balance", err)
	}
	return account.Balance, nil
}

// Deposit 给账户充值，用于从外部注入资金
func (l *Ledger) Deposit(ctx context.Context, holder string, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, errs.WithField(errs.CodeInvalidArgument, "deposit amount must be positive", "amount")
	}

	var balance uint64
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts, err := lockAccounts(ctx, tx, holder)
		if err != nil {
			return err
		}
		next, ok := l.add(accounts[holder].Balance, amount)
		if !ok {
			return errs.ErrOverflow
		}
		balance = next
		return setBalance(ctx, tx, holder, next)
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// lockAccounts 按固定顺序锁定账户，缺失的账户以零余额创建
func lockAccounts(ctx context.Context, tx *gorm.DB, holders ...string) (map[string]*model.AccountModel, error) {
	sorted := append([]string(nil), holders...)
	sort.Strings(sorted)

	accounts := make(map[string]*model.AccountModel, len(sorted))
	for _, holder := range sorted {
		err := tx.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.AccountModel{Holder: holder}).Error
		if err != nil {
			return nil, errs.Wrap(errs.CodeStorageUnavailable, "open account "+holder, err)
		}

		var account model.AccountModel
		err = tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("holder = ?", holder).
			First(&account).Error
		if err != nil {
			return nil, errs.Wrap(errs.CodeStorageUnavailable, "lock account "+holder, err)
		}
		accounts[holder] = &account
	}
	return accounts, nil
}

func setBalance(ctx context.Context, tx *gorm.DB, holder string, balance uint64) error {
	err := tx.WithContext(ctx).Model(&model.AccountModel{}).
		Where("holder = ?", holder).
		Update("balance", balance).Error
	if err != nil {
		return errs.Wrap(errs.CodeStorageUnavailable, "update balance "+holder, err)
	}
	return nil
}
