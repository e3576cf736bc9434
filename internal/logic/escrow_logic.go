package logic

import (
	"context"
	"encoding/json"
	"math"
	"math/bits"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blues/launchpad/internal/auth"
	"github.com/blues/launchpad/internal/clock"
	"github.com/blues/launchpad/internal/errs"
	"github.com/blues/launchpad/internal/ledger"
	"github.com/blues/launchpad/internal/lock"
	"github.com/blues/launchpad/internal/logger"
	"github.com/blues/launchpad/internal/model"
	"github.com/blues/launchpad/internal/repository"
)

const defaultLockTimeout = 5 * time.Second

// EscrowLogic 众筹托管业务逻辑
type EscrowLogic struct {
	db            *gorm.DB
	projects      *repository.ProjectRepository
	contributions *repository.ContributionRepository
	events        *repository.EventRepository
	ledger        *ledger.Ledger
	clock         clock.Clock
	locker        lock.Locker
	newID         func() string
	lockTimeout   time.Duration
}

// Option 托管逻辑可选项
type Option func(*EscrowLogic)

// WithIDGenerator 替换记录 ID 生成器
func WithIDGenerator(fn func() string) Option {
	return func(l *EscrowLogic) {
		l.newID = fn
	}
}

// WithLockTimeout 设置获取项目锁的最长等待时间
func WithLockTimeout(d time.Duration) Option {
	return func(l *EscrowLogic) {
		if d > 0 {
			l.lockTimeout = d
		}
	}
}

// NewEscrowLogic 创建托管业务逻辑
func NewEscrowLogic(db *gorm.DB, ldg *ledger.Ledger, clk clock.Clock, locker lock.Locker, opts ...Option) *EscrowLogic {
	l := &EscrowLogic{
		db:            db,
		projects:      repository.NewProjectRepository(db),
		contributions: repository.NewContributionRepository(db),
		events:        repository.NewEventRepository(db),
		ledger:        ldg,
		clock:         clk,
		locker:        locker,
		newID:         uuid.NewString,
		lockTimeout:   defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// InitializeProject 创建众筹项目，不涉及资金转移
func (l *EscrowLogic) InitializeProject(ctx context.Context, owner auth.Principal, name, description string, goalAmount uint64, duration int64) (*model.ProjectModel, error) {
	if owner.IsZero() {
		return nil, errs.WithField(errs.CodeInvalidPrincipal, "owner required", "owner")
	}
	if goalAmount == 0 {
		return nil, errs.ErrInvalidGoalAmount
	}
	if goalAmount > l.ledger.Max() {
		return nil, errs.ErrOverflow
	}
	if duration <= 0 {
		return nil, errs.ErrInvalidDuration
	}
	if len(name) > model.MaxNameLength {
		return nil, errs.ErrNameTooLong
	}
	if len(description) > model.MaxDescriptionLength {
		return nil, errs.ErrDescriptionTooLong
	}

	now := l.clock.Now().Unix()
	if duration > math.MaxInt64-now {
		return nil, errs.ErrInvalidDuration
	}

	id := l.newID()
	project := &model.ProjectModel{
		Id:           id,
		Owner:        owner.String(),
		Name:         name,
		Description:  description,
		GoalAmount:   goalAmount,
		StartTime:    now,
		EndTime:      now + duration,
		IsActive:     true,
		VaultAddress: auth.VaultAddress(id),
	}

	err := l.transaction(ctx, func(tx *gorm.DB) error {
		if err := l.projects.WithTx(tx).Create(ctx, project); err != nil {
			return err
		}
		return l.appendEvent(ctx, tx, project.Id, "", model.EventProjectInitialized, project.Owner, 0, map[string]interface{}{
			"goal_amount": project.GoalAmount,
			"end_time":    project.EndTime,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Project %s initialized by %s, goal %d, ends at %d", project.Id, project.Owner, project.GoalAmount, project.EndTime)
	return project, nil
}

// Contribute 向项目出资，资金从贡献者转入托管地址
func (l *EscrowLogic) Contribute(ctx context.Context, projectID string, contributor auth.Principal, amount uint64) (*model.ContributionModel, error) {
	var contribution *model.ContributionModel
	var project *model.ProjectModel

	err := l.withProjectLock(ctx, projectID, func(tx *gorm.DB) error {
		p, err := l.projects.WithTx(tx).GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		now := l.clock.Now()

		if !p.IsActive {
			return errs.ErrProjectNotActive
		}
		if p.Ended(now.Unix()) {
			return errs.ErrProjectEnded
		}
		if amount == 0 {
			return errs.ErrInvalidContributionAmount
		}
		total, carry := bits.Add64(p.CurrentAmount, amount, 0)
		if carry != 0 || total > l.ledger.Max() {
			return errs.ErrOverflow
		}

		c := &model.ContributionModel{
			Id:          l.newID(),
			ProjectId:   p.Id,
			Contributor: contributor.String(),
			Amount:      amount,
		}
		if err := l.contributions.WithTx(tx).Create(ctx, c); err != nil {
			return err
		}

		p.CurrentAmount = total
		if p.CurrentAmount >= p.GoalAmount {
			p.GoalReached = true
		}
		if err := l.projects.WithTx(tx).UpdateFunding(ctx, p); err != nil {
			return err
		}

		if err := l.appendEvent(ctx, tx, p.Id, c.Id, model.EventContributionMade, c.Contributor, amount, map[string]interface{}{
			"current_amount": p.CurrentAmount,
			"goal_reached":   p.GoalReached,
		}); err != nil {
			return err
		}

		// 转账必须是最后一步
		if err := l.ledger.Transfer(ctx, tx, c.Contributor, p.VaultAddress, amount); err != nil {
			return err
		}

		contribution, project = c, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Contribution %s: %s pledged %d to project %s, current %d/%d",
		contribution.Id, contribution.Contributor, amount, project.Id, project.CurrentAmount, project.GoalAmount)
	return contribution, nil
}

// WithdrawFunds 项目达标且截止后，所有者提取托管地址的全部余额
func (l *EscrowLogic) WithdrawFunds(ctx context.Context, projectID string, caller auth.Principal) (uint64, error) {
	var withdrawn uint64

	err := l.withProjectLock(ctx, projectID, func(tx *gorm.DB) error {
		p, err := l.projects.WithTx(tx).GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		now := l.clock.Now()

		if p.Owner != caller.String() {
			return errs.ErrUnauthorized
		}
		if !p.GoalReached {
			return errs.ErrGoalNotReached
		}
		if !p.Ended(now.Unix()) {
			return errs.ErrProjectNotEnded
		}
		if !p.IsActive {
			return errs.ErrProjectNotActive
		}

		balance, err := l.ledger.Balance(ctx, tx, p.VaultAddress)
		if err != nil {
			return err
		}
		if err := l.projects.WithTx(tx).Deactivate(ctx, p.Id); err != nil {
			return err
		}
		if err := l.appendEvent(ctx, tx, p.Id, "", model.EventFundsWithdrawn, p.Owner, balance, map[string]interface{}{
			"current_amount": p.CurrentAmount,
		}); err != nil {
			return err
		}
		if err := l.ledger.Transfer(ctx, tx, p.VaultAddress, p.Owner, balance); err != nil {
			return err
		}

		withdrawn = balance
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("Project %s closed, %d withdrawn by %s", projectID, withdrawn, caller.String())
	return withdrawn, nil
}

// ClaimRefund 项目截止未达标时，贡献者取回单笔贡献
func (l *EscrowLogic) ClaimRefund(ctx context.Context, projectID, contributionID string, caller auth.Principal) (*model.ContributionModel, error) {
	var refunded *model.ContributionModel

	// 退款与出资、提取共用托管地址，使用同一把项目锁
	err := l.withProjectLock(ctx, projectID, func(tx *gorm.DB) error {
		p, err := l.projects.WithTx(tx).GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		c, err := l.contributions.WithTx(tx).GetForUpdate(ctx, contributionID)
		if err != nil {
			return err
		}
		now := l.clock.Now()

		if c.ProjectId != p.Id {
			return errs.ErrContributionNotFound
		}
		if c.Contributor != caller.String() {
			return errs.ErrUnauthorized
		}
		if p.GoalReached {
			return errs.ErrGoalReached
		}
		if !p.Ended(now.Unix()) {
			return errs.ErrProjectNotEnded
		}
		if c.Withdrawn {
			return errs.ErrAlreadyWithdrawn
		}

		if err := l.contributions.WithTx(tx).MarkWithdrawn(ctx, c.Id, now); err != nil {
			return err
		}
		if err := l.appendEvent(ctx, tx, p.Id, c.Id, model.EventRefundClaimed, c.Contributor, c.Amount, nil); err != nil {
			return err
		}
		if err := l.ledger.Transfer(ctx, tx, p.VaultAddress, c.Contributor, c.Amount); err != nil {
			return err
		}

		c.Withdrawn = true
		c.RefundedAt = &now
		refunded = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Contribution %s refunded %d to %s", refunded.Id, refunded.Amount, refunded.Contributor)
	return refunded, nil
}

// withProjectLock 在项目锁内执行一个事务
func (l *EscrowLogic) withProjectLock(ctx context.Context, projectID string, fn func(tx *gorm.DB) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, l.lockTimeout)
	defer cancel()

	unlock, err := l.locker.Lock(lockCtx, "launchpad:project:"+projectID)
	if err != nil {
		return err
	}
	defer unlock()

	return l.transaction(ctx, fn)
}

func (l *EscrowLogic) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := l.db.WithContext(ctx).Transaction(fn)
	if err != nil && errs.CodeOf(err) == errs.CodeUnknown {
		return errs.Wrap(errs.CodeStorageUnavailable, "commit transaction", err)
	}
	return err
}

func (l *EscrowLogic) appendEvent(ctx context.Context, tx *gorm.DB, projectID, contributionID string, eventType model.EventType, actor string, amount uint64, data map[string]interface{}) error {
	event := &model.EventModel{
		ProjectId:      projectID,
		ContributionId: contributionID,
		EventType:      eventType,
		Actor:          actor,
		Amount:         amount,
	}
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return errs.Wrap(errs.CodeInvalidArgument, "encode event data", err)
		}
		event.Data = string(raw)
	}
	return l.events.WithTx(tx).Append(ctx, event)
}
