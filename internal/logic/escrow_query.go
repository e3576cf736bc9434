package logic

import (
	"context"

	"github.com/blues/launchpad/internal/auth"
	"github.com/blues/launchpad/internal/errs"
	"github.com/blues/launchpad/internal/logger"
	"github.com/blues/launchpad/internal/model"
	"github.com/blues/launchpad/internal/repository"
)

// ProjectView 项目详情及推导字段
type ProjectView struct {
	model.ProjectModel
	Status        model.ProjectStatus `json:"status"`
	RemainingTime int64               `json:"remaining_time"`
	Progress      float64             `json:"progress"`
}

// ProjectStats 项目统计信息
type ProjectStats struct {
	ProjectId     string              `json:"project_id"`
	Status        model.ProjectStatus `json:"status"`
	GoalAmount    uint64              `json:"goal_amount"`
	CurrentAmount uint64              `json:"current_amount"`
	Progress      float64             `json:"progress"`
	RemainingTime int64               `json:"remaining_time"`
	VaultAddress  string              `json:"vault_address"`
	VaultBalance  uint64              `json:"vault_balance"`
	repository.ContributionStats
}

// GetProject 获取项目详情
func (l *EscrowLogic) GetProject(ctx context.Context, projectID string) (*ProjectView, error) {
	p, err := l.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	view := l.view(*p)
	return &view, nil
}

// ListProjects 分页获取项目列表
func (l *EscrowLogic) ListProjects(ctx context.Context, filter repository.ProjectFilter, page, pageSize int) ([]ProjectView, int64, error) {
	projects, total, err := l.projects.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, l.view(p))
	}
	return views, total, nil
}

// GetRemainingTime 距截止的秒数，截止后为 0
func (l *EscrowLogic) GetRemainingTime(ctx context.Context, projectID string) (int64, error) {
	p, err := l.projects.Get(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return p.RemainingTime(l.clock.Now().Unix()), nil
}

// GetProgress 筹款完成百分比
func (l *EscrowLogic) GetProgress(ctx context.Context, projectID string) (float64, error) {
	p, err := l.projects.Get(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return p.Progress(), nil
}

// GetContribution 获取项目下的一笔贡献
func (l *EscrowLogic) GetContribution(ctx context.Context, projectID, contributionID string) (*model.ContributionModel, error) {
	c, err := l.contributions.Get(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	if c.ProjectId != projectID {
		return nil, errs.ErrContributionNotFound
	}
	return c, nil
}

// ListContributions 分页获取项目的贡献记录
func (l *EscrowLogic) ListContributions(ctx context.Context, projectID string, filter repository.ContributionFilter, page, pageSize int) ([]model.ContributionModel, int64, error) {
	if _, err := l.projects.Get(ctx, projectID); err != nil {
		return nil, 0, err
	}
	return l.contributions.List(ctx, projectID, filter, page, pageSize)
}

// ContributedBy 某地址对项目的累计出资
func (l *EscrowLogic) ContributedBy(ctx context.Context, projectID string, contributor auth.Principal) (uint64, error) {
	if _, err := l.projects.Get(ctx, projectID); err != nil {
		return 0, err
	}
	return l.contributions.SumByContributor(ctx, projectID, contributor.String())
}

// GetProjectStats 获取项目统计信息
func (l *EscrowLogic) GetProjectStats(ctx context.Context, projectID string) (*ProjectStats, error) {
	p, err := l.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	stats, err := l.contributions.Stats(ctx, projectID)
	if err != nil {
		return nil, err
	}
	balance, err := l.ledger.Balance(ctx, nil, p.VaultAddress)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now().Unix()
	return &ProjectStats{
		ProjectId:         p.Id,
		Status:            p.Status(now),
		GoalAmount:        p.GoalAmount,
		CurrentAmount:     p.CurrentAmount,
		Progress:          p.Progress(),
		RemainingTime:     p.RemainingTime(now),
		VaultAddress:      p.VaultAddress,
		VaultBalance:      balance,
		ContributionStats: stats,
	}, nil
}

// Balance 查询账本余额
func (l *EscrowLogic) Balance(ctx context.Context, holder auth.Principal) (uint64, error) {
	return l.ledger.Balance(ctx, nil, holder.String())
}

// Deposit 向地址注入资金
func (l *EscrowLogic) Deposit(ctx context.Context, holder auth.Principal, amount uint64) (uint64, error) {
	balance, err := l.ledger.Deposit(ctx, holder.String(), amount)
	if err != nil {
		return 0, err
	}
	logger.Info("Deposited %d to %s, balance %d", amount, holder.String(), balance)
	return balance, nil
}

func (l *EscrowLogic) view(p model.ProjectModel) ProjectView {
	now := l.clock.Now().Unix()
	return ProjectView{
		ProjectModel:  p,
		Status:        p.Status(now),
		RemainingTime: p.RemainingTime(now),
		Progress:      p.Progress(),
	}
}
