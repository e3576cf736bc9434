package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/blues/launchpad/internal/ledger"
	"github.com/blues/launchpad/internal/logger"
	"github.com/blues/launchpad/internal/model"
	"github.com/blues/launchpad/internal/repository"
)

// Drift 托管余额与账面不一致的项目
type Drift struct {
	ProjectId    string `json:"project_id"`
	VaultAddress string `json:"vault_address"`
	Expected     uint64 `json:"expected"`
	Actual       uint64 `json:"actual"`
}

// ReconcileReport 一次对账的结果
type ReconcileReport struct {
	Checked int     `json:"checked"`
	Drifts  []Drift `json:"drifts"`
	Failed  int     `json:"failed"`
}

// ReconcileJob 托管对账任务
type ReconcileJob struct {
	projects      *repository.ProjectRepository
	contributions *repository.ContributionRepository
	ledger        *ledger.Ledger
	interval      time.Duration
	workers       int
}

// NewReconcileJob 创建托管对账任务
func NewReconcileJob(projects *repository.ProjectRepository, contributions *repository.ContributionRepository, ldg *ledger.Ledger, interval time.Duration, workers int) *ReconcileJob {
	if workers <= 0 {
		workers = 4
	}
	return &ReconcileJob{
		projects:      projects,
		contributions: contributions,
		ledger:        ldg,
		interval:      interval,
		workers:       workers,
	}
}

// GetName 获取任务名称
func (j *ReconcileJob) GetName() string {
	return "escrow_reconciler"
}

// GetSchedule 获取调度配置
func (j *ReconcileJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *ReconcileJob) Execute(ctx context.Context) {
	report, err := j.Reconcile(ctx)
	if err != nil {
		logger.Error("Escrow reconcile task failed: %v", err)
		return
	}
	for _, d := range report.Drifts {
		logger.Warn("Escrow drift on project %s (%s): expected %d, actual %d",
			d.ProjectId, d.VaultAddress, d.Expected, d.Actual)
	}
	logger.Info("Escrow reconcile task completed. Checked %d projects, %d drifts, %d failed",
		report.Checked, len(report.Drifts), report.Failed)
}

// Reconcile 并发核对每个项目的托管余额
func (j *ReconcileJob) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	pool, err := ants.NewPool(j.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconcile pool: %w", err)
	}
	defer pool.Release()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report = &ReconcileReport{}
	)

	err = j.projects.Each(ctx, 100, func(batch []model.ProjectModel) error {
		for _, p := range batch {
			p := p
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()
				drift, err := j.check(ctx, p)

				mu.Lock()
				defer mu.Unlock()
				report.Checked++
				if err != nil {
					logger.Error("Failed to reconcile project %s: %v", p.Id, err)
					report.Failed++
					return
				}
				if drift != nil {
					report.Drifts = append(report.Drifts, *drift)
				}
			})
			if submitErr != nil {
				wg.Done()
				return fmt.Errorf("failed to submit reconcile task: %w", submitErr)
			}
		}
		// 本批核对完成后再读取下一批
		wg.Wait()
		return nil
	})
	wg.Wait()
	if err != nil {
		return nil, err
	}
	return report, nil
}

// check 发现不一致时重新读取项目再核对一次，排除与资金操作并发提交造成的误报
func (j *ReconcileJob) check(ctx context.Context, p model.ProjectModel) (*Drift, error) {
	drift, err := j.measure(ctx, p)
	if err != nil || drift == nil {
		return drift, err
	}
	fresh, err := j.projects.Get(ctx, p.Id)
	if err != nil {
		return nil, err
	}
	return j.measure(ctx, *fresh)
}

// measure 关闭前托管余额应等于未退款贡献之和，关闭后应为 0
func (j *ReconcileJob) measure(ctx context.Context, p model.ProjectModel) (*Drift, error) {
	var expected uint64
	if p.IsActive {
		outstanding, err := j.contributions.SumOutstanding(ctx, p.Id)
		if err != nil {
			return nil, err
		}
		expected = outstanding
	}

	actual, err := j.ledger.Balance(ctx, nil, p.VaultAddress)
	if err != nil {
		return nil, err
	}
	if actual == expected {
		return nil, nil
	}
	return &Drift{
		ProjectId:    p.Id,
		VaultAddress: p.VaultAddress,
		Expected:     expected,
		Actual:       actual,
	}, nil
}
