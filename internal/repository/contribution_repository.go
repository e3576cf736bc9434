package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blues/launchpad/internal/errs"
	"github.com/blues/launchpad/internal/model"
)

// ContributionFilter 贡献列表过滤条件
type ContributionFilter struct {
	Contributor string
}

// ContributionStats 项目贡献统计
type ContributionStats struct {
	ContributionCount int64  `json:"contribution_count"`
	ContributorCount  int64  `json:"contributor_count"`
	TotalAmount       uint64 `json:"total_amount"`
	RefundedCount     int64  `json:"refunded_count"`
	RefundedAmount    uint64 `json:"refunded_amount"`
}

// ContributionRepository 贡献账本
type ContributionRepository struct {
	db *gorm.DB
}

// NewContributionRepository 创建贡献账本
func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

// WithTx 返回绑定到事务的贡献账本
func (r *ContributionRepository) WithTx(tx *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: tx}
}

// Create 创建贡献记录
func (r *ContributionRepository) Create(ctx context.Context, contribution *model.ContributionModel) error {
	if err := r.db.WithContext(ctx).Create(contribution).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Wrap(errs.CodeDuplicateRecord, "contribution "+contribution.Id+" already exists", err)
		}
		return storageError("create contribution", err)
	}
	return nil
}

// Get 获取贡献记录
func (r *ContributionRepository) Get(ctx context.Context, id string) (*model.ContributionModel, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate 在事务中获取贡献记录并加行锁
func (r *ContributionRepository) GetForUpdate(ctx context.Context, id string) (*model.ContributionModel, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *ContributionRepository) get(db *gorm.DB, id string) (*model.ContributionModel, error) {
	var contribution model.ContributionModel
	if err := db.Where("id = ?", id).First(&contribution).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrContributionNotFound
		}
		return nil, storageError("get contribution", err)
	}
	return &contribution, nil
}

// MarkWithdrawn 标记已退款，只对未退款记录生效
func (r *ContributionRepository) MarkWithdrawn(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.ContributionModel{}).
		Where("id = ? AND withdrawn = ?", id, false).
		Updates(map[string]interface{}{
			"withdrawn":   true,
			"refunded_at": at,
		})
	if result.Error != nil {
		return storageError("mark contribution withdrawn", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrAlreadyWithdrawn
	}
	return nil
}

// List 分页获取项目的贡献记录
func (r *ContributionRepository) List(ctx context.Context, projectID string, filter ContributionFilter, page, pageSize int) ([]model.ContributionModel, int64, error) {
	var contributions []model.ContributionModel
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ContributionModel{}).Where("project_id = ?", projectID)
	if filter.Contributor != "" {
		query = query.Where("contributor = ?", filter.Contributor)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("count contributions", err)
	}

	page, pageSize = normalizePage(page, pageSize)
	if err := query.Order("created_at DESC").Order("id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&contributions).Error; err != nil {
		return nil, 0, storageError("list contributions", err)
	}
	return contributions, total, nil
}

// SumByContributor 某地址对项目的累计贡献（含已退款）
func (r *ContributionRepository) SumByContributor(ctx context.Context, projectID, contributor string) (uint64, error) {
	var total uint64
	err := r.db.WithContext(ctx).Model(&model.ContributionModel{}).
		Where("project_id = ? AND contributor = ?", projectID, contributor).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, storageError("sum contributions", err)
	}
	return total, nil
}

// SumOutstanding 项目未退款的贡献总额
func (r *ContributionRepository) SumOutstanding(ctx context.Context, projectID string) (uint64, error) {
	var total uint64
	err := r.db.WithContext(ctx).Model(&model.ContributionModel{}).
		Where("project_id = ? AND withdrawn = ?", projectID, false).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, storageError("sum outstanding contributions", err)
	}
	return total, nil
}

// Stats 获取项目贡献统计
func (r *ContributionRepository) Stats(ctx context.Context, projectID string) (ContributionStats, error) {
	var stats ContributionStats
	err := r.db.WithContext(ctx).Model(&model.ContributionModel{}).
		Where("project_id = ?", projectID).
		Select(`COUNT(*) AS contribution_count,
			COUNT(DISTINCT contributor) AS contributor_count,
			COALESCE(SUM(amount), 0) AS total_amount,
			COALESCE(SUM(CASE WHEN withdrawn THEN 1 ELSE 0 END), 0) AS refunded_count,
			COALESCE(SUM(CASE WHEN withdrawn THEN amount ELSE 0 END), 0) AS refunded_amount`).
		Scan(&stats).Error
	if err != nil {
		return ContributionStats{}, storageError("contribution stats", err)
	}
	return stats, nil
}
