package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blues/launchpad/internal/errs"
	"github.com/blues/launchpad/internal/model"
)

// ProjectFilter 项目列表过滤条件
type ProjectFilter struct {
	Owner string
}

// ProjectRepository 项目注册表
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建项目注册表
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// WithTx 返回绑定到事务的注册表
func (r *ProjectRepository) WithTx(tx *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

// Create 创建项目，主键冲突时失败而不是覆盖
func (r *ProjectRepository) Create(ctx context.Context, project *model.ProjectModel) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Wrap(errs.CodeDuplicateRecord, "project "+project.Id+" already exists", err)
		}
		return storageError("create project", err)
	}
	return nil
}

// Get 获取项目
func (r *ProjectRepository) Get(ctx context.Context, id string) (*model.ProjectModel, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate 在事务中获取项目并加行锁
func (r *ProjectRepository) GetForUpdate(ctx context.Context, id string) (*model.ProjectModel, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *ProjectRepository) get(db *gorm.DB, id string) (*model.ProjectModel, error) {
	var project model.ProjectModel
	if err := db.Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrProjectNotFound
		}
		return nil, storageError("get project", err)
	}
	return &project, nil
}

// UpdateFunding 持久化筹款金额和达标标记
func (r *ProjectRepository) UpdateFunding(ctx context.Context, project *model.ProjectModel) error {
	err := r.db.WithContext(ctx).Model(&model.ProjectModel{}).
		Where("id = ?", project.Id).
		Updates(map[string]interface{}{
			"current_amount": project.CurrentAmount,
			"goal_reached":   project.GoalReached,
		}).Error
	if err != nil {
		return storageError("update project funding", err)
	}
	return nil
}

// Deactivate 关闭项目
func (r *ProjectRepository) Deactivate(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&model.ProjectModel{}).
		Where("id = ?", id).
		Update("is_active", false).Error
	if err != nil {
		return storageError("deactivate project", err)
	}
	return nil
}

// List 分页获取项目列表
func (r *ProjectRepository) List(ctx context.Context, filter ProjectFilter, page, pageSize int) ([]model.ProjectModel, int64, error) {
	var projects []model.ProjectModel
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ProjectModel{})
	if filter.Owner != "" {
		query = query.Where("owner = ?", filter.Owner)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError("count projects", err)
	}

	page, pageSize = normalizePage(page, pageSize)
	if err := query.Order("created_at DESC").Order("id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&projects).Error; err != nil {
		return nil, 0, storageError("list projects", err)
	}
	return projects, total, nil
}

// Each 按批遍历全部项目
func (r *ProjectRepository) Each(ctx context.Context, batch int, fn func([]model.ProjectModel) error) error {
	var projects []model.ProjectModel
	err := r.db.WithContext(ctx).FindInBatches(&projects, batch, func(tx *gorm.DB, _ int) error {
		return fn(projects)
	}).Error
	if err != nil {
		return storageError("iterate projects", err)
	}
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func storageError(op string, err error) error {
	var domainErr *errs.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return errs.Wrap(errs.CodeStorageUnavailable, op, err)
}
