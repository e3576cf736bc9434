package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/blues/launchpad/internal/model"
)

// EventRepository 托管事件发件箱
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建事件发件箱
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// WithTx 返回绑定到事务的发件箱
func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

// Append 写入事件
func (r *EventRepository) Append(ctx context.Context, event *model.EventModel) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return storageError("append event", err)
	}
	return nil
}

// ListUnprocessed 按写入顺序获取未投递的事件
func (r *EventRepository) ListUnprocessed(ctx context.Context, limit int) ([]model.EventModel, error) {
	var events []model.EventModel
	err := r.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, storageError("list unprocessed events", err)
	}
	return events, nil
}

// MarkProcessed 标记事件已投递
func (r *EventRepository) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.EventModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed":    true,
			"processed_at": at,
		}).Error
	if err != nil {
		return storageError("mark event processed", err)
	}
	return nil
}

// ListByProject 获取项目的事件历史
func (r *EventRepository) ListByProject(ctx context.Context, projectID string) ([]model.EventModel, error) {
	var events []model.EventModel
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id ASC").Find(&events).Error; err != nil {
		return nil, storageError("list project events", err)
	}
	return events, nil
}
