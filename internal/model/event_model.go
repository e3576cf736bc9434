package model

import (
	"time"
)

// EventType 托管事件类型
type EventType string

const (
	EventProjectInitialized EventType = "project_initialized"
	EventContributionMade   EventType = "contribution_made"
	EventFundsWithdrawn     EventType = "funds_withdrawn"
	EventRefundClaimed      EventType = "refund_claimed"
)

// EventModel 托管事件，与状态变更在同一事务中写入，由发布任务投递
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId      string     `json:"project_id" gorm:"type:varchar(36);not null;index"`
	ContributionId string     `json:"contribution_id" gorm:"type:varchar(36)"`
	EventType      EventType  `json:"event_type" gorm:"type:varchar(32);not null"`
	Actor          string     `json:"actor" gorm:"type:varchar(42);not null"`
	Amount         uint64     `json:"amount" gorm:"type:numeric(20,0);not null"`
	Data           string     `json:"data" gorm:"type:text"`
	Processed      bool       `json:"processed" gorm:"not null;index"`
	ProcessedAt    *time.Time `json:"processed_at"`
}

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}
