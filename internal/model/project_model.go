package model

import (
	"time"
)

const (
	MaxNameLength        = 32
	MaxDescriptionLength = 200
)

// ProjectModel 众筹项目模型
type ProjectModel struct {
	Id        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Owner       string `json:"owner" gorm:"type:varchar(42);not null;index"`
	Name        string `json:"name" gorm:"type:varchar(32);not null"`
	Description string `json:"description" gorm:"type:varchar(200)"`

	// 众筹信息
	GoalAmount    uint64 `json:"goal_amount" gorm:"type:numeric(20,0);not null"`
	CurrentAmount uint64 `json:"current_amount" gorm:"type:numeric(20,0);not null"`

	// 时间信息, unix 秒
	StartTime int64 `json:"start_time" gorm:"not null"`
	EndTime   int64 `json:"end_time" gorm:"not null;index"`

	// 状态
	IsActive    bool `json:"is_active" gorm:"not null"`
	GoalReached bool `json:"goal_reached" gorm:"not null"`

	// 托管账户地址
	VaultAddress string `json:"vault_address" gorm:"type:varchar(42);not null;uniqueIndex"`
}

// ProjectStatus 项目状态，由存储字段和当前时间推导，不落库
type ProjectStatus string

const (
	ProjectStatusActive  ProjectStatus = "active"  // 进行中
	ProjectStatusFunded  ProjectStatus = "funded"  // 已截止且达标，待提取
	ProjectStatusClosed  ProjectStatus = "closed"  // 已提取
	ProjectStatusExpired ProjectStatus = "expired" // 已截止未达标，可退款
)

// TableName 自定义表名
func (ProjectModel) TableName() string {
	return "project"
}

// Ended 截止时间已到
func (p *ProjectModel) Ended(now int64) bool {
	return now >= p.EndTime
}

// Status 推导项目状态
func (p *ProjectModel) Status(now int64) ProjectStatus {
	switch {
	case !p.IsActive:
		return ProjectStatusClosed
	case !p.Ended(now):
		return ProjectStatusActive
	case p.GoalReached:
		return ProjectStatusFunded
	default:
		return ProjectStatusExpired
	}
}

// RemainingTime 剩余秒数，截止后为 0
func (p *ProjectModel) RemainingTime(now int64) int64 {
	if p.Ended(now) {
		return 0
	}
	return p.EndTime - now
}

// Progress 完成百分比，可超过 100
func (p *ProjectModel) Progress() float64 {
	if p.GoalAmount == 0 {
		return 0
	}
	return float64(p.CurrentAmount) / float64(p.GoalAmount) * 100
}
