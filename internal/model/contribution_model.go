package model

import (
	"time"
)

// ContributionModel 贡献记录，同一贡献者可对同一项目产生多条记录
type ContributionModel struct {
	Id        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId   string     `json:"project_id" gorm:"type:varchar(36);not null;index:idx_contribution_project_contributor,priority:1"`
	Contributor string     `json:"contributor" gorm:"type:varchar(42);not null;index:idx_contribution_project_contributor,priority:2"`
	Amount      uint64     `json:"amount" gorm:"type:numeric(20,0);not null"`
	Withdrawn   bool       `json:"withdrawn" gorm:"not null"`
	RefundedAt  *time.Time `json:"refunded_at"`
}

// TableName 自定义表名
func (ContributionModel) TableName() string {
	return "contribution"
}
