package model

import (
	"time"
)

// AccountModel 账本余额，持有人可以是用户地址或项目托管地址
type AccountModel struct {
	Holder    string    `json:"holder" gorm:"type:varchar(42);primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Balance uint64 `json:"balance" gorm:"type:numeric(20,0);not null"`
}

// TableName 自定义表名
func (AccountModel) TableName() string {
	return "account"
}
