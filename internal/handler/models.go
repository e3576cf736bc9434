package handler

import (
	"time"

	"github.com/blues/launchpad/internal/errs"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    errs.Code   `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}

// 认证相关

// LoginRequest 钱包登录请求，Signature 是对 LoginMessage 的个人签名
type LoginRequest struct {
	Address   string `json:"address" binding:"required"`
	IssuedAt  int64  `json:"issuedAt" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Address   string    `json:"address"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// 项目相关

// CreateProjectRequest 创建项目请求，金额与时长的合法性由业务层校验
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	GoalAmount  uint64 `json:"goalAmount"`
	Duration    int64  `json:"duration"` // 秒
}

// WithdrawResponse 提取响应
type WithdrawResponse struct {
	ProjectId string `json:"projectId"`
	Amount    uint64 `json:"amount"`
}

// RemainingTimeResponse 剩余时间响应
type RemainingTimeResponse struct {
	ProjectId     string `json:"projectId"`
	RemainingTime int64  `json:"remainingTime"`
}

// ProgressResponse 进度响应
type ProgressResponse struct {
	ProjectId string  `json:"projectId"`
	Progress  float64 `json:"progress"`
}

// ListResponse 分页列表响应
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// 贡献相关

// ContributeRequest 出资请求
type ContributeRequest struct {
	Amount uint64 `json:"amount"`
}

// ContributedByResponse 地址累计出资
type ContributedByResponse struct {
	ProjectId   string `json:"projectId"`
	Contributor string `json:"contributor"`
	Amount      uint64 `json:"amount"`
}

// 账户相关

// DepositRequest 充值请求
type DepositRequest struct {
	Amount uint64 `json:"amount"`
}

// BalanceResponse 余额响应
type BalanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}
