package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blues/launchpad/internal/auth"
	"github.com/blues/launchpad/internal/logic"
	"github.com/blues/launchpad/internal/repository"
)

// ContributionHandler 贡献处理器
type ContributionHandler struct {
	escrow *logic.EscrowLogic
}

// NewContributionHandler 创建贡献处理器
func NewContributionHandler(escrow *logic.EscrowLogic) *ContributionHandler {
	return &ContributionHandler{escrow: escrow}
}

// Contribute 出资
func (h *ContributionHandler) Contribute(c *gin.Context) {
	contributor, _ := principalFrom(c)

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	contribution, err := h.escrow.Contribute(c.Request.Context(), c.Param("id"), contributor, req.Amount)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "出资成功", contribution)
}

// GetContributions 获取项目贡献记录
func (h *ContributionHandler) GetContributions(c *gin.Context) {
	var filter repository.ContributionFilter
	if addr := c.Query("contributor"); addr != "" {
		p, err := auth.ParsePrincipal(addr)
		if err != nil {
			HandleError(c, err)
			return
		}
		filter.Contributor = p.String()
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	records, total, err := h.escrow.ListContributions(c.Request.Context(), c.Param("id"), filter, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取项目贡献记录成功", ListResponse{
		Items:      records,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetContribution 获取单笔贡献
func (h *ContributionHandler) GetContribution(c *gin.Context) {
	contribution, err := h.escrow.GetContribution(c.Request.Context(), c.Param("id"), c.Param("cid"))
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取贡献记录成功", contribution)
}

// GetContributedBy 获取地址对项目的累计出资
func (h *ContributionHandler) GetContributedBy(c *gin.Context) {
	contributor, err := auth.ParsePrincipal(c.Param("address"))
	if err != nil {
		HandleError(c, err)
		return
	}
	id := c.Param("id")

	amount, err := h.escrow.ContributedBy(c.Request.Context(), id, contributor)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取累计出资成功", ContributedByResponse{
		ProjectId:   id,
		Contributor: contributor.String(),
		Amount:      amount,
	})
}

// ClaimRefund 贡献者申请退款
func (h *ContributionHandler) ClaimRefund(c *gin.Context) {
	caller, _ := principalFrom(c)

	contribution, err := h.escrow.ClaimRefund(c.Request.Context(), c.Param("id"), c.Param("cid"), caller)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "退款成功", contribution)
}
