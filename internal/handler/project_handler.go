package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blues/launchpad/internal/auth"
	"github.com/blues/launchpad/internal/logic"
	"github.com/blues/launchpad/internal/repository"
)

type ProjectHandler struct {
	escrow *logic.EscrowLogic
}

func NewProjectHandler(escrow *logic.EscrowLogic) *ProjectHandler {
	return &ProjectHandler{escrow: escrow}
}

// CreateProject 创建项目，调用者为项目所有者
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	owner, _ := principalFrom(c)

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	project, err := h.escrow.InitializeProject(c.Request.Context(), owner, req.Name, req.Description, req.GoalAmount, req.Duration)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "项目创建成功", project)
}

// GetProjects 获取项目列表
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	var filter repository.ProjectFilter
	if owner := c.Query("owner"); owner != "" {
		p, err := auth.ParsePrincipal(owner)
		if err != nil {
			HandleError(c, err)
			return
		}
		filter.Owner = p.String()
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	projects, total, err := h.escrow.ListProjects(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取项目列表成功", ListResponse{
		Items:      projects,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetProject 获取单个项目详情
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.escrow.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取项目详情成功", project)
}

// GetRemainingTime 获取剩余时间
func (h *ProjectHandler) GetRemainingTime(c *gin.Context) {
	id := c.Param("id")
	remaining, err := h.escrow.GetRemainingTime(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取剩余时间成功", RemainingTimeResponse{ProjectId: id, RemainingTime: remaining})
}

// GetProgress 获取筹款进度
func (h *ProjectHandler) GetProgress(c *gin.Context) {
	id := c.Param("id")
	progress, err := h.escrow.GetProgress(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取筹款进度成功", ProgressResponse{ProjectId: id, Progress: progress})
}

// GetProjectStats 获取项目统计
func (h *ProjectHandler) GetProjectStats(c *gin.Context) {
	stats, err := h.escrow.GetProjectStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取项目统计成功", stats)
}

// WithdrawFunds 所有者提取筹款
func (h *ProjectHandler) WithdrawFunds(c *gin.Context) {
	caller, _ := principalFrom(c)
	id := c.Param("id")

	amount, err := h.escrow.WithdrawFunds(c.Request.Context(), id, caller)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "提取成功", WithdrawResponse{ProjectId: id, Amount: amount})
}
