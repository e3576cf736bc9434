package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blues/launchpad/internal/auth"
	"github.com/blues/launchpad/internal/logic"
)

// AccountHandler 账户处理器
type AccountHandler struct {
	escrow *logic.EscrowLogic
}

// NewAccountHandler 创建账户处理器
func NewAccountHandler(escrow *logic.EscrowLogic) *AccountHandler {
	return &AccountHandler{escrow: escrow}
}

// GetBalance 查询余额
func (h *AccountHandler) GetBalance(c *gin.Context) {
	holder, err := auth.ParsePrincipal(c.Param("address"))
	if err != nil {
		HandleError(c, err)
		return
	}
	balance, err := h.escrow.Balance(c.Request.Context(), holder)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取余额成功", BalanceResponse{Address: holder.String(), Balance: balance})
}

// Deposit 管理员充值
func (h *AccountHandler) Deposit(c *gin.Context) {
	holder, err := auth.ParsePrincipal(c.Param("address"))
	if err != nil {
		HandleError(c, err)
		return
	}
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	balance, err := h.escrow.Deposit(c.Request.Context(), holder, req.Amount)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "充值成功", BalanceResponse{Address: holder.String(), Balance: balance})
}
