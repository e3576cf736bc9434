package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blues/launchpad/internal/auth"
	"github.com/blues/launchpad/internal/errs"
	"github.com/blues/launchpad/internal/logger"
)

// AuthHandler 钱包登录
type AuthHandler struct {
	wallet *auth.WalletVerifier
	tokens *auth.TokenIssuer
}

// NewAuthHandler 创建登录处理器
func NewAuthHandler(wallet *auth.WalletVerifier, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{wallet: wallet, tokens: tokens}
}

// Login 校验签名并签发令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.wallet.Verify(req.Address, req.IssuedAt, req.Signature)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidSignature) {
			ErrorResponse(c, http.StatusUnauthorized, errs.CodeUnauthorized, err.Error())
			return
		}
		HandleError(c, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(p)
	if err != nil {
		HandleError(c, err)
		return
	}

	logger.Info("Issued token for %s", p.String())
	SuccessResponse(c, http.StatusOK, "登录成功", LoginResponse{
		Address:   p.String(),
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
