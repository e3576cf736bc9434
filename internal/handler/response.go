package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blues/launchpad/internal/errs"
	"github.com/blues/launchpad/internal/logger"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, code errs.Code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Code:    code,
		Data:    nil,
	})
}

// HandleError 把领域错误映射为 HTTP 响应
func HandleError(c *gin.Context, err error) {
	code := errs.CodeOf(err)
	if code == errs.CodeUnknown {
		logger.Error("Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		ErrorResponse(c, http.StatusInternalServerError, code, "internal error")
		return
	}
	if code.Retryable() {
		logger.Warn("Retryable failure on %s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	resp := Response{
		Success: false,
		Message: err.Error(),
		Code:    code,
	}
	if field := errs.Field(err); field != "" {
		resp.Data = gin.H{"field": field}
	}
	c.JSON(code.HTTPStatus(), resp)
}

// badRequest 请求格式错误
func badRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, errs.CodeInvalidArgument, message)
}
