package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/blues/launchpad/internal/auth"
	"github.com/blues/launchpad/internal/errs"
	"github.com/blues/launchpad/internal/logger"
)

const principalKey = "principal"

// Authenticate 校验 Bearer 令牌并把调用者写入上下文
func Authenticate(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c.GetHeader("Authorization"))
		if token == "" {
			c.Abort()
			ErrorResponse(c, http.StatusUnauthorized, errs.CodeUnauthorized, "authorization required")
			return
		}
		p, err := tokens.Verify(token)
		if err != nil {
			c.Abort()
			ErrorResponse(c, http.StatusUnauthorized, errs.CodeUnauthorized, "invalid token")
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireAdmin 只允许配置中的管理员地址
func RequireAdmin(admins []string) gin.HandlerFunc {
	allowed := make(map[auth.Principal]struct{}, len(admins))
	for _, a := range admins {
		p, err := auth.ParsePrincipal(a)
		if err != nil {
			logger.Warn("Ignoring invalid admin address %q", a)
			continue
		}
		allowed[p] = struct{}{}
	}

	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			c.Abort()
			ErrorResponse(c, http.StatusUnauthorized, errs.CodeUnauthorized, "authorization required")
			return
		}
		if _, ok := allowed[p]; !ok {
			c.Abort()
			HandleError(c, errs.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequestLogger 用 zap 记录访问日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.GetDefaultZapLogger().Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func principalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func bearer(h string) string {
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
