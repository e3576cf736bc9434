package router

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/blues/launchpad/internal/auth"
	"github.com/blues/launchpad/internal/config"
	"github.com/blues/launchpad/internal/handler"
	"github.com/blues/launchpad/internal/logic"
)

func Setup(cfg *config.Config, escrow *logic.EscrowLogic, wallet *auth.WalletVerifier, tokens *auth.TokenIssuer) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()

	// 中间件
	r.Use(handler.RequestLogger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.Server.AllowOrigins))

	// 健康检查
	r.GET("/health", health)

	authenticated := handler.Authenticate(tokens)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", health)

		authHandler := handler.NewAuthHandler(wallet, tokens)
		v1.POST("/auth/login", authHandler.Login)

		// 项目相关路由
		projectHandler := handler.NewProjectHandler(escrow)
		contributionHandler := handler.NewContributionHandler(escrow)
		projects := v1.Group("/projects")
		{
			projects.POST("", authenticated, projectHandler.CreateProject)
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.GET("/:id/remaining_time", projectHandler.GetRemainingTime)
			projects.GET("/:id/progress", projectHandler.GetProgress)
			projects.GET("/:id/stats", projectHandler.GetProjectStats)
			projects.POST("/:id/withdraw", authenticated, projectHandler.WithdrawFunds)

			projects.POST("/:id/contributions", authenticated, contributionHandler.Contribute)
			projects.GET("/:id/contributions", contributionHandler.GetContributions)
			projects.GET("/:id/contributions/:cid", contributionHandler.GetContribution)
			projects.POST("/:id/contributions/:cid/refund", authenticated, contributionHandler.ClaimRefund)
			projects.GET("/:id/contributors/:address", contributionHandler.GetContributedBy)
		}

		// 账户相关路由
		accountHandler := handler.NewAccountHandler(escrow)
		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:address", accountHandler.GetBalance)
			accounts.POST("/:address/deposit", authenticated, handler.RequireAdmin(cfg.Auth.AdminAddresses), accountHandler.Deposit)
		}
	}

	return r
}

func health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "launchpad",
	})
}

// CORS中间件
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
