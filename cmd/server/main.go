package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blues/launchpad/internal/auth"
	"github.com/blues/launchpad/internal/clock"
	"github.com/blues/launchpad/internal/config"
	"github.com/blues/launchpad/internal/event"
	"github.com/blues/launchpad/internal/ledger"
	"github.com/blues/launchpad/internal/lock"
	"github.com/blues/launchpad/internal/logger"
	"github.com/blues/launchpad/internal/logic"
	"github.com/blues/launchpad/internal/repository"
	"github.com/blues/launchpad/internal/router"
	"github.com/blues/launchpad/internal/task"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 初始化日志
	logger.Init(cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	clk := clock.System{}
	ldg := ledger.New(db)

	// 项目锁
	var locker lock.Locker = lock.NewLocal()
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Fatal("Failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
		}
		cancel()
		defer client.Close()
		locker = lock.NewRedis(client, time.Duration(cfg.Redis.LockTTL)*time.Second)
		logger.Info("Using redis lock at %s", cfg.Redis.Addr)
	}

	escrow := logic.NewEscrowLogic(db, ldg, clk, locker,
		logic.WithLockTimeout(time.Duration(cfg.Redis.LockTimeout)*time.Second))

	// 认证
	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, time.Duration(cfg.Auth.TokenTTL)*time.Second, clk)
	if err != nil {
		logger.Fatal("Failed to create token issuer: %v", err)
	}
	wallet := auth.NewWalletVerifier(time.Duration(cfg.Auth.LoginWindow)*time.Second, clk)

	// 事件发布
	var publisher event.Publisher = event.NewLogPublisher()
	if cfg.Kafka.Enabled {
		publisher = event.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info("Publishing escrow events to kafka topic %s", cfg.Kafka.Topic)
	}
	defer publisher.Close()

	// 启动定时任务
	tasks, err := task.NewManager()
	if err != nil {
		logger.Fatal("Failed to create task manager: %v", err)
	}
	interval := time.Duration(cfg.Task.Interval) * time.Second
	jobs := []task.Job{
		task.NewPublishJob(repository.NewEventRepository(db), publisher, clk, interval, cfg.Task.PublishBatch),
		task.NewReconcileJob(repository.NewProjectRepository(db), repository.NewContributionRepository(db), ldg, interval, cfg.Task.ReconcileWorkers),
	}
	for _, job := range jobs {
		if err := tasks.Register(job); err != nil {
			logger.Fatal("Failed to register job %s: %v", job.GetName(), err)
		}
	}
	tasks.Start()

	// 初始化路由
	r := router.Setup(cfg, escrow, wallet, tokens)

	server := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}
	tasks.Stop()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server exited")
}
