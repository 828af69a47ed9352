package main

import (
	"fmt"
	"log"
	"time"

	"github.com/zentra-ai/zentra_go_bot/config"
	"github.com/zentra-ai/zentra_go_bot/internal/api"
	"github.com/zentra-ai/zentra_go_bot/internal/api/handler"
	"github.com/zentra-ai/zentra_go_bot/internal/database"
	"github.com/zentra-ai/zentra_go_bot/internal/pkg/cron"
	"github.com/zentra-ai/zentra_go_bot/internal/pkg/pubsub"
	"github.com/zentra-ai/zentra_go_bot/internal/repository"
	"github.com/zentra-ai/zentra_go_bot/internal/service"
)

func main() {
	startedAt := time.Now()

	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// 初始化 Service
	entitlementService := service.NewEntitlementService(userRepo, cfg)
	paymentService := service.NewPaymentService(paymentRepo, entitlementService)

	publisher := pubsub.NewPublisher(rdb)
	paymentService.SetPublisher(publisher)

	// 后台任务：到期提醒 + 每日统计日志
	cronService := cron.NewService(entitlementService, userRepo, publisher)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler & Router
	webhookHandler := handler.NewWebhookHandler(paymentService)
	statsHandler := handler.NewStatsHandler(entitlementService, startedAt)

	router := api.NewRouter(webhookHandler, statsHandler, cfg)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Webhook server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
