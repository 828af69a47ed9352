package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/zentra-ai/zentra_go_bot/config"
	"github.com/zentra-ai/zentra_go_bot/internal/database"
	"github.com/zentra-ai/zentra_go_bot/internal/pkg/openai"
	"github.com/zentra-ai/zentra_go_bot/internal/pkg/pubsub"
	"github.com/zentra-ai/zentra_go_bot/internal/repository"
	"github.com/zentra-ai/zentra_go_bot/internal/service"
	"github.com/zentra-ai/zentra_go_bot/internal/telegram"
)

func main() {
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

	// 初始化 Repository & Service
	userRepo := repository.NewUserRepository(db)
	entitlementService := service.NewEntitlementService(userRepo, cfg)

	aiClient := openai.NewClient(cfg.OpenAI)

	// 初始化 Bot
	bot, err := telegram.NewBot(cfg, entitlementService, aiClient)
	if err != nil {
		log.Fatalf("Failed to create telegram bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 订阅支付事件，webhook 进程发布，这里负责通知用户
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		if err := subscriber.Subscribe(ctx, bot.HandlePaymentEvent); err != nil && ctx.Err() == nil {
			log.Printf("Payment event subscription stopped: %v", err)
		}
	}()

	log.Println("Bot starting (long polling)")
	bot.StartPolling(ctx)
	log.Println("Bot stopped")
}
