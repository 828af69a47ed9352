package api

import (
	"github.com/gin-gonic/gin"

	"github.com/zentra-ai/zentra_go_bot/config"
	"github.com/zentra-ai/zentra_go_bot/internal/api/handler"
	"github.com/zentra-ai/zentra_go_bot/internal/api/middleware"
)

type Router struct {
	webhookHandler *handler.WebhookHandler
	statsHandler   *handler.StatsHandler
	cfg            *config.Config
}

func NewRouter(
	webhookHandler *handler.WebhookHandler,
	statsHandler *handler.StatsHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		webhookHandler: webhookHandler,
		statsHandler:   statsHandler,
		cfg:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", handler.Health)

	// 支付回调，签名校验在中间件完成
	engine.POST("/webhook",
		middleware.VerifyIPN(r.cfg.Payments.IPNSecret),
		r.webhookHandler.HandleIPN,
	)

	// 管理接口
	api := engine.Group("/api/v1")
	api.Use(middleware.AdminToken(r.cfg.Payments.StatsTokens))
	{
		api.GET("/stats", r.statsHandler.GetStats)
	}

	return engine
}
