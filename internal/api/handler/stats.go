package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zentra-ai/zentra_go_bot/internal/pkg/response"
	"github.com/zentra-ai/zentra_go_bot/internal/service"
)

type StatsHandler struct {
	entitlementService *service.EntitlementService
	startedAt          time.Time
}

func NewStatsHandler(entitlementService *service.EntitlementService, startedAt time.Time) *StatsHandler {
	return &StatsHandler{
		entitlementService: entitlementService,
		startedAt:          startedAt,
	}
}

// GetStats 账本聚合统计，运行时长由进程侧补充
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.entitlementService.Stats()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{
		"total_accounts":      stats.TotalAccounts,
		"subscribed_accounts": stats.SubscribedAccounts,
		"free_used_today":     stats.FreeUsedToday,
		"total_spent":         stats.TotalSpent,
		"uptime_seconds":      int64(time.Since(h.startedAt).Seconds()),
	})
}

// Health 健康检查
func Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
