package handler

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/zentra-ai/zentra_go_bot/internal/pkg/response"
	"github.com/zentra-ai/zentra_go_bot/internal/service"
)

type WebhookHandler struct {
	paymentService *service.PaymentService
}

func NewWebhookHandler(paymentService *service.PaymentService) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService}
}

// HandleIPN 处理 NOWPayments 回调。签名已由中间件校验，
// 这里只负责解析载荷并交给支付服务
func (h *WebhookHandler) HandleIPN(c *gin.Context) {
	var notification service.PaymentNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		response.ParamError(c, "")
		return
	}

	if notification.PaymentID == "" {
		response.ParamError(c, "缺少 payment_id")
		return
	}

	if err := h.paymentService.HandleNotification(c.Request.Context(), &notification); err != nil {
		log.Printf("Failed to handle payment %s: %v", notification.PaymentID, err)
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"ok": true})
}
