package service

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/zentra-ai/zentra_go_bot/internal/model"
	"github.com/zentra-ai/zentra_go_bot/internal/pkg/pubsub"
	"github.com/zentra-ai/zentra_go_bot/internal/repository"
)

var (
	ErrBadOrderID = errors.New("order_id 不是合法的用户ID")
)

// EventPublisher 支付完成事件出口，由 pubsub.Publisher 实现
type EventPublisher interface {
	PublishPayment(ctx context.Context, event *pubsub.PaymentEvent) error
}

// PaymentNotification 已通过签名校验的 IPN 载荷。
// 签名验证和解析由 HTTP 层负责，这里只信任其中的字段
type PaymentNotification struct {
	PaymentID     string  `json:"payment_id"`
	PaymentStatus string  `json:"payment_status"`
	OrderID       string  `json:"order_id"` // 下单时写入的 Telegram 用户ID
	PayAmount     float64 `json:"pay_amount"`
	PayCurrency   string  `json:"pay_currency"`
	PayAddress    string  `json:"pay_address"`
}

type PaymentService struct {
	paymentRepo    *repository.PaymentRepository
	entitlementSvc *EntitlementService
	publisher      EventPublisher
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	entitlementSvc *EntitlementService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		entitlementSvc: entitlementSvc,
	}
}

// SetPublisher 注入事件发布器（webhook 进程用，测试可不注入）
func (s *PaymentService) SetPublisher(publisher EventPublisher) {
	s.publisher = publisher
}

// HandleNotification 处理一条支付回调。
// 只有 finished 状态触发订阅激活；重复的 payment_id 是无操作
func (s *PaymentService) HandleNotification(ctx context.Context, n *PaymentNotification) error {
	if n.PaymentStatus != model.PaymentStatusFinished {
		log.Printf("Payment %s ignored, status=%s", n.PaymentID, n.PaymentStatus)
		return nil
	}

	userID, err := strconv.ParseInt(n.OrderID, 10, 64)
	if err != nil {
		return ErrBadOrderID
	}

	created, err := s.paymentRepo.Record(&model.Payment{
		PaymentID:  n.PaymentID,
		UserID:     userID,
		Amount:     n.PayAmount,
		Currency:   n.PayCurrency,
		Status:     n.PaymentStatus,
		OrderID:    n.OrderID,
		PayAddress: n.PayAddress,
	})
	if err != nil {
		return err
	}
	if !created {
		log.Printf("Payment %s already processed, skipping", n.PaymentID)
		return nil
	}

	account, err := s.entitlementSvc.ActivateSubscription(userID)
	if err != nil {
		return err
	}
	log.Printf("Subscription activated for user %d until %v", userID, account.SubscriptionExpiresAt)

	if s.publisher != nil {
		event := &pubsub.PaymentEvent{
			UserID:    userID,
			PaymentID: n.PaymentID,
			Amount:    n.PayAmount,
			Currency:  n.PayCurrency,
		}
		if account.SubscriptionExpiresAt != nil {
			event.ExpiresAt = account.SubscriptionExpiresAt.Unix()
		}
		if err := s.publisher.PublishPayment(ctx, event); err != nil {
			// 激活已落库，事件丢失只影响通知，不回滚
			log.Printf("Failed to publish payment event for user %d: %v", userID, err)
		}
	}

	return nil
}
