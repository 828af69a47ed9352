package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelPaymentEvents = "payment_events"
)

// 事件类型常量
const (
	EventSubscriptionActivated = "subscription_activated"
	EventSubscriptionExpiring  = "subscription_expiring"
)

// PaymentEvent 支付/订阅事件，webhook 进程发布，bot 进程订阅后通知用户
type PaymentEvent struct {
	Type      string  `json:"type"`
	UserID    int64   `json:"user_id"`
	PaymentID string  `json:"payment_id,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	ExpiresAt int64   `json:"expires_at,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishPayment 发布支付完成事件
func (p *Publisher) PublishPayment(ctx context.Context, event *PaymentEvent) error {
	if event.Type == "" {
		event.Type = EventSubscriptionActivated
	}
	return p.publish(ctx, event)
}

// PublishExpiring 发布即将到期提醒事件
func (p *Publisher) PublishExpiring(ctx context.Context, event *PaymentEvent) error {
	event.Type = EventSubscriptionExpiring
	return p.publish(ctx, event)
}

func (p *Publisher) publish(ctx context.Context, event *PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.client.Publish(ctx, ChannelPaymentEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅支付事件，阻塞直到 ctx 取消。
// 单条消息解析失败只记录日志，不中断订阅
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*PaymentEvent)) error {
	sub := s.client.Subscribe(ctx, ChannelPaymentEvents)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event PaymentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Failed to unmarshal payment event: %v", err)
				continue
			}
			handler(&event)
		}
	}
}
