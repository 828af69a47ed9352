package cron

import (
	"context"
	"log"
	"time"

	"github.com/zentra-ai/zentra_go_bot/internal/pkg/pubsub"
	"github.com/zentra-ai/zentra_go_bot/internal/repository"
	"github.com/zentra-ai/zentra_go_bot/internal/service"
)

// 到期前多久提醒续期
const expiryReminderWindow = 24 * time.Hour

type Service struct {
	entitlementSvc *service.EntitlementService
	userRepo       *repository.UserRepository
	publisher      *pubsub.Publisher
	stopChan       chan struct{}
}

func NewService(
	entitlementSvc *service.EntitlementService,
	userRepo *repository.UserRepository,
	publisher *pubsub.Publisher,
) *Service {
	return &Service{
		entitlementSvc: entitlementSvc,
		userRepo:       userRepo,
		publisher:      publisher,
		stopChan:       make(chan struct{}),
	}
}

// Start 启动定时任务。
// 注意：免费额度的 24 小时重置是访问时懒惰执行的，这里没有也不应该有重置任务
func (s *Service) Start() {
	go s.runExpiryReminders()
	go s.runDailyStatsLog()
	log.Println("Cron service started (expiry reminders + daily stats)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runExpiryReminders 每小时扫描即将到期的订阅并发提醒事件
func (s *Service) runExpiryReminders() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.notifyExpiring()
		}
	}
}

// notifyExpiring 对 24 小时内到期且未提醒过的账户发布提醒事件
func (s *Service) notifyExpiring() {
	now := time.Now()
	accounts, err := s.userRepo.ListExpiringSoon(now, expiryReminderWindow)
	if err != nil {
		log.Printf("Expiry scan failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, account := range accounts {
		event := &pubsub.PaymentEvent{UserID: account.ID}
		if account.SubscriptionExpiresAt != nil {
			event.ExpiresAt = account.SubscriptionExpiresAt.Unix()
		}
		if err := s.publisher.PublishExpiring(ctx, event); err != nil {
			log.Printf("Failed to publish expiry reminder for user %d: %v", account.ID, err)
			continue
		}
		if err := s.userRepo.MarkExpiryNotified(account.ID, now); err != nil {
			log.Printf("Failed to mark expiry notified for user %d: %v", account.ID, err)
		}
	}

	if len(accounts) > 0 {
		log.Printf("Expiry reminders sent: %d", len(accounts))
	}
}

// runDailyStatsLog 每天输出一条账本统计日志
func (s *Service) runDailyStatsLog() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.logStats()
			timer.Reset(24 * time.Hour)
		}
	}
}

func (s *Service) logStats() {
	stats, err := s.entitlementSvc.Stats()
	if err != nil {
		log.Printf("Failed to collect ledger stats: %v", err)
		return
	}
	log.Printf("Ledger stats: accounts=%d, subscribed=%d, free_used_today=%d, total_spent=%.2f",
		stats.TotalAccounts, stats.SubscribedAccounts, stats.FreeUsedToday, stats.TotalSpent)
}

// RunNow 立即执行一次到期扫描（用于测试或手动触发）
func (s *Service) RunNow() {
	s.notifyExpiring()
}
