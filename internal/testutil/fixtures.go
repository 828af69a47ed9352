package testutil

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/zentra-ai/zentra_go_bot/internal/model"
)

var nextUserID int64 = 100000

// TestAccount 创建测试账户
func TestAccount(t *testing.T, db *gorm.DB, opts ...func(*model.UserAccount)) *model.UserAccount {
	t.Helper()

	nextUserID++
	account := &model.UserAccount{
		ID:        nextUserID,
		LastReset: time.Now(),
	}

	for _, opt := range opts {
		opt(account)
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return account
}

// WithID 指定用户ID
func WithID(id int64) func(*model.UserAccount) {
	return func(a *model.UserAccount) {
		a.ID = id
	}
}

// WithFreeUsed 设置已用免费额度
func WithFreeUsed(used int) func(*model.UserAccount) {
	return func(a *model.UserAccount) {
		a.FreeUsedToday = used
	}
}

// WithLastReset 设置额度窗口起点
func WithLastReset(at time.Time) func(*model.UserAccount) {
	return func(a *model.UserAccount) {
		a.LastReset = at
	}
}

// WithSubscription 设置订阅到期时间和剩余预算
func WithSubscription(expiresAt time.Time, budget float64) func(*model.UserAccount) {
	return func(a *model.UserAccount) {
		a.SubscriptionExpiresAt = &expiresAt
		a.BudgetRemaining = budget
	}
}

// TestPayment 创建测试支付记录
func TestPayment(t *testing.T, db *gorm.DB, paymentID string, userID int64) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		PaymentID: paymentID,
		UserID:    userID,
		Amount:    29.99,
		Currency:  "usdttrc20",
		Status:    model.PaymentStatusFinished,
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return payment
}
