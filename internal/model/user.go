package model

import (
	"time"
)

// UserAccount 每个 Telegram 用户一条记录，ID 由消息端提供，永不删除
type UserAccount struct {
	ID                    int64      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	FreeUsedToday         int        `gorm:"default:0" json:"free_used_today"`
	LastReset             time.Time  `gorm:"not null" json:"last_reset"`
	SubscriptionExpiresAt *time.Time `gorm:"index" json:"subscription_expires_at,omitempty"`
	BudgetRemaining       float64    `gorm:"type:decimal(10,2);default:0" json:"budget_remaining"`
	TotalCalls            int64      `gorm:"default:0" json:"total_calls"`
	TotalSpent            float64    `gorm:"type:decimal(10,2);default:0" json:"total_spent"`
	ExpiryNotifiedAt      *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (UserAccount) TableName() string {
	return "user_accounts"
}

// IsSubscribed 订阅是否在 now 时刻有效
func (u *UserAccount) IsSubscribed(now time.Time) bool {
	return u.SubscriptionExpiresAt != nil && u.SubscriptionExpiresAt.After(now)
}
