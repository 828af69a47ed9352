package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zentra-ai/zentra_go_bot/internal/model"
	"github.com/zentra-ai/zentra_go_bot/internal/model/dto"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure 取出账户，不存在则以默认值创建。INSERT ... ON CONFLICT DO NOTHING 保证幂等
func (r *UserRepository) Ensure(id int64, now time.Time) (*model.UserAccount, error) {
	account := &model.UserAccount{
		ID:        id,
		LastReset: now,
	}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(account).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *UserRepository) GetByID(id int64) (*model.UserAccount, error) {
	var account model.UserAccount
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ResetQuota 免费额度窗口到期时清零并刷新窗口起点。
// WHERE last_reset = observed 做 CAS：返回 false 表示窗口已被并发请求刷新，
// 调用方重新读取即可，不能再次清零，否则会抹掉已确认的用量
func (r *UserRepository) ResetQuota(id int64, observed, resetAt time.Time) (bool, error) {
	result := r.db.Model(&model.UserAccount{}).
		Where("id = ? AND last_reset = ?", id, observed).
		Updates(map[string]interface{}{
			"free_used_today": 0,
			"last_reset":      resetAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ConfirmFreeUsage 免费计数加一，单条件语句保证并发下不会超过上限。
// 返回 false 表示额度已被并发请求用完
func (r *UserRepository) ConfirmFreeUsage(id int64, limit int) (bool, error) {
	result := r.db.Model(&model.UserAccount{}).
		Where("id = ? AND free_used_today < ?", id, limit).
		Updates(map[string]interface{}{
			"free_used_today": gorm.Expr("free_used_today + 1"),
			"total_calls":     gorm.Expr("total_calls + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ConfirmPaidUsage 扣减订阅预算，WHERE budget_remaining >= cost 保证余额永不为负。
// 返回 false 表示余额不足（含并发扣减导致的不足）
func (r *UserRepository) ConfirmPaidUsage(id int64, cost float64) (bool, error) {
	result := r.db.Model(&model.UserAccount{}).
		Where("id = ? AND budget_remaining >= ?", id, cost).
		Updates(map[string]interface{}{
			"budget_remaining": gorm.Expr("budget_remaining - ?", cost),
			"total_spent":      gorm.Expr("total_spent + ?", cost),
			"total_calls":      gorm.Expr("total_calls + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ActivateSubscription 写入新的到期时间并把预算重置为额定值（不叠加）
func (r *UserRepository) ActivateSubscription(id int64, expiresAt time.Time, budget float64) error {
	return r.db.Model(&model.UserAccount{}).Where("id = ?", id).Updates(map[string]interface{}{
		"subscription_expires_at": expiresAt,
		"budget_remaining":        budget,
		"expiry_notified_at":      nil,
	}).Error
}

func (r *UserRepository) MarkExpiryNotified(id int64, at time.Time) error {
	return r.db.Model(&model.UserAccount{}).Where("id = ?", id).
		Update("expiry_notified_at", at).Error
}

// ListExpiringSoon 查询即将到期且未提醒过的订阅账户
func (r *UserRepository) ListExpiringSoon(now time.Time, within time.Duration) ([]model.UserAccount, error) {
	var accounts []model.UserAccount
	err := r.db.
		Where("subscription_expires_at > ? AND subscription_expires_at <= ?", now, now.Add(within)).
		Where("expiry_notified_at IS NULL").
		Find(&accounts).Error
	return accounts, err
}

// Stats 全表聚合，跨账户允许非一致快照
func (r *UserRepository) Stats(now time.Time) (*dto.LedgerStats, error) {
	var stats dto.LedgerStats

	if err := r.db.Model(&model.UserAccount{}).Count(&stats.TotalAccounts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.UserAccount{}).
		Where("subscription_expires_at > ?", now).
		Count(&stats.SubscribedAccounts).Error; err != nil {
		return nil, err
	}

	type sums struct {
		FreeUsedToday int64
		TotalSpent    float64
	}
	var s sums
	err := r.db.Model(&model.UserAccount{}).
		Select("COALESCE(SUM(free_used_today), 0) AS free_used_today, COALESCE(SUM(total_spent), 0) AS total_spent").
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	stats.FreeUsedToday = s.FreeUsedToday
	stats.TotalSpent = s.TotalSpent

	return &stats, nil
}
