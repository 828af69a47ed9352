package service

import (
	"errors"
	"log"
	"time"

	"github.com/zentra-ai/zentra_go_bot/config"
	"github.com/zentra-ai/zentra_go_bot/internal/model"
	"github.com/zentra-ai/zentra_go_bot/internal/model/dto"
	"github.com/zentra-ai/zentra_go_bot/internal/repository"
)

// 免费额度窗口，到期后懒惰清零
const quotaWindow = 24 * time.Hour

var (
	ErrNeedsSubscription = errors.New("免费额度已用完，需要订阅")
	ErrBudgetExhausted   = errors.New("订阅预算已用完")
)

// DecisionKind 准入判定结果类型
type DecisionKind int

const (
	DecisionAllowFree DecisionKind = iota
	DecisionAllowPaid
	DecisionDenyNeedsSubscription
	DecisionDenyBudgetExhausted
)

// Decision 在调用外部 AI 之前计算，扣费在调用成功后通过 Confirm 落账
type Decision struct {
	Kind   DecisionKind
	UserID int64
	Cost   float64 // 仅 AllowPaid 有意义
}

// Allowed 是否放行
func (d *Decision) Allowed() bool {
	return d.Kind == DecisionAllowFree || d.Kind == DecisionAllowPaid
}

// EntitlementService 额度账本：免费每日额度 + 订阅预算
type EntitlementService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
	now      func() time.Time
}

func NewEntitlementService(userRepo *repository.UserRepository, cfg *config.Config) *EntitlementService {
	return &EntitlementService{
		userRepo: userRepo,
		cfg:      cfg,
		now:      time.Now,
	}
}

// EnsureAccount 取出账户，首次接触时创建，幂等
func (s *EntitlementService) EnsureAccount(userID int64) (*model.UserAccount, error) {
	return s.userRepo.Ensure(userID, s.now())
}

// refreshQuota 窗口到期则清零免费计数。必须在任何依赖 FreeUsedToday 的判定前调用。
// 清零是以读到的 LastReset 为条件的 CAS，并发请求中只有一个生效，
// 落败方直接重读新状态
func (s *EntitlementService) refreshQuota(account *model.UserAccount) (*model.UserAccount, error) {
	now := s.now()
	if now.Sub(account.LastReset) < quotaWindow {
		return account, nil
	}
	if _, err := s.userRepo.ResetQuota(account.ID, account.LastReset, now); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(account.ID)
}

// Authorize 准入判定，无副作用。过期订阅回落到免费额度路径
func (s *EntitlementService) Authorize(userID int64, isImageRequest bool) (*Decision, error) {
	account, err := s.EnsureAccount(userID)
	if err != nil {
		return nil, err
	}
	account, err = s.refreshQuota(account)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !account.IsSubscribed(now) {
		if account.FreeUsedToday < s.cfg.Billing.FreeDailyLimit {
			return &Decision{Kind: DecisionAllowFree, UserID: userID}, nil
		}
		return &Decision{Kind: DecisionDenyNeedsSubscription, UserID: userID}, nil
	}

	cost := s.cfg.Billing.TextCost
	if isImageRequest {
		cost = s.cfg.Billing.ImageCost
	}
	if account.BudgetRemaining < cost {
		return &Decision{Kind: DecisionDenyBudgetExhausted, UserID: userID}, nil
	}
	return &Decision{Kind: DecisionAllowPaid, UserID: userID, Cost: cost}, nil
}

// Confirm 外部调用成功后落账。条件更新失败说明额度被并发请求抢占，
// 返回对应的拒绝错误，此时不产生任何扣减
func (s *EntitlementService) Confirm(decision *Decision) error {
	switch decision.Kind {
	case DecisionAllowFree:
		ok, err := s.userRepo.ConfirmFreeUsage(decision.UserID, s.cfg.Billing.FreeDailyLimit)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNeedsSubscription
		}
		return nil
	case DecisionAllowPaid:
		ok, err := s.userRepo.ConfirmPaidUsage(decision.UserID, decision.Cost)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBudgetExhausted
		}
		return nil
	default:
		return errors.New("confirm called on a deny decision")
	}
}

// RecordFailure 外部调用失败时的显式钩子，不产生任何扣减
func (s *EntitlementService) RecordFailure(decision *Decision) {
	log.Printf("Provider call failed for user %d, nothing charged", decision.UserID)
}

// ActivateSubscription 支付完成后激活或续期订阅。
// 重复激活只是顺延周期并把预算重置为额定值，不叠加
func (s *EntitlementService) ActivateSubscription(userID int64) (*model.UserAccount, error) {
	if _, err := s.EnsureAccount(userID); err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(time.Duration(s.cfg.Billing.SubscriptionDays) * 24 * time.Hour)
	err := s.userRepo.ActivateSubscription(userID, expiresAt, s.cfg.Billing.SubscriberBudget)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}

// GetQuotaInfo 用户当前额度视图
func (s *EntitlementService) GetQuotaInfo(userID int64) (*dto.QuotaInfo, error) {
	account, err := s.EnsureAccount(userID)
	if err != nil {
		return nil, err
	}
	account, err = s.refreshQuota(account)
	if err != nil {
		return nil, err
	}

	now := s.now()
	freeRemain := s.cfg.Billing.FreeDailyLimit - account.FreeUsedToday
	if freeRemain < 0 {
		freeRemain = 0
	}

	info := &dto.QuotaInfo{
		Subscribed:      account.IsSubscribed(now),
		FreeDailyLimit:  s.cfg.Billing.FreeDailyLimit,
		FreeUsedToday:   account.FreeUsedToday,
		FreeRemain:      freeRemain,
		BudgetRemaining: account.BudgetRemaining,
	}
	if account.SubscriptionExpiresAt != nil {
		info.ExpiresAt = account.SubscriptionExpiresAt.Format(time.RFC3339)
	}
	return info, nil
}

// Stats 全量账本统计
func (s *EntitlementService) Stats() (*dto.LedgerStats, error) {
	return s.userRepo.Stats(s.now())
}
