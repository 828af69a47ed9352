package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zentra-ai/zentra_go_bot/config"
	"github.com/zentra-ai/zentra_go_bot/internal/repository"
	"github.com/zentra-ai/zentra_go_bot/internal/testutil"
)

func setupEntitlementService(t *testing.T) (*EntitlementService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)

	cfg := &config.Config{
		Billing: config.BillingConfig{
			FreeDailyLimit:   3,
			TextCost:         0.10,
			ImageCost:        0.04,
			SubscriptionDays: 30,
			SubscriberBudget: 6.0,
		},
	}

	userRepo := repository.NewUserRepository(db)
	svc := NewEntitlementService(userRepo, cfg)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return svc, db, cleanup
}

func TestEntitlementService_EnsureAccount_Idempotent(t *testing.T) {
	svc, _, cleanup := setupEntitlementService(t)
	defer cleanup()

	first, err := svc.EnsureAccount(1001)
	require.NoError(t, err)

	second, err := svc.EnsureAccount(1001)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.FreeUsedToday, second.FreeUsedToday)
	assert.WithinDuration(t, first.LastReset, second.LastReset, time.Second)
}

func TestEntitlementService_FreeExhaustion(t *testing.T) {
	svc, _, cleanup := setupEntitlementService(t)
	defer cleanup()

	// 前三次放行，第四次要求订阅
	for i := 0; i < 3; i++ {
		decision, err := svc.Authorize(2001, false)
		require.NoError(t, err)
		assert.Equal(t, DecisionAllowFree, decision.Kind, "request %d", i+1)
		require.NoError(t, svc.Confirm(decision))
	}

	decision, err := svc.Authorize(2001, false)
	require.NoError(t, err)
	assert.Equal(t, DecisionDenyNeedsSubscription, decision.Kind)
}

func TestEntitlementService_BudgetExhaustion(t *testing.T) {
	svc, db, cleanup := setupEntitlementService(t)
	defer cleanup()

	expiresAt := time.Now().Add(24 * time.Hour)
	account := testutil.TestAccount(t, db, testutil.WithSubscription(expiresAt, 0.25))

	for i := 0; i < 2; i++ {
		decision, err := svc.Authorize(account.ID, false)
		require.NoError(t, err)
		assert.Equal(t, DecisionAllowPaid, decision.Kind)
		assert.InDelta(t, 0.10, decision.Cost, 0.0001)
		require.NoError(t, svc.Confirm(decision))
	}

	// 剩 0.05，第三次直接拒绝而不是扣成负数
	decision, err := svc.Authorize(account.ID, false)
	require.NoError(t, err)
	assert.Equal(t, DecisionDenyBudgetExhausted, decision.Kind)

	got, err := repository.NewUserRepository(db).GetByID(account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, got.BudgetRemaining, 0.0001)
}

func TestEntitlementService_CostSelection(t *testing.T) {
	svc, db, cleanup := setupEntitlementService(t)
	defer cleanup()

	expiresAt := time.Now().Add(24 * time.Hour)
	account := testutil.TestAccount(t, db, testutil.WithSubscription(expiresAt, 6.0))

	text, err := svc.Authorize(account.ID, false)
	require.NoError(t, err)
	assert.Equal(t, DecisionAllowPaid, text.Kind)
	assert.InDelta(t, 0.10, text.Cost, 0.0001)

	image, err := svc.Authorize(account.ID, true)
	require.NoError(t, err)
	assert.Equal(t, DecisionAllowPaid, image.Kind)
	assert.InDelta(t, 0.04, image.Cost, 0.0001)
}

func TestDecision_Allowed(t *testing.T) {
	tests := []struct {
		kind DecisionKind
		want bool
	}{
		{DecisionAllowFree, true},
		{DecisionAllowPaid, true},
		{DecisionDenyNeedsSubscription, false},
		{DecisionDenyBudgetExhausted, false},
	}
	for _, tt := range tests {
		d := Decision{Kind: tt.kind}
		assert.Equal(t, tt.want, d.Allowed())
	}
}

func TestEntitlementService_ExpiredFallsBackToFree(t *testing.T) {
	svc, db, cleanup := setupEntitlementService(t)
	defer cleanup()

	// 订阅刚过期，按免费路径处理，历史计数保留
	expiresAt := time.Now().Add(-time.Second)
	account := testutil.TestAccount(t, db, testutil.WithSubscription(expiresAt, 3.0))

	decision, err := svc.Authorize(account.ID, false)
	require.NoError(t, err)
	assert.Equal(t, DecisionAllowFree, decision.Kind)
}

func TestEntitlementService_QuotaResetBoundary(t *testing.T) {
	svc, db, cleanup := setupEntitlementService(t)
	defer cleanup()

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	account := testutil.TestAccount(t, db,
		testutil.WithFreeUsed(3),
		testutil.WithLastReset(t0),
	)

	// 86399 秒：窗口未满，计数保持
	svc.now = func() time.Time { return t0.Add(86399 * time.Second) }
	info, err := svc.GetQuotaInfo(account.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, info.FreeUsedToday)

	// 86400 秒：清零并刷新窗口起点
	resetTime := t0.Add(86400 * time.Second)
	svc.now = func() time.Time { return resetTime }
	info, err = svc.GetQuotaInfo(account.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, info.FreeUsedToday)

	got, err := repository.NewUserRepository(db).GetByID(account.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, resetTime, got.LastReset, time.Second)
}

func TestEntitlementService_ActivateSubscription(t *testing.T) {
	svc, _, cleanup := setupEntitlementService(t)
	defer cleanup()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	account, err := svc.ActivateSubscription(3001)
	require.NoError(t, err)

	require.NotNil(t, account.SubscriptionExpiresAt)
	assert.WithinDuration(t, now.Add(30*24*time.Hour), *account.SubscriptionExpiresAt, time.Second)
	assert.InDelta(t, 6.0, account.BudgetRemaining, 0.0001)
	assert.True(t, account.IsSubscribed(now))
}

func TestEntitlementService_ReactivationDoesNotAccumulate(t *testing.T) {
	svc, db, cleanup := setupEntitlementService(t)
	defer cleanup()

	account, err := svc.ActivateSubscription(3002)
	require.NoError(t, err)

	// 花掉一部分预算后续费，预算回到额定值而不是叠加
	decision, err := svc.Authorize(account.ID, false)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(decision))

	renewed, err := svc.ActivateSubscription(account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, renewed.BudgetRemaining, 0.0001)

	got, err := repository.NewUserRepository(db).GetByID(account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, got.TotalSpent, 0.0001)
}

func TestEntitlementService_FailedCallDoesNotDebit(t *testing.T) {
	svc, db, cleanup := setupEntitlementService(t)
	defer cleanup()

	expiresAt := time.Now().Add(24 * time.Hour)
	account := testutil.TestAccount(t, db, testutil.WithSubscription(expiresAt, 6.0))

	decision, err := svc.Authorize(account.ID, false)
	require.NoError(t, err)
	assert.Equal(t, DecisionAllowPaid, decision.Kind)

	// 外部调用失败，只调 RecordFailure，不 Confirm
	svc.RecordFailure(decision)

	got, err := repository.NewUserRepository(db).GetByID(account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, got.BudgetRemaining, 0.0001)
	assert.Equal(t, int64(0), got.TotalCalls)
}

func TestEntitlementService_ConfirmLostRace(t *testing.T) {
	svc, db, cleanup := setupEntitlementService(t)
	defer cleanup()

	account := testutil.TestAccount(t, db, testutil.WithFreeUsed(2))

	first, err := svc.Authorize(account.ID, false)
	require.NoError(t, err)
	second, err := svc.Authorize(account.ID, false)
	require.NoError(t, err)

	// 两个请求都拿到放行，确认时只有一个能拿到最后的额度
	require.NoError(t, svc.Confirm(first))
	err = svc.Confirm(second)
	assert.ErrorIs(t, err, ErrNeedsSubscription)

	got, err := repository.NewUserRepository(db).GetByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.FreeUsedToday)
}
