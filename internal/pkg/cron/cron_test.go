package cron

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentra-ai/zentra_go_bot/config"
	"github.com/zentra-ai/zentra_go_bot/internal/pkg/pubsub"
	"github.com/zentra-ai/zentra_go_bot/internal/repository"
	"github.com/zentra-ai/zentra_go_bot/internal/service"
	"github.com/zentra-ai/zentra_go_bot/internal/testutil"
)

func TestCron_ExpiryRemindersOnlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := &config.Config{
		Billing: config.BillingConfig{
			FreeDailyLimit: 3, TextCost: 0.10, ImageCost: 0.04,
			SubscriptionDays: 30, SubscriberBudget: 6.0,
		},
	}

	userRepo := repository.NewUserRepository(db)
	entitlementSvc := service.NewEntitlementService(userRepo, cfg)
	publisher := pubsub.NewPublisher(client)

	// 12 小时后到期，应收到提醒；72 小时后到期的不在窗口内
	expiring := testutil.TestAccount(t, db,
		testutil.WithSubscription(time.Now().Add(12*time.Hour), 2.0))
	testutil.TestAccount(t, db,
		testutil.WithSubscription(time.Now().Add(72*time.Hour), 2.0))

	svc := NewService(entitlementSvc, userRepo, publisher)

	svc.RunNow()

	got, err := userRepo.GetByID(expiring.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ExpiryNotifiedAt)

	// 再跑一次不会重复提醒
	remaining, err := userRepo.ListExpiringSoon(time.Now(), 24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
