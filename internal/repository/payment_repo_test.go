package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentra-ai/zentra_go_bot/internal/model"
	"github.com/zentra-ai/zentra_go_bot/internal/testutil"
)

func TestPaymentRepository_Record_DuplicateIsNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)

	created, err := repo.Record(&model.Payment{
		PaymentID: "pay_001",
		UserID:    42,
		Amount:    29.99,
		Currency:  "usdttrc20",
		Status:    model.PaymentStatusFinished,
	})
	require.NoError(t, err)
	assert.True(t, created)

	// 同一 payment_id 重复落库应被忽略
	created, err = repo.Record(&model.Payment{
		PaymentID: "pay_001",
		UserID:    42,
		Amount:    29.99,
		Currency:  "usdttrc20",
		Status:    model.PaymentStatusFinished,
	})
	require.NoError(t, err)
	assert.False(t, created)

	payments, err := repo.ListByUser(42, 10)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestPaymentRepository_GetByPaymentID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	testutil.TestPayment(t, db, "pay_002", 7)

	payment, err := repo.GetByPaymentID("pay_002")
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, int64(7), payment.UserID)

	missing, err := repo.GetByPaymentID("pay_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
