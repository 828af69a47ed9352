package model

import (
	"time"
)

// 支付状态，取值跟随 NOWPayments IPN
const (
	PaymentStatusFinished = "finished"
	PaymentStatusExpired  = "expired"
	PaymentStatusFailed   = "failed"
)

// Payment 支付回调记录，payment_id 唯一索引保证重复回调只生效一次
type Payment struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	PaymentID  string    `gorm:"size:64;uniqueIndex;not null" json:"payment_id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	Amount     float64   `gorm:"type:decimal(10,2)" json:"amount"`
	Currency   string    `gorm:"size:10" json:"currency"`
	Status     string    `gorm:"size:20;index" json:"status"`
	OrderID    string    `gorm:"size:64" json:"order_id"`
	PayAddress string    `gorm:"size:128" json:"pay_address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
