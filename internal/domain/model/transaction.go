package model

import "time"

type TransactionStatus string

const (
	TransactionStatusDraft     TransactionStatus = "DRAFT"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusVoided    TransactionStatus = "VOIDED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

type Transaction struct {
	ID             int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Number         string            `gorm:"type:varchar(32);not null;uniqueIndex" json:"number"`
	CashierUserID  int64             `gorm:"not null;index" json:"cashier_user_id"`
	Status         TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalPrice     int64             `gorm:"not null" json:"total_price"`
	VoidReason     string            `gorm:"type:varchar(255)" json:"void_reason,omitempty"`
	VoidedAt       *time.Time        `json:"voided_at,omitempty"`
	IdempotencyKey string            `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
