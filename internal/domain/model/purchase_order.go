package model

import "time"

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusSubmitted         PurchaseOrderStatus = "SUBMITTED"
	PurchaseOrderStatusApproved          PurchaseOrderStatus = "APPROVED"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusReceived          PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusClosed            PurchaseOrderStatus = "CLOSED"
	PurchaseOrderStatusCanceled          PurchaseOrderStatus = "CANCELED"
)

type PurchaseOrder struct {
	ID              int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Number          string              `gorm:"type:varchar(32);not null;uniqueIndex" json:"number"`
	VendorID        int64               `gorm:"not null;index" json:"vendor_id"`
	Status          PurchaseOrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ShippingCost    int64               `gorm:"not null;default:0" json:"shipping_cost"`
	Notes           string              `gorm:"type:text" json:"notes,omitempty"`
	CreatedByUserID int64               `gorm:"not null" json:"created_by_user_id"`
	CreatedAt       time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
