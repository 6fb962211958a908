package model

import "time"

type PurchaseOrderItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PurchaseOrderID     int64     `gorm:"not null;index" json:"purchase_order_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	QuantityOrdered     int64     `gorm:"not null" json:"quantity_ordered"`
	QuantityReceived    int64     `gorm:"not null;default:0" json:"quantity_received"`
	UnitCost            int64     `gorm:"not null" json:"unit_cost"`
	ReceivingNotes      string    `gorm:"type:text" json:"receiving_notes,omitempty"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 発注数まで受け取り済みか
func (i PurchaseOrderItem) FullyReceived() bool {
	return i.QuantityReceived >= i.QuantityOrdered
}
