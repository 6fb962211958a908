package model

import "time"

type MutationSource string

const (
	MutationSourceSale       MutationSource = "SALE"
	MutationSourceVoid       MutationSource = "VOID"
	MutationSourcePOReceipt  MutationSource = "PO_RECEIPT"
	MutationSourceAdjustment MutationSource = "ADJUSTMENT"
)

// 在庫変動の追記専用ログ。作成後は更新も削除もしない。
type StockMutation struct {
	ID                int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID         int64          `gorm:"not null;index" json:"product_id"`
	Delta             int64          `gorm:"not null" json:"delta"`
	ResultingQuantity int64          `gorm:"not null" json:"resulting_quantity"`
	SourceKind        MutationSource `gorm:"type:varchar(20);not null;index" json:"source_kind"`
	SourceRef         string         `gorm:"type:varchar(64);not null" json:"source_ref"`
	CreatedAt         time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}
