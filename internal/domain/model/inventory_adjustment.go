package model

import "time"

type AdjustmentType string

const (
	AdjustmentTypeDamage     AdjustmentType = "DAMAGE"
	AdjustmentTypeTheft      AdjustmentType = "THEFT"
	AdjustmentTypeFound      AdjustmentType = "FOUND"
	AdjustmentTypeCorrection AdjustmentType = "CORRECTION"
	AdjustmentTypeInitial    AdjustmentType = "INITIAL"
)

// ValidAdjustmentType は入力の種別が既知かを返す。
func ValidAdjustmentType(t AdjustmentType) bool {
	switch t {
	case AdjustmentTypeDamage, AdjustmentTypeTheft, AdjustmentTypeFound,
		AdjustmentTypeCorrection, AdjustmentTypeInitial:
		return true
	}
	return false
}

// 在庫調整の履歴。作成後は不変。
type InventoryAdjustment struct {
	ID              int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Number          string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"number"`
	ProductID       int64          `gorm:"not null;index" json:"product_id"`
	Type            AdjustmentType `gorm:"type:varchar(20);not null" json:"type"`
	Delta           int64          `gorm:"not null" json:"delta"`
	Reason          string         `gorm:"type:varchar(255);not null" json:"reason"`
	Notes           string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedByUserID int64          `gorm:"not null;index" json:"created_by_user_id"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}
