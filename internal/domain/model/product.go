package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID              int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU             string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"sku"`
	Name            string         `gorm:"type:varchar(255);not null" json:"name"`
	Description     string         `gorm:"type:text" json:"description"`
	Price           int64          `gorm:"not null" json:"price"`
	QuantityInStock int64          `gorm:"not null;default:0" json:"quantity_in_stock"`
	ReorderPoint    int64          `gorm:"not null;default:0" json:"reorder_point"`
	IsActive        bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// 在庫が発注点以下か
func (p Product) NeedsReorder() bool {
	return p.QuantityInStock <= p.ReorderPoint
}
