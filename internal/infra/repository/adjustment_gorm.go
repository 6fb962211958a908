package repository

import (
	"context"

	"pos/internal/domain/model"

	"gorm.io/gorm"
)

type AdjustmentGormRepository struct {
	db *gorm.DB
}

// DI
func NewAdjustmentGormRepository(db *gorm.DB) *AdjustmentGormRepository {
	return &AdjustmentGormRepository{db: db}
}

// 調整履歴作成
func (r *AdjustmentGormRepository) Create(ctx context.Context, adj model.InventoryAdjustment) (model.InventoryAdjustment, error) {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return model.InventoryAdjustment{}, err
	}
	return adj, nil
}

func (r *AdjustmentGormRepository) ListByProductID(ctx context.Context, productID int64, page int, limit int) ([]model.InventoryAdjustment, int64, error) {
	var adjustments []model.InventoryAdjustment
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.InventoryAdjustment{}).
		Where("product_id = ?", productID)

	if err := tx.Count(&total).Error; err != nil {
		return []model.InventoryAdjustment{}, 0, err
	}

	offset := (page - 1) * limit
	if err := tx.Order("id desc").Offset(offset).Limit(limit).Find(&adjustments).Error; err != nil {
		return []model.InventoryAdjustment{}, 0, err
	}

	return adjustments, total, nil
}
