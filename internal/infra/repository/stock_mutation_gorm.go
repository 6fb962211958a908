package repository

import (
	"context"

	"pos/internal/domain/model"

	"gorm.io/gorm"
)

type StockMutationGormRepository struct {
	db *gorm.DB
}

// DI
func NewStockMutationGormRepository(db *gorm.DB) *StockMutationGormRepository {
	return &StockMutationGormRepository{db: db}
}

// 監査行の追記
func (r *StockMutationGormRepository) Create(ctx context.Context, m model.StockMutation) (model.StockMutation, error) {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return model.StockMutation{}, err
	}
	return m, nil
}

// 新しい順に商品の変動履歴を返す
func (r *StockMutationGormRepository) ListByProductID(ctx context.Context, productID int64, limit int) ([]model.StockMutation, error) {
	var mutations []model.StockMutation
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id desc").
		Limit(limit).
		Find(&mutations).Error
	if err != nil {
		return []model.StockMutation{}, err
	}
	return mutations, nil
}

// 突合用：deltaの合計
func (r *StockMutationGormRepository) SumDeltaByProductID(ctx context.Context, productID int64) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.StockMutation{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}
