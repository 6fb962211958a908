package repository

import (
	"context"
	"errors"

	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"gorm.io/gorm"
)

type PurchaseOrderGormRepository struct {
	db *gorm.DB
}

// DI
func NewPurchaseOrderGormRepository(db *gorm.DB) *PurchaseOrderGormRepository {
	return &PurchaseOrderGormRepository{db: db}
}

func (r *PurchaseOrderGormRepository) Create(ctx context.Context, po model.PurchaseOrder) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&po).Error; err != nil {
		return 0, err
	}
	return po.ID, nil
}

func (r *PurchaseOrderGormRepository) FindByID(ctx context.Context, id int64) (model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).First(&po, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PurchaseOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PurchaseOrder{}, err
	}
	return po, nil
}

func (r *PurchaseOrderGormRepository) UpdateStatus(ctx context.Context, id int64, status model.PurchaseOrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PurchaseOrderGormRepository) List(ctx context.Context, q repo.PurchaseOrderListQuery) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.PurchaseOrder{})

	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.PurchaseOrder{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("id desc").Offset(offset).Limit(q.Limit).Find(&orders).Error; err != nil {
		return []model.PurchaseOrder{}, 0, err
	}

	return orders, total, nil
}

type PurchaseOrderItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewPurchaseOrderItemGormRepository(db *gorm.DB) *PurchaseOrderItemGormRepository {
	return &PurchaseOrderItemGormRepository{db: db}
}

func (r *PurchaseOrderItemGormRepository) CreateBulk(ctx context.Context, poID int64, items []model.PurchaseOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].PurchaseOrderID = poID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *PurchaseOrderItemGormRepository) ListByPurchaseOrderID(ctx context.Context, poID int64) ([]model.PurchaseOrderItem, error) {
	var items []model.PurchaseOrderItem
	err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", poID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.PurchaseOrderItem{}, err
	}
	return items, nil
}

// 受領数の加算。発注数を超える加算は条件で弾き、falseを返す。
func (r *PurchaseOrderItemGormRepository) AddReceived(ctx context.Context, itemID int64, qty int64, notes string) (bool, error) {
	updates := map[string]interface{}{
		"quantity_received": gorm.Expr("quantity_received + ?", qty),
	}
	if notes != "" {
		updates["receiving_notes"] = notes
	}

	res := r.db.WithContext(ctx).Model(&model.PurchaseOrderItem{}).
		Where("id = ? AND quantity_received + ? <= quantity_ordered", itemID, qty).
		Updates(updates)

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}
