package repository

import (
	"context"
	"errors"

	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"gorm.io/gorm"
)

type VendorGormRepository struct {
	db *gorm.DB
}

// DI
func NewVendorGormRepository(db *gorm.DB) *VendorGormRepository {
	return &VendorGormRepository{db: db}
}

func (r *VendorGormRepository) FindByID(ctx context.Context, id int64) (model.Vendor, error) {
	var v model.Vendor
	err := r.db.WithContext(ctx).First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Vendor{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Vendor{}, err
	}
	return v, nil
}

func (r *VendorGormRepository) Create(ctx context.Context, v model.Vendor) (model.Vendor, error) {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return model.Vendor{}, err
	}
	return v, nil
}

func (r *VendorGormRepository) List(ctx context.Context, page int, limit int) ([]model.Vendor, int64, error) {
	var vendors []model.Vendor
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Vendor{})

	if err := tx.Count(&total).Error; err != nil {
		return []model.Vendor{}, 0, err
	}

	offset := (page - 1) * limit
	if err := tx.Order("id asc").Offset(offset).Limit(limit).Find(&vendors).Error; err != nil {
		return []model.Vendor{}, 0, err
	}

	return vendors, total, nil
}
