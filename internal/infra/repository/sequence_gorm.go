package repository

import (
	"context"

	"gorm.io/gorm"
)

type SequenceGormRepository struct {
	db *gorm.DB
}

// DI
func NewSequenceGormRepository(db *gorm.DB) *SequenceGormRepository {
	return &SequenceGormRepository{db: db}
}

// アトミックなincrement-and-fetch。行ロックはUPSERTが取る。
func (r *SequenceGormRepository) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequences (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, name).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
