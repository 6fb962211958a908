package repository

import (
	"context"
	"errors"
	"time"

	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"gorm.io/gorm"
)

type TransactionGormRepository struct {
	db *gorm.DB
}

// DI
func NewTransactionGormRepository(db *gorm.DB) *TransactionGormRepository {
	return &TransactionGormRepository{db: db}
}

func (r *TransactionGormRepository) Create(ctx context.Context, t model.Transaction) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (r *TransactionGormRepository) FindByID(ctx context.Context, id int64) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Transaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// 同じキーなら同じ取引を返すための検索
func (r *TransactionGormRepository) FindByIdempotencyKey(ctx context.Context, key string) (model.Transaction, bool, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Transaction{}, false, nil
	}
	if err != nil {
		return model.Transaction{}, false, err
	}
	return t, true, nil
}

// 取消の記録。statusの遷移チェックはusecase側で済ませてある。
func (r *TransactionGormRepository) MarkVoided(ctx context.Context, id int64, reason string, voidedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.TransactionStatusVoided,
			"void_reason": reason,
			"voided_at":   voidedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *TransactionGormRepository) List(ctx context.Context, page int, limit int) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Transaction{})

	if err := tx.Count(&total).Error; err != nil {
		return []model.Transaction{}, 0, err
	}

	offset := (page - 1) * limit
	if err := tx.Order("id desc").Offset(offset).Limit(limit).Find(&transactions).Error; err != nil {
		return []model.Transaction{}, 0, err
	}

	return transactions, total, nil
}

type TransactionItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewTransactionItemGormRepository(db *gorm.DB) *TransactionItemGormRepository {
	return &TransactionItemGormRepository{db: db}
}

func (r *TransactionItemGormRepository) CreateBulk(ctx context.Context, transactionID int64, items []model.TransactionItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].TransactionID = transactionID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *TransactionItemGormRepository) ListByTransactionID(ctx context.Context, transactionID int64) ([]model.TransactionItem, error) {
	var items []model.TransactionItem
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.TransactionItem{}, err
	}
	return items, nil
}
