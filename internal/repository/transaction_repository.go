package repository

import (
	"context"
	"time"

	"pos/internal/domain/model"
)

type TransactionRepository interface {
	Create(ctx context.Context, t model.Transaction) (int64, error)

	FindByID(ctx context.Context, transactionID int64) (model.Transaction, error)

	// 同じキーなら同じ注文を返すための検索
	FindByIdempotencyKey(ctx context.Context, key string) (model.Transaction, bool, error)

	MarkVoided(ctx context.Context, transactionID int64, reason string, voidedAt time.Time) error

	List(ctx context.Context, page int, limit int) ([]model.Transaction, int64, error)
}

type TransactionItemRepository interface {
	CreateBulk(ctx context.Context, transactionID int64, items []model.TransactionItem) error

	ListByTransactionID(ctx context.Context, transactionID int64) ([]model.TransactionItem, error)
}
