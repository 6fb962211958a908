package repository

import (
	"context"

	"pos/internal/domain/model"
)

type StockMutationRepository interface {
	// 監査行の追記。更新系のメソッドは持たない。
	Create(ctx context.Context, m model.StockMutation) (model.StockMutation, error)

	ListByProductID(ctx context.Context, productID int64, limit int) ([]model.StockMutation, error)

	// 突合用：商品のdelta合計
	SumDeltaByProductID(ctx context.Context, productID int64) (int64, error)
}
