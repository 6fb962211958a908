package repository

import (
	"context"

	"pos/internal/domain/model"
)

type AdjustmentRepository interface {
	Create(ctx context.Context, adj model.InventoryAdjustment) (model.InventoryAdjustment, error)

	ListByProductID(ctx context.Context, productID int64, page int, limit int) ([]model.InventoryAdjustment, int64, error)
}
