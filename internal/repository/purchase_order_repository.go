package repository

import (
	"context"

	"pos/internal/domain/model"
)

type PurchaseOrderListQuery struct {
	Page   int
	Limit  int
	Status model.PurchaseOrderStatus
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po model.PurchaseOrder) (int64, error)

	FindByID(ctx context.Context, poID int64) (model.PurchaseOrder, error)

	UpdateStatus(ctx context.Context, poID int64, status model.PurchaseOrderStatus) error

	List(ctx context.Context, q PurchaseOrderListQuery) ([]model.PurchaseOrder, int64, error)
}

type PurchaseOrderItemRepository interface {
	CreateBulk(ctx context.Context, poID int64, items []model.PurchaseOrderItem) error

	ListByPurchaseOrderID(ctx context.Context, poID int64) ([]model.PurchaseOrderItem, error)

	// AddReceived は受領数を加算する。発注数を超える加算は行わず
	// RowsAffected=0相当としてErrNotFoundではなくfalseを返す。
	AddReceived(ctx context.Context, itemID int64, qty int64, notes string) (bool, error)
}
