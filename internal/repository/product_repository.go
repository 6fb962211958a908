package repository

import (
	"context"

	"pos/internal/domain/model"
)

type ProductListQuery struct {
	Page         int
	Limit        int
	Q            string
	ActiveOnly   bool
	LowStockOnly bool
}

type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)

	FindByID(ctx context.Context, productID int64) (model.Product, error)

	// FindByIDForUpdate は行ロック付きで取得する（SELECT ... FOR UPDATE）。
	// トランザクション内でのみ意味を持つ。削除済みの行も対象
	// （取消の在庫復元が届くように）。生存チェックは呼び出し側。
	FindByIDForUpdate(ctx context.Context, productID int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)

	Update(ctx context.Context, p model.Product) error

	SoftDelete(ctx context.Context, productID int64) error

	// UpdateQuantity は在庫数の直接書き込み。Ledger以外から呼ばない。
	// FindByIDForUpdateと同じく削除済みの行にも書く。
	UpdateQuantity(ctx context.Context, productID int64, quantity int64) error
}
