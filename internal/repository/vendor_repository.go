package repository

import (
	"context"

	"pos/internal/domain/model"
)

type VendorRepository interface {
	FindByID(ctx context.Context, vendorID int64) (model.Vendor, error)

	Create(ctx context.Context, v model.Vendor) (model.Vendor, error)

	List(ctx context.Context, page int, limit int) ([]model.Vendor, int64, error)
}
