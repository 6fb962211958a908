package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pos/internal/domain/model"
	repo "pos/internal/repository"
)

type ProductUsecase struct {
	productRepo  repo.ProductRepository
	mutationRepo repo.StockMutationRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, mutationRepo repo.StockMutationRepository) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		mutationRepo: mutationRepo,
	}
}

type ListProductsInput struct {
	Page         int
	Limit        int
	Q            string
	ActiveOnly   bool
	LowStockOnly bool
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid q")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:         in.Page,
		Limit:        in.Limit,
		Q:            in.Q,
		ActiveOnly:   in.ActiveOnly,
		LowStockOnly: in.LowStockOnly,
	})
	if err != nil {
		return ProductListOutput{}, err
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

type AdminCreateProductInput struct {
	SKU          string
	Name         string
	Description  string
	Price        int64
	ReorderPoint int64
	IsActive     bool
}

// AdminCreateProduct は在庫0で商品を作る。
// 初期在庫はINITIAL種別の在庫調整で入れる（Ledgerを通らない在庫書き込みは作らない）。
func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, in AdminCreateProductInput) (model.Product, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || len(sku) > 64 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid sku")
	}
	if name == "" || len(name) > 255 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if in.Price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.ReorderPoint < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid reorder_point")
	}

	created, err := u.productRepo.Create(ctx, model.Product{
		SKU:          sku,
		Name:         name,
		Description:  in.Description,
		Price:        in.Price,
		ReorderPoint: in.ReorderPoint,
		IsActive:     in.IsActive,
	})
	if err != nil {
		return model.Product{}, err
	}
	return created, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, productID int64, in AdminCreateProductInput) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || len(sku) > 64 {
		return NewHTTPError(http.StatusBadRequest, "invalid sku")
	}
	if name == "" || len(name) > 255 {
		return NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.ReorderPoint < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid reorder_point")
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:           productID,
		SKU:          sku,
		Name:         name,
		Description:  in.Description,
		Price:        in.Price,
		ReorderPoint: in.ReorderPoint,
		IsActive:     in.IsActive,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return err
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return err
}

type StockHistoryOutput struct {
	ProductID       int64                 `json:"product_id"`
	QuantityInStock int64                 `json:"quantity_in_stock"`
	DeltaSum        int64                 `json:"delta_sum"`
	Mutations       []model.StockMutation `json:"mutations"`
}

// GetStockHistory は変動履歴と突合値を返す。
// quantity_in_stock - delta_sum が初期在庫（通常0）に一致するはず。
func (u *ProductUsecase) GetStockHistory(ctx context.Context, productID int64, limit int) (StockHistoryOutput, error) {
	if productID <= 0 {
		return StockHistoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return StockHistoryOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return StockHistoryOutput{}, err
	}

	mutations, err := u.mutationRepo.ListByProductID(ctx, productID, limit)
	if err != nil {
		return StockHistoryOutput{}, err
	}

	sum, err := u.mutationRepo.SumDeltaByProductID(ctx, productID)
	if err != nil {
		return StockHistoryOutput{}, err
	}

	return StockHistoryOutput{
		ProductID:       p.ID,
		QuantityInStock: p.QuantityInStock,
		DeltaSum:        sum,
		Mutations:       mutations,
	}, nil
}
