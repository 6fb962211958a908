package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pos/internal/domain/model"
	repo "pos/internal/repository"
)

type VendorUsecase struct {
	vendorRepo repo.VendorRepository
}

// DI
func NewVendorUsecase(vendorRepo repo.VendorRepository) *VendorUsecase {
	return &VendorUsecase{vendorRepo: vendorRepo}
}

type CreateVendorInput struct {
	Name  string
	Email string
	Phone string
}

func (u *VendorUsecase) CreateVendor(ctx context.Context, in CreateVendorInput) (model.Vendor, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return model.Vendor{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}

	created, err := u.vendorRepo.Create(ctx, model.Vendor{
		Name:     name,
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		IsActive: true,
	})
	if err != nil {
		return model.Vendor{}, err
	}
	return created, nil
}

func (u *VendorUsecase) GetVendor(ctx context.Context, vendorID int64) (model.Vendor, error) {
	if vendorID <= 0 {
		return model.Vendor{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	v, err := u.vendorRepo.FindByID(ctx, vendorID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Vendor{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Vendor{}, err
	}
	return v, nil
}

type VendorListOutput struct {
	Items []model.Vendor `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func (u *VendorUsecase) ListVendors(ctx context.Context, page int, limit int) (VendorListOutput, error) {
	if page < 1 {
		return VendorListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return VendorListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.vendorRepo.List(ctx, page, limit)
	if err != nil {
		return VendorListOutput{}, err
	}

	return VendorListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}
