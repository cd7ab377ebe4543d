package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

const defaultUnit = "piece"

type vendorLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error)
}

// Service exposes catalog browsing and vendor product management.
type Service interface {
	List(ctx context.Context, q ListQuery, params pagination.Params) ([]ProductDTO, types.PaginationMeta, error)
	Suggestions(ctx context.Context, term string) ([]SuggestionDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]ProductDTO, types.PaginationMeta, error)
	Mine(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]ProductDTO, types.PaginationMeta, error)
	Create(ctx context.Context, userID uuid.UUID, input ProductInput) (*ProductDTO, error)
	Update(ctx context.Context, userID uuid.UUID, role enums.Role, productID uuid.UUID, input ProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, userID uuid.UUID, role enums.Role, productID uuid.UUID) error
}

type service struct {
	repo    *Repository
	vendors vendorLookup
}

func NewService(repository *Repository, vendors vendorLookup) (Service, error) {
	if repository == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor lookup required")
	}
	return &service{repo: repository, vendors: vendors}, nil
}

func (s *service) List(ctx context.Context, q ListQuery, params pagination.Params) ([]ProductDTO, types.PaginationMeta, error) {
	if !ValidSort(q.Sort) {
		return nil, types.PaginationMeta{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort").
			WithDetails(map[string]any{"allowed": []string{SortNewest, SortPriceAsc, SortPriceDesc, SortRating, SortName}})
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return nil, types.PaginationMeta{}, pkgerrors.New(pkgerrors.CodeValidation, "minPrice cannot exceed maxPrice")
	}
	rows, total, err := s.repo.List(ctx, q, params)
	if err != nil {
		return nil, types.PaginationMeta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return toDTOs(rows), pagination.Meta(params, total), nil
}

func (s *service) Suggestions(ctx context.Context, term string) ([]SuggestionDTO, error) {
	rows, err := s.repo.Suggest(ctx, term)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "suggest products")
	}
	return rows, nil
}

// Get returns an active product. Inactive products are only visible to their
// vendor through Mine.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repo.LookupError(err, "product not found", "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]ProductDTO, types.PaginationMeta, error) {
	if _, err := s.vendors.FindByID(ctx, vendorID); err != nil {
		return nil, types.PaginationMeta{}, repo.LookupError(err, "vendor not found", "load vendor")
	}
	rows, total, err := s.repo.ListByVendor(ctx, vendorID, false, params)
	if err != nil {
		return nil, types.PaginationMeta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor products")
	}
	return toDTOs(rows), pagination.Meta(params, total), nil
}

func (s *service) Mine(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]ProductDTO, types.PaginationMeta, error) {
	vendor, err := s.vendors.FindByUserID(ctx, userID)
	if err != nil {
		return nil, types.PaginationMeta{}, repo.LookupError(err, "vendor profile not found", "load vendor")
	}
	rows, total, err := s.repo.ListByVendor(ctx, vendor.ID, true, params)
	if err != nil {
		return nil, types.PaginationMeta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor products")
	}
	return toDTOs(rows), pagination.Meta(params, total), nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input ProductInput) (*ProductDTO, error) {
	vendor, err := s.vendors.FindByUserID(ctx, userID)
	if err != nil {
		return nil, repo.LookupError(err, "vendor profile not found", "load vendor")
	}
	if vendor.Status != enums.VendorStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile is not active")
	}
	if input.Name == nil || *input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Category == nil || *input.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if input.MRP == nil || input.SellingPrice == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price.mrp and price.sellingPrice are required")
	}

	product := &models.Product{
		VendorID: vendor.ID,
		Unit:     defaultUnit,
		IsActive: true,
	}
	apply(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	product.Vendor = vendor
	return NewProductDTO(product), nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, role enums.Role, productID uuid.UUID, input ProductInput) (*ProductDTO, error) {
	product, err := s.authorizedProduct(ctx, userID, role, productID)
	if err != nil {
		return nil, err
	}
	apply(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return NewProductDTO(product), nil
}

// Delete soft deletes the product so existing orders keep resolving it.
func (s *service) Delete(ctx context.Context, userID uuid.UUID, role enums.Role, productID uuid.UUID) error {
	if _, err := s.authorizedProduct(ctx, userID, role, productID); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, productID, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) authorizedProduct(ctx context.Context, userID uuid.UUID, role enums.Role, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, repo.LookupError(err, "product not found", "load product")
	}
	if role == enums.RoleAdmin {
		return product, nil
	}
	if product.Vendor == nil || product.Vendor.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another vendor")
	}
	return product, nil
}

func apply(p *models.Product, in ProductInput) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			p.Description = nil
		} else {
			p.Description = &desc
		}
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Brand != nil {
		if *in.Brand == "" {
			p.Brand = nil
		} else {
			brand := *in.Brand
			p.Brand = &brand
		}
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}
	if in.Images != nil {
		p.Images = *in.Images
	}
	if in.MRP != nil {
		p.MRP = in.MRP.Round(2)
	}
	if in.SellingPrice != nil {
		p.SellingPrice = in.SellingPrice.Round(2)
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.MinStock != nil {
		p.MinStock = *in.MinStock
	}
	if in.MaxStock != nil {
		maxStock := *in.MaxStock
		p.MaxStock = &maxStock
	}
	if in.Unit != nil && *in.Unit != "" {
		p.Unit = *in.Unit
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	p.RecomputeDiscount()
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
	case p.Category == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
	case !p.MRP.IsPositive() || !p.SellingPrice.IsPositive():
		return pkgerrors.New(pkgerrors.CodeValidation, "prices must be greater than zero")
	case p.SellingPrice.GreaterThan(p.MRP):
		return pkgerrors.New(pkgerrors.CodeValidation, "sellingPrice cannot exceed mrp")
	case p.Stock < 0 || p.MinStock < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "stock values cannot be negative")
	case p.MaxStock != nil && *p.MaxStock < p.MinStock:
		return pkgerrors.New(pkgerrors.CodeValidation, "maxStock cannot be below minStock")
	}
	return nil
}

func toDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out
}
