package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expresskart/expresskart-backend/pkg/db/models"
)

// ProductDTO is the API shape of a catalog entry. Price and inventory are
// always nested.
type ProductDTO struct {
	ID          uuid.UUID      `json:"id"`
	VendorID    uuid.UUID      `json:"vendorId"`
	Vendor      *VendorSummary `json:"vendor,omitempty"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Category    string         `json:"category"`
	Brand       *string        `json:"brand,omitempty"`
	Tags        []string       `json:"tags"`
	Images      []string       `json:"images"`
	Price       PriceDTO       `json:"price"`
	Inventory   InventoryDTO   `json:"inventory"`
	IsActive    bool           `json:"isActive"`
	IsFeatured  bool           `json:"isFeatured"`
	Rating      RatingDTO      `json:"rating"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type PriceDTO struct {
	MRP                decimal.Decimal `json:"mrp"`
	SellingPrice       decimal.Decimal `json:"sellingPrice"`
	DiscountPercentage int             `json:"discountPercentage"`
}

type InventoryDTO struct {
	Stock    int    `json:"stock"`
	MinStock int    `json:"minStock"`
	MaxStock *int   `json:"maxStock,omitempty"`
	Unit     string `json:"unit"`
}

type RatingDTO struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// VendorSummary is the vendor block embedded in product responses.
type VendorSummary struct {
	ID           uuid.UUID `json:"id"`
	BusinessName string    `json:"businessName"`
}

// SuggestionDTO is one autocomplete hit.
type SuggestionDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

// ListQuery holds the public catalog filters.
type ListQuery struct {
	Category string
	VendorID *uuid.UUID
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Search   string
	Featured *bool
	Sort     string
}

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortName      = "name"
)

// ValidSort reports whether s is a supported sort key. Empty means newest.
func ValidSort(s string) bool {
	switch s {
	case "", SortNewest, SortPriceAsc, SortPriceDesc, SortRating, SortName:
		return true
	}
	return false
}

// NewProductDTO maps the model to the API shape.
func NewProductDTO(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:          p.ID,
		VendorID:    p.VendorID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Tags:        nonNil(p.Tags),
		Images:      nonNil(p.Images),
		Price: PriceDTO{
			MRP:                p.MRP,
			SellingPrice:       p.SellingPrice,
			DiscountPercentage: p.DiscountPercentage,
		},
		Inventory: InventoryDTO{
			Stock:    p.Stock,
			MinStock: p.MinStock,
			MaxStock: p.MaxStock,
			Unit:     p.Unit,
		},
		IsActive:   p.IsActive,
		IsFeatured: p.IsFeatured,
		Rating:     RatingDTO{Average: p.RatingAverage, Count: p.RatingCount},
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Vendor != nil {
		dto.Vendor = &VendorSummary{ID: p.Vendor.ID, BusinessName: p.Vendor.BusinessName}
	}
	return dto
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
