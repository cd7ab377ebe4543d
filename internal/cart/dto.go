package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expresskart/expresskart-backend/pkg/db/models"
)

// AddItemRequest adds quantity units of a product. Snapshot fields default to
// the live product when omitted.
type AddItemRequest struct {
	ProductID       uuid.UUID        `json:"productId" validate:"required"`
	Quantity        int              `json:"quantity" validate:"required,min=1,max=1000"`
	MRP             *decimal.Decimal `json:"mrp,omitempty"`
	SellingPrice    *decimal.Decimal `json:"sellingPrice,omitempty"`
	Name            *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Image           *string          `json:"image,omitempty" validate:"omitempty,max=2048"`
	ExpectedVersion *int             `json:"expectedVersion,omitempty" validate:"omitempty,min=1"`
}

// UpdateQuantityRequest sets an absolute quantity. Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity        int  `json:"quantity" validate:"max=1000"`
	ExpectedVersion *int `json:"expectedVersion,omitempty" validate:"omitempty,min=1"`
}

// CartDTO is the cart view returned by every cart endpoint.
type CartDTO struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"userId"`
	Version   int              `json:"version"`
	Items     []CartItemDTO    `json:"items"`
	Vendors   []VendorGroupDTO `json:"vendors"`
	Totals    TotalsDTO        `json:"totals"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type CartItemDTO struct {
	ProductID          uuid.UUID       `json:"productId"`
	Name               string          `json:"name"`
	MRP                decimal.Decimal `json:"mrp"`
	SellingPrice       decimal.Decimal `json:"sellingPrice"`
	DiscountPercentage int             `json:"discountPercentage"`
	Quantity           int             `json:"quantity"`
	Image              *string         `json:"image,omitempty"`
	VendorID           *uuid.UUID      `json:"vendorId,omitempty"`
	VendorName         string          `json:"vendorName"`
	LineTotal          decimal.Decimal `json:"lineTotal"`
}

// VendorGroupDTO collects the lines sold by one vendor.
type VendorGroupDTO struct {
	VendorID   *uuid.UUID      `json:"vendorId,omitempty"`
	VendorName string          `json:"vendorName"`
	Items      []CartItemDTO   `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type TotalsDTO struct {
	ItemCount     int             `json:"itemCount"`
	TotalQuantity int             `json:"totalQuantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// NewCartDTO builds the view with derived totals and vendor groups. Groups
// keep the order in which each vendor first appears.
func NewCartDTO(cart *models.Cart, items []models.CartItem) *CartDTO {
	dto := &CartDTO{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Version:   cart.Version,
		Items:     make([]CartItemDTO, 0, len(items)),
		Vendors:   []VendorGroupDTO{},
		Totals:    TotalsDTO{Subtotal: decimal.Zero},
		UpdatedAt: cart.UpdatedAt,
	}
	groupIndex := map[string]int{}
	for _, item := range items {
		line := CartItemDTO{
			ProductID:          item.ProductID,
			Name:               item.Name,
			MRP:                item.MRP,
			SellingPrice:       item.SellingPrice,
			DiscountPercentage: item.DiscountPercentage,
			Quantity:           item.Quantity,
			Image:              item.Image,
			VendorID:           item.VendorID,
			VendorName:         item.VendorName,
			LineTotal:          item.LineTotal(),
		}
		dto.Items = append(dto.Items, line)
		dto.Totals.ItemCount++
		dto.Totals.TotalQuantity += item.Quantity
		dto.Totals.Subtotal = dto.Totals.Subtotal.Add(line.LineTotal)

		key := ""
		if item.VendorID != nil {
			key = item.VendorID.String()
		}
		idx, ok := groupIndex[key]
		if !ok {
			idx = len(dto.Vendors)
			groupIndex[key] = idx
			dto.Vendors = append(dto.Vendors, VendorGroupDTO{
				VendorID:   item.VendorID,
				VendorName: item.VendorName,
				Items:      []CartItemDTO{},
				Subtotal:   decimal.Zero,
			})
		}
		group := &dto.Vendors[idx]
		group.Items = append(group.Items, line)
		group.Subtotal = group.Subtotal.Add(line.LineTotal)
	}
	return dto
}
