package products

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductInput is the canonical product write model. Nil fields are left
// unchanged on update and are required on create where noted by Validate.
type ProductInput struct {
	Name         *string
	Description  *string
	Category     *string
	Brand        *string
	Tags         *[]string
	Images       *[]string
	MRP          *decimal.Decimal
	SellingPrice *decimal.Decimal
	Stock        *int
	MinStock     *int
	MaxStock     *int
	Unit         *string
	IsActive     *bool
	IsFeatured   *bool
}

// PricePayload is the nested price object accepted on writes.
type PricePayload struct {
	MRP          *decimal.Decimal `json:"mrp"`
	SellingPrice *decimal.Decimal `json:"sellingPrice"`
}

// InventoryPayload is the nested inventory object accepted on writes.
type InventoryPayload struct {
	Stock    *int    `json:"stock"`
	MinStock *int    `json:"minStock"`
	MaxStock *int    `json:"maxStock"`
	Unit     *string `json:"unit"`
}

// ProductPayload is the request body of product create and update. Price and
// inventory may arrive nested or as flat keys; Normalize folds both into one
// ProductInput.
type ProductPayload struct {
	Name        *string           `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=5000"`
	Category    *string           `json:"category" validate:"omitempty,min=2,max=60"`
	Brand       *string           `json:"brand" validate:"omitempty,max=100"`
	Tags        *[]string         `json:"tags" validate:"omitempty,max=30,dive,max=40"`
	Images      *[]string         `json:"images" validate:"omitempty,max=10,dive,url"`
	Price       *PricePayload     `json:"price"`
	Inventory   *InventoryPayload `json:"inventory"`
	IsActive    *bool             `json:"isActive"`
	IsFeatured  *bool             `json:"isFeatured"`

	MRP          *decimal.Decimal `json:"mrp"`
	SellingPrice *decimal.Decimal `json:"sellingPrice"`
	Stock        *int             `json:"stock"`
	MinStock     *int             `json:"minStock"`
	MaxStock     *int             `json:"maxStock"`
	Unit         *string          `json:"unit"`
}

// Normalize resolves the nested and flat shapes. Supplying the same field both
// ways with different values is rejected.
func (p ProductPayload) Normalize() (ProductInput, error) {
	in := ProductInput{
		Name:        trimmed(p.Name),
		Description: p.Description,
		Category:    lowerTrimmed(p.Category),
		Brand:       trimmed(p.Brand),
		Tags:        cleanList(p.Tags, true),
		Images:      cleanList(p.Images, false),
		IsActive:    p.IsActive,
		IsFeatured:  p.IsFeatured,
	}

	var nestedPrice PricePayload
	if p.Price != nil {
		nestedPrice = *p.Price
	}
	var nestedInv InventoryPayload
	if p.Inventory != nil {
		nestedInv = *p.Inventory
	}

	var err error
	if in.MRP, err = pickDecimal("mrp", nestedPrice.MRP, p.MRP); err != nil {
		return ProductInput{}, err
	}
	if in.SellingPrice, err = pickDecimal("sellingPrice", nestedPrice.SellingPrice, p.SellingPrice); err != nil {
		return ProductInput{}, err
	}
	if in.Stock, err = pickInt("stock", nestedInv.Stock, p.Stock); err != nil {
		return ProductInput{}, err
	}
	if in.MinStock, err = pickInt("minStock", nestedInv.MinStock, p.MinStock); err != nil {
		return ProductInput{}, err
	}
	if in.MaxStock, err = pickInt("maxStock", nestedInv.MaxStock, p.MaxStock); err != nil {
		return ProductInput{}, err
	}
	unit, err := pickString("unit", nestedInv.Unit, p.Unit)
	if err != nil {
		return ProductInput{}, err
	}
	in.Unit = lowerTrimmed(unit)
	return in, nil
}

func pickDecimal(field string, nested, flat *decimal.Decimal) (*decimal.Decimal, error) {
	switch {
	case nested != nil && flat != nil && !nested.Equal(*flat):
		return nil, fmt.Errorf("%s given as both nested and flat with different values", field)
	case nested != nil:
		return nested, nil
	default:
		return flat, nil
	}
}

func pickInt(field string, nested, flat *int) (*int, error) {
	switch {
	case nested != nil && flat != nil && *nested != *flat:
		return nil, fmt.Errorf("%s given as both nested and flat with different values", field)
	case nested != nil:
		return nested, nil
	default:
		return flat, nil
	}
}

func pickString(field string, nested, flat *string) (*string, error) {
	switch {
	case nested != nil && flat != nil && strings.TrimSpace(*nested) != strings.TrimSpace(*flat):
		return nil, fmt.Errorf("%s given as both nested and flat with different values", field)
	case nested != nil:
		return nested, nil
	default:
		return flat, nil
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func lowerTrimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*s))
	return &v
}

func cleanList(in *[]string, lower bool) *[]string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(*in))
	seen := map[string]struct{}{}
	for _, v := range *in {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return &out
}
