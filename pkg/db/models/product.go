package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a vendor-owned catalog entry. Rows are soft deleted through
// IsActive so historical orders keep resolving.
type Product struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID           uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null;index"`
	Vendor             *Vendor         `gorm:"foreignKey:VendorID"`
	Name               string          `gorm:"column:name;not null"`
	Description        *string         `gorm:"column:description"`
	Category           string          `gorm:"column:category;not null"`
	Brand              *string         `gorm:"column:brand"`
	Tags               []string        `gorm:"column:tags;type:jsonb;serializer:json"`
	Images             []string        `gorm:"column:images;type:jsonb;serializer:json"`
	MRP                decimal.Decimal `gorm:"column:mrp;type:numeric(12,2);not null"`
	SellingPrice       decimal.Decimal `gorm:"column:selling_price;type:numeric(12,2);not null"`
	DiscountPercentage int             `gorm:"column:discount_percentage;not null;default:0"`
	Stock              int             `gorm:"column:stock;not null;default:0"`
	MinStock           int             `gorm:"column:min_stock;not null;default:0"`
	MaxStock           *int            `gorm:"column:max_stock"`
	Unit               string          `gorm:"column:unit;not null;default:'piece'"`
	IsActive           bool            `gorm:"column:is_active;not null;default:true"`
	IsFeatured         bool            `gorm:"column:is_featured;not null;default:false"`
	RatingAverage      float64         `gorm:"column:rating_average;not null;default:0"`
	RatingCount        int             `gorm:"column:rating_count;not null;default:0"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// PrimaryImage returns the first image reference, if any.
func (p *Product) PrimaryImage() *string {
	if p == nil || len(p.Images) == 0 {
		return nil
	}
	img := p.Images[0]
	return &img
}

// RecomputeDiscount derives DiscountPercentage from MRP and SellingPrice,
// rounded to the nearest whole percent.
func (p *Product) RecomputeDiscount() {
	p.DiscountPercentage = DiscountPercent(p.MRP, p.SellingPrice)
}

// DiscountPercent returns round((mrp - selling) / mrp * 100), floored at 0.
func DiscountPercent(mrp, selling decimal.Decimal) int {
	if !mrp.IsPositive() || selling.GreaterThanOrEqual(mrp) {
		return 0
	}
	pct := mrp.Sub(selling).Div(mrp).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}
