package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is the single server-side cart of a user. It is emptied, never deleted.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Version   int        `gorm:"column:version;not null;default:1"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	if c.Version == 0 {
		c.Version = 1
	}
	return nil
}

// CartItem snapshots product display and price data at add time. A cart holds
// at most one item per product.
type CartItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID             uuid.UUID       `gorm:"column:cart_id;type:uuid;not null"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name               string          `gorm:"column:name;not null"`
	MRP                decimal.Decimal `gorm:"column:mrp;type:numeric(12,2);not null"`
	SellingPrice       decimal.Decimal `gorm:"column:selling_price;type:numeric(12,2);not null"`
	DiscountPercentage int             `gorm:"column:discount_percentage;not null;default:0"`
	Quantity           int             `gorm:"column:quantity;not null"`
	Image              *string         `gorm:"column:image"`
	VendorID           *uuid.UUID      `gorm:"column:vendor_id;type:uuid"`
	VendorName         string          `gorm:"column:vendor_name;not null;default:''"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// LineTotal is SellingPrice x Quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.SellingPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
