package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

// Order is the immutable record of a purchase from one vendor. After creation
// only status, payment status, tracking and notes change.
type Order struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string                 `gorm:"column:order_number;not null;uniqueIndex:orders_order_number_key"`
	UserID          uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	User            *User                  `gorm:"foreignKey:UserID"`
	VendorID        uuid.UUID              `gorm:"column:vendor_id;type:uuid;not null;index"`
	Items           []OrderItem            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal        decimal.Decimal        `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax             decimal.Decimal        `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	ShippingFee     decimal.Decimal        `gorm:"column:shipping_fee;type:numeric(12,2);not null;default:0"`
	Discount        decimal.Decimal        `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal        `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentMethod   enums.PaymentMethod    `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus   enums.PaymentStatus    `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Status          enums.OrderStatus      `gorm:"column:status;type:text;not null;default:'pending'"`
	DeliveryOption  enums.DeliveryOption   `gorm:"column:delivery_option;type:text;not null;default:'standard'"`
	Customer        types.CustomerSnapshot `gorm:"column:customer;type:jsonb;serializer:json;not null"`
	ShippingAddress types.Address          `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	Tracking        *types.Tracking        `gorm:"column:tracking;type:jsonb;serializer:json"`
	Notes           *string                `gorm:"column:notes"`
	CancelReason    *string                `gorm:"column:cancel_reason"`
	CancelledAt     *time.Time             `gorm:"column:cancelled_at"`
	DeliveredAt     *time.Time             `gorm:"column:delivered_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem is a price snapshot of one product line, independent of the live product.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	Image     *string         `gorm:"column:image"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	Position  int             `gorm:"column:position;not null;default:0"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
