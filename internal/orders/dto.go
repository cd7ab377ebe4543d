package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

// ItemInput is one requested line. Price falls back to the live selling price.
type ItemInput struct {
	ProductID uuid.UUID        `json:"productId" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// CustomerInput overrides the contact snapshot taken from the user record.
type CustomerInput struct {
	Name  string `json:"name" validate:"omitempty,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=20"`
}

type CreateOrderRequest struct {
	Items           []ItemInput    `json:"items" validate:"required,min=1,dive"`
	ShippingAddress types.Address  `json:"shippingAddress" validate:"required"`
	PaymentMethod   string         `json:"paymentMethod" validate:"required"`
	DeliveryOption  string         `json:"deliveryOption"`
	Notes           *string        `json:"notes" validate:"omitempty,max=500"`
	Customer        *CustomerInput `json:"customer"`
}

// CheckoutRequest converts the caller's server cart into orders.
type CheckoutRequest struct {
	ShippingAddress types.Address  `json:"shippingAddress" validate:"required"`
	PaymentMethod   string         `json:"paymentMethod" validate:"required"`
	DeliveryOption  string         `json:"deliveryOption"`
	Notes           *string        `json:"notes" validate:"omitempty,max=500"`
	Customer        *CustomerInput `json:"customer"`
	CartVersion     *int           `json:"cartVersion"`
}

type TrackingInput struct {
	Carrier        string `json:"carrier" validate:"max=80"`
	TrackingNumber string `json:"trackingNumber" validate:"max=80"`
}

type UpdateStatusRequest struct {
	Status   string         `json:"status" validate:"required"`
	Note     string         `json:"note" validate:"max=500"`
	Reason   string         `json:"reason" validate:"max=500"`
	Tracking *TrackingInput `json:"tracking"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ListFilter narrows the admin order list.
type ListFilter struct {
	Status enums.OrderStatus
}

type OrderItemDTO struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     *string         `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type OwnerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type OrderDTO struct {
	ID              uuid.UUID              `json:"id"`
	OrderNumber     string                 `json:"orderNumber"`
	UserID          uuid.UUID              `json:"userId"`
	User            *OwnerSummary          `json:"user,omitempty"`
	VendorID        uuid.UUID              `json:"vendorId"`
	Items           []OrderItemDTO         `json:"items"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	Tax             decimal.Decimal        `json:"tax"`
	ShippingFee     decimal.Decimal        `json:"shippingFee"`
	Discount        decimal.Decimal        `json:"discount"`
	Total           decimal.Decimal        `json:"total"`
	PaymentMethod   enums.PaymentMethod    `json:"paymentMethod"`
	PaymentStatus   enums.PaymentStatus    `json:"paymentStatus"`
	Status          enums.OrderStatus      `json:"status"`
	DeliveryOption  enums.DeliveryOption   `json:"deliveryOption"`
	Customer        types.CustomerSnapshot `json:"customer"`
	ShippingAddress types.Address          `json:"shippingAddress"`
	Tracking        *types.Tracking        `json:"tracking,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	CancelReason    *string                `json:"cancelReason,omitempty"`
	CancelledAt     *time.Time             `json:"cancelledAt,omitempty"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// CheckoutResult lists the per-vendor orders produced from one cart.
type CheckoutResult struct {
	Orders []OrderDTO `json:"orders"`
}

func FromModel(o *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		VendorID:        o.VendorID,
		Items:           make([]OrderItemDTO, 0, len(o.Items)),
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		ShippingFee:     o.ShippingFee,
		Discount:        o.Discount,
		Total:           o.Total,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Status:          o.Status,
		DeliveryOption:  o.DeliveryOption,
		Customer:        o.Customer,
		ShippingAddress: o.ShippingAddress,
		Tracking:        o.Tracking,
		Notes:           o.Notes,
		CancelReason:    o.CancelReason,
		CancelledAt:     o.CancelledAt,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	if o.User != nil {
		dto.User = &OwnerSummary{ID: o.User.ID, Name: o.User.Name, Email: o.User.Email}
	}
	return dto
}

func fromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
