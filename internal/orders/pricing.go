package orders

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/expresskart/expresskart-backend/pkg/config"
	"github.com/expresskart/expresskart-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Pricing holds the flat shipping rates and the tax rate.
type Pricing struct {
	ExpressFee     decimal.Decimal
	StandardFee    decimal.Decimal
	TaxRatePercent decimal.Decimal
}

// Totals is the money breakdown stored on an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// NewPricing parses the configured fees.
func NewPricing(cfg config.OrdersConfig) (Pricing, error) {
	express, err := decimal.NewFromString(cfg.ExpressShippingFee)
	if err != nil {
		return Pricing{}, fmt.Errorf("express shipping fee: %w", err)
	}
	standard, err := decimal.NewFromString(cfg.StandardShippingFee)
	if err != nil {
		return Pricing{}, fmt.Errorf("standard shipping fee: %w", err)
	}
	tax, err := decimal.NewFromString(cfg.TaxRatePercent)
	if err != nil {
		return Pricing{}, fmt.Errorf("tax rate: %w", err)
	}
	if express.IsNegative() || standard.IsNegative() || tax.IsNegative() {
		return Pricing{}, fmt.Errorf("fees and tax rate must not be negative")
	}
	return Pricing{ExpressFee: express, StandardFee: standard, TaxRatePercent: tax}, nil
}

func (p Pricing) ShippingFee(option enums.DeliveryOption) decimal.Decimal {
	if option == enums.DeliveryOptionExpress {
		return p.ExpressFee
	}
	return p.StandardFee
}

// Compute returns total = subtotal + shipping + tax - discount. No discounts
// are issued yet so discount is always zero.
func (p Pricing) Compute(subtotal decimal.Decimal, option enums.DeliveryOption) Totals {
	tax := subtotal.Mul(p.TaxRatePercent).Div(hundred).Round(2)
	shipping := p.ShippingFee(option)
	discount := decimal.Zero
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(shipping).Add(tax).Sub(discount),
	}
}
