package admin

import (
	"github.com/shopspring/decimal"

	"github.com/expresskart/expresskart-backend/pkg/enums"
)

// StatsDTO is the admin dashboard summary.
type StatsDTO struct {
	Users    UserStats       `json:"users"`
	Vendors  VendorStats     `json:"vendors"`
	Products ProductStats    `json:"products"`
	Orders   OrderStats      `json:"orders"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type UserStats struct {
	Total  int64                `json:"total"`
	ByRole map[enums.Role]int64 `json:"byRole"`
}

type VendorStats struct {
	Total    int64                        `json:"total"`
	ByStatus map[enums.VendorStatus]int64 `json:"byStatus"`
}

type ProductStats struct {
	Active int64 `json:"active"`
}

type OrderStats struct {
	Total    int64                       `json:"total"`
	ByStatus map[enums.OrderStatus]int64 `json:"byStatus"`
}

type UserStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}
