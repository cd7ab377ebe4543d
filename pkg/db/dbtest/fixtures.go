package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

// SeedUser inserts an active user with the given role.
func SeedUser(t *testing.T, conn *gorm.DB, role enums.Role) *models.User {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:           id,
		Name:         "User " + id.String()[:8],
		Email:        fmt.Sprintf("%s@example.test", id.String()[:8]),
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

// SeedVendor inserts a vendor profile, creating its owner when ownerID is nil.
func SeedVendor(t *testing.T, conn *gorm.DB, ownerID *uuid.UUID, status enums.VendorStatus) *models.Vendor {
	t.Helper()
	if ownerID == nil {
		owner := SeedUser(t, conn, enums.RoleVendor)
		ownerID = &owner.ID
	}
	vendor := &models.Vendor{
		UserID:       *ownerID,
		BusinessName: "Shop " + uuid.NewString()[:6],
		Email:        "shop@example.test",
		Phone:        "9999999999",
		Address:      types.Address{Line1: "1 Market Rd", City: "Pune", State: "MH", PostalCode: "411001", Country: "India"},
		Status:       status,
		IsVerified:   status == enums.VendorStatusActive,
	}
	require.NoError(t, conn.Create(vendor).Error)
	return vendor
}

// SeedProduct inserts an active product for vendorID priced at selling (mrp = selling).
func SeedProduct(t *testing.T, conn *gorm.DB, vendorID uuid.UUID, selling string) *models.Product {
	t.Helper()
	price := decimal.RequireFromString(selling)
	product := &models.Product{
		VendorID:     vendorID,
		Name:         "Product " + uuid.NewString()[:6],
		Category:     "grocery",
		Images:       []string{"https://img.example.test/p.jpg"},
		MRP:          price,
		SellingPrice: price,
		Stock:        100,
		Unit:         "piece",
		IsActive:     true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}
