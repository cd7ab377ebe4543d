package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/internal/products"
	"github.com/expresskart/expresskart-backend/pkg/db"
	"github.com/expresskart/expresskart-backend/pkg/db/dbtest"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		Carts:    NewCartRecordRepository(conn),
		Items:    NewCartItemRepository(conn),
		Products: products.NewRepository(conn),
		Tx:       db.FromGorm(conn),
	})
	require.NoError(t, err)
	return svc, conn
}

func TestGetCreatesEmptyCartOnce(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, conn, enums.RoleUser)

	first, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, first.Items)
	require.Equal(t, 1, first.Version)
	require.True(t, first.Totals.Subtotal.IsZero())

	second, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var n int64
	require.NoError(t, conn.Model(&models.Cart{}).Where("user_id = ?", user.ID).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestAddSameProductTwiceMergesQuantity(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusActive)
	product := dbtest.SeedProduct(t, conn, vendor.ID, "40")

	_, err := svc.AddItem(ctx, user.ID, AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, user.ID, AddItemRequest{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	require.Equal(t, 5, view.Items[0].Quantity)
	require.Equal(t, vendor.BusinessName, view.Items[0].VendorName)
	require.True(t, view.Totals.Subtotal.Equal(decimal.NewFromInt(200)))
	require.Equal(t, 3, view.Version, "each mutation bumps the version")
}

func TestAddSnapshotsDefaultsAndOverrides(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusActive)
	product := dbtest.SeedProduct(t, conn, vendor.ID, "80")
	require.NoError(t, conn.Model(product).Update("mrp", decimal.NewFromInt(100)).Error)

	view, err := svc.AddItem(ctx, user.ID, AddItemRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	item := view.Items[0]
	require.Equal(t, product.Name, item.Name)
	require.True(t, item.MRP.Equal(decimal.NewFromInt(100)))
	require.Equal(t, 20, item.DiscountPercentage)
	require.Equal(t, "https://img.example.test/p.jpg", *item.Image)
}

func TestAddRejectsMissingAndInactiveProducts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusActive)
	product := dbtest.SeedProduct(t, conn, vendor.ID, "10")
	require.NoError(t, conn.Model(product).Update("is_active", false).Error)

	_, err := svc.AddItem(ctx, user.ID, AddItemRequest{ProductID: uuid.New(), Quantity: 1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.AddItem(ctx, user.ID, AddItemRequest{ProductID: product.ID, Quantity: 1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.AddItem(ctx, user.ID, AddItemRequest{ProductID: product.ID, Quantity: 0})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	view, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, view.Version, "failed mutations roll back the version bump")
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusActive)
	a := dbtest.SeedProduct(t, conn, vendor.ID, "10")
	b := dbtest.SeedProduct(t, conn, vendor.ID, "20")

	_, err := svc.AddItem(ctx, user.ID, AddItemRequest{ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user.ID, AddItemRequest{ProductID: b.ID, Quantity: 1})
	require.NoError(t, err)

	view, err := svc.UpdateQuantity(ctx, user.ID, a.ID, UpdateQuantityRequest{Quantity: 4})
	require.NoError(t, err)
	require.Equal(t, 4, view.Items[0].Quantity)

	view, err = svc.UpdateQuantity(ctx, user.ID, a.ID, UpdateQuantityRequest{Quantity: 0})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, b.ID, view.Items[0].ProductID)

	_, err = svc.UpdateQuantity(ctx, user.ID, a.ID, UpdateQuantityRequest{Quantity: 2})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	view, err = svc.RemoveItem(ctx, user.ID, a.ID, nil)
	require.NoError(t, err, "removing an absent item is a no-op")
	require.Len(t, view.Items, 1)

	view, err = svc.Clear(ctx, user.ID, nil)
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestExpectedVersionMismatchConflicts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusActive)
	product := dbtest.SeedProduct(t, conn, vendor.ID, "10")

	stale := 1
	_, err := svc.AddItem(ctx, user.ID, AddItemRequest{ProductID: product.ID, Quantity: 1, ExpectedVersion: &stale})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, user.ID, AddItemRequest{ProductID: product.ID, Quantity: 1, ExpectedVersion: &stale})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	current := 2
	view, err := svc.Clear(ctx, user.ID, &current)
	require.NoError(t, err)
	require.Equal(t, 3, view.Version)
}

func TestCartGroupsItemsByVendor(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := dbtest.SeedUser(t, conn, enums.RoleUser)
	v1 := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusActive)
	v2 := dbtest.SeedVendor(t, conn, nil, enums.VendorStatusActive)
	p1 := dbtest.SeedProduct(t, conn, v1.ID, "100")
	p2 := dbtest.SeedProduct(t, conn, v2.ID, "50")
	p3 := dbtest.SeedProduct(t, conn, v1.ID, "25")

	for _, p := range []*models.Product{p1, p2, p3} {
		_, err := svc.AddItem(ctx, user.ID, AddItemRequest{ProductID: p.ID, Quantity: 2})
		require.NoError(t, err)
	}
	view, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, view.Vendors, 2)
	require.Equal(t, v1.ID, *view.Vendors[0].VendorID)
	require.Len(t, view.Vendors[0].Items, 2)
	require.True(t, view.Vendors[0].Subtotal.Equal(decimal.NewFromInt(250)))
	require.True(t, view.Vendors[1].Subtotal.Equal(decimal.NewFromInt(100)))
	require.Equal(t, 3, view.Totals.ItemCount)
	require.Equal(t, 6, view.Totals.TotalQuantity)
	require.True(t, view.Totals.Subtotal.Equal(decimal.NewFromInt(350)))
}
